package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/api/rest/response"
	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/storefront/users"
)

// LoginHandler godoc
// @Summary Log in
// @Description Exchanges email and password for a JWT access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=TokenResponse}
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /api/v1/auth/login [post]
// @Security BasicAuth
func LoginHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		user, err := userRepo.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		token, err := auth.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, TokenResponse{AccessToken: token})
	}
}

// RegisterHandler godoc
// @Summary Register
// @Description Creates a regular user account and returns it with an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} response.Envelope{data=AuthResponse}
// @Failure 400 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /api/v1/auth/register [post]
// @Security BasicAuth
func RegisterHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		user, err := userRepo.Create(c.Request.Context(), users.CreateUserRequest{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     users.RoleUser,
			Phone:    req.Phone,
			Address:  req.Address,
		})
		if err != nil {
			errors.Abort(c, err)
			return
		}

		token, err := auth.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusCreated, AuthResponse{User: user, AccessToken: token})
	}
}
