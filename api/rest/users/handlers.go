package users

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/api/rest/response"
	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/storage"
	"codeberg.org/starterkit/server/storefront/users"
)

const (
	maxProfileImageSize = 2 << 20
	profileImageFolder  = "profile-images"
)

var allowedImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// CreateUserHandler godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Param request body users.CreateUserRequest true "User"
// @Success 201 {object} response.Envelope{data=users.User}
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 409 {object} errors.Envelope
// @Router /api/v1/users [post]
// @Security BearerAuth
func CreateUserHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.CreateUserRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		user, err := userRepo.Create(c.Request.Context(), req)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusCreated, user)
	}
}

// ListUsersHandler godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param role query string false "Filter by role" Enums(admin, user)
// @Success 200 {object} response.Envelope{data=UsersListResponse}
// @Failure 400 {object} errors.Envelope
// @Router /api/v1/users [get]
// @Security BasicAuth
func ListUsersHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.Query("role")
		if role != "" && role != users.RoleAdmin && role != users.RoleUser {
			errors.Abort(c, errors.BadRequest("role must be admin or user", nil))
			return
		}

		list, err := userRepo.List(c.Request.Context(), role)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, UsersListResponse{Users: list, Count: len(list)})
	}
}

// GetUserHandler godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=users.User}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/users/{id} [get]
// @Security BasicAuth
func GetUserHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := userRepo.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, user)
	}
}

// UpdateUserHandler godoc
// @Summary Update a user
// @Description Users may update their own account; role and active flag changes need an admin
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body users.UpdateUserRequest true "Changes"
// @Success 200 {object} response.Envelope{data=users.User}
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/users/{id} [patch]
// @Security BearerAuth
func UpdateUserHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if !auth.IsOwnerOrAdmin(c, id) {
			errors.Abort(c, errors.Forbidden("you can only update your own account"))
			return
		}

		var req users.UpdateUserRequest
		if err := errors.BindJSON(c, &req); err != nil {
			errors.Abort(c, err)
			return
		}

		if role, _ := auth.GetRole(c); role != auth.RoleAdmin && (req.Role != nil || req.IsActive != nil) {
			errors.Abort(c, errors.Forbidden("only admins can change role or active status"))
			return
		}

		user, err := userRepo.Update(c.Request.Context(), id, req)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, user)
	}
}

// DeleteUserHandler godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=response.Message}
// @Failure 403 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/users/{id} [delete]
// @Security BearerAuth
func DeleteUserHandler(userRepo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if !auth.IsOwnerOrAdmin(c, id) {
			errors.Abort(c, errors.Forbidden("you can only delete your own account"))
			return
		}

		if err := userRepo.Delete(c.Request.Context(), id); err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, response.Message{Message: "User deleted successfully"})
	}
}

// UploadProfileImageHandler godoc
// @Summary Upload a profile image
// @Description Accepts a JPEG or PNG image of at most 2MB
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "User ID"
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope{data=users.User}
// @Failure 400 {object} errors.Envelope
// @Failure 403 {object} errors.Envelope
// @Router /api/v1/users/{id}/profile-image [post]
// @Security BearerAuth
func UploadProfileImageHandler(userRepo *users.Repository, store *storage.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if !auth.IsOwnerOrAdmin(c, id) {
			errors.Abort(c, errors.Forbidden("you can only change your own profile image"))
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			errors.Abort(c, errors.BadRequest("No file uploaded", nil))
			return
		}

		contentType, ok := allowedImageTypes[strings.ToLower(filepath.Ext(header.Filename))]
		if !ok {
			errors.Abort(c, errors.BadRequest("Only image files are allowed", nil))
			return
		}

		if header.Size > maxProfileImageSize {
			errors.Abort(c, errors.BadRequest("File too large", nil))
			return
		}

		file, err := header.Open()
		if err != nil {
			errors.Abort(c, err)
			return
		}
		defer file.Close() //nolint:errcheck // multipart temp file

		uploaded, err := store.Upload(c.Request.Context(), profileImageFolder+"/"+id, header.Filename, contentType, file, header.Size)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		user, err := userRepo.SetProfileImages(c.Request.Context(), id, users.ProfileImages{Original: uploaded.URL})
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, user)
	}
}
