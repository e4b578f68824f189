package auth

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/errors"
)

// validates JWT tokens and adds user info to context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.Abort(c, errors.Unauthorized("authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.Abort(c, errors.Unauthorized("invalid authorization header format"))
			return
		}

		claims, err := ValidateJWT(parts[1])
		if err != nil {
			errors.Abort(c, errors.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextEmail, claims.Email)
		c.Set(contextRole, claims.Role)

		c.Next()
	}
}

// rejects authenticated users whose role is not listed; runs after AuthMiddleware
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			errors.Abort(c, errors.Unauthorized(""))
			return
		}

		if !slices.Contains(roles, role) {
			errors.Abort(c, errors.Forbidden("insufficient role"))
			return
		}

		c.Next()
	}
}

// guards a route with static HTTP basic credentials
func BasicAuthMiddleware(username, password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			errors.Abort(c, errors.Unauthorized("missing or invalid authorization header"))
			return
		}

		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1

		if username == "" || !userMatch || !passMatch {
			errors.Abort(c, errors.Unauthorized("invalid username or password"))
			return
		}

		c.Next()
	}
}

// extracts user_id from context after AuthMiddleware
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, contextUserID)
}

// extracts the role from context after AuthMiddleware
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, contextRole)
}

// reports whether the caller is the given user or an admin
func IsOwnerOrAdmin(c *gin.Context, userID string) bool {
	if role, ok := GetRole(c); ok && role == RoleAdmin {
		return true
	}

	id, ok := GetUserID(c)
	return ok && id == userID
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}

	s, ok := v.(string)
	return s, ok
}
