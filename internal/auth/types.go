package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// user roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// context keys set by AuthMiddleware
const (
	contextUserID = "user_id"
	contextEmail  = "user_email"
	contextRole   = "user_role"
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
