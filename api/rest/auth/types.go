package auth

import "codeberg.org/starterkit/server/storefront/users"

// LoginRequest carries the credentials exchanged for a token
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a regular account
type RegisterRequest struct {
	Name     string         `json:"name" binding:"required"`
	Email    string         `json:"email" binding:"required,email"`
	Password string         `json:"password" binding:"required"`
	Phone    string         `json:"phone,omitempty"`
	Address  *users.Address `json:"address,omitempty"`
}

// TokenResponse is returned after a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// AuthResponse is returned after registration
type AuthResponse struct {
	User        *users.User `json:"user"`
	AccessToken string      `json:"access_token"`
}
