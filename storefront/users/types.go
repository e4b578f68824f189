package users

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/odm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// handles user document operations
type Repository struct {
	model    *odm.Model
	cache    *cache.Client
	cacheTTL time.Duration
}

// represents a storefront account
type User struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Password      string             `bson:"password,omitempty" json:"-"`
	Role          string             `bson:"role" json:"role"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Address       *Address           `bson:"address,omitempty" json:"address,omitempty"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	ProfileImages *ProfileImages     `bson:"profileImages,omitempty" json:"profileImages,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Zip     string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// object URLs of the stored profile image variants
type ProfileImages struct {
	Thumbnail string `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Medium    string `bson:"medium,omitempty" json:"medium,omitempty"`
	Original  string `bson:"original,omitempty" json:"original,omitempty"`
}

// contains data for creating a user
type CreateUserRequest struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	Role     string   `json:"role,omitempty"`
	Phone    string   `json:"phone,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

// contains the fields a user may change; nil fields are left untouched
type UpdateUserRequest struct {
	Name     *string  `json:"name,omitempty"`
	Email    *string  `json:"email,omitempty"`
	Password *string  `json:"password,omitempty"`
	Role     *string  `json:"role,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Address  *Address `json:"address,omitempty"`
	IsActive *bool    `json:"isActive,omitempty"`
}
