package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/storefront/users"
)

// registers all authentication routes behind the basic auth guard
func RegisterRoutes(router *gin.RouterGroup, userRepo *users.Repository, basicUser, basicPassword string) {
	authGroup := router.Group("/auth")
	authGroup.Use(auth.BasicAuthMiddleware(basicUser, basicPassword))
	{
		authGroup.POST("/login", LoginHandler(userRepo))
		authGroup.POST("/register", RegisterHandler(userRepo))
	}
}
