package users

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/storage"
	"codeberg.org/starterkit/server/storefront/users"
)

func RegisterRoutes(router *gin.RouterGroup, userRepo *users.Repository, store *storage.Client, basicUser, basicPassword string) {
	basic := auth.BasicAuthMiddleware(basicUser, basicPassword)

	usersGroup := router.Group("/users")
	{
		usersGroup.POST("", auth.AuthMiddleware(), auth.RequireRole(auth.RoleAdmin), CreateUserHandler(userRepo))
		usersGroup.GET("", basic, ListUsersHandler(userRepo))
		usersGroup.GET("/:id", basic, GetUserHandler(userRepo))
		usersGroup.PATCH("/:id", auth.AuthMiddleware(), UpdateUserHandler(userRepo))
		usersGroup.DELETE("/:id", auth.AuthMiddleware(), DeleteUserHandler(userRepo))
		usersGroup.POST("/:id/profile-image", auth.AuthMiddleware(), UploadProfileImageHandler(userRepo, store))
	}
}
