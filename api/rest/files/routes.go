package files

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/storefront/files"
)

func RegisterRoutes(router *gin.RouterGroup, fileService *files.Service) {
	filesGroup := router.Group("/files")
	filesGroup.Use(auth.AuthMiddleware())
	{
		filesGroup.POST("", UploadFileHandler(fileService))
		filesGroup.GET("", ListFilesHandler(fileService))
		filesGroup.GET("/presigned", PresignedURLHandler(fileService))
		filesGroup.DELETE("/:id", DeleteFileHandler(fileService))
	}
}
