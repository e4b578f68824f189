package files

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/starterkit/server/api/rest/response"
	"codeberg.org/starterkit/server/internal/auth"
	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/storefront/files"
)

// UploadFileHandler godoc
// @Summary Upload a file
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Param folder formData string false "Target folder"
// @Param description formData string false "Description"
// @Success 201 {object} response.Envelope{data=files.File}
// @Failure 400 {object} errors.Envelope
// @Failure 401 {object} errors.Envelope
// @Router /api/v1/files [post]
// @Security BearerAuth
func UploadFileHandler(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Abort(c, errors.Unauthorized("not authenticated"))
			return
		}

		header, err := c.FormFile("file")
		if err != nil {
			errors.Abort(c, errors.BadRequest("No file uploaded", nil))
			return
		}

		body, err := header.Open()
		if err != nil {
			errors.Abort(c, err)
			return
		}
		defer body.Close() //nolint:errcheck // multipart temp file

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		file, err := fileService.Upload(c.Request.Context(), files.UploadRequest{
			UploadedBy:   userID,
			Folder:       c.PostForm("folder"),
			Description:  c.PostForm("description"),
			OriginalName: header.Filename,
			ContentType:  contentType,
			Size:         header.Size,
			Body:         body,
		})
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusCreated, file)
	}
}

// ListFilesHandler godoc
// @Summary List the caller's files
// @Tags files
// @Produce json
// @Success 200 {object} response.Envelope{data=FilesListResponse}
// @Failure 401 {object} errors.Envelope
// @Router /api/v1/files [get]
// @Security BearerAuth
func ListFilesHandler(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		list, err := fileService.ListForUser(c.Request.Context(), userID)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, FilesListResponse{Files: list, Count: len(list)})
	}
}

// DeleteFileHandler godoc
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} response.Envelope{data=response.Message}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/files/{id} [delete]
// @Security BearerAuth
func DeleteFileHandler(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		if err := fileService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, response.Message{Message: "File deleted successfully"})
	}
}

// PresignedURLHandler godoc
// @Summary Sign a temporary object URL
// @Tags files
// @Produce json
// @Param key query string true "Object key"
// @Param operation query string false "get or put" Enums(get, put)
// @Param expiresIn query int false "Lifetime in seconds" default(3600)
// @Success 200 {object} response.Envelope{data=storage.PresignedURL}
// @Failure 400 {object} errors.Envelope
// @Failure 404 {object} errors.Envelope
// @Router /api/v1/files/presigned [get]
// @Security BearerAuth
func PresignedURLHandler(fileService *files.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query PresignQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			errors.Abort(c, err)
			return
		}

		userID, _ := auth.GetUserID(c)
		expiry := time.Duration(query.ExpiresIn) * time.Second

		url, err := fileService.Presign(c.Request.Context(), userID, query.Key, query.Operation, expiry)
		if err != nil {
			errors.Abort(c, err)
			return
		}

		response.JSON(c, http.StatusOK, url)
	}
}
