package files

import "codeberg.org/starterkit/server/storefront/files"

// FilesListResponse wraps the caller's files
type FilesListResponse struct {
	Files []files.File `json:"files"`
	Count int          `json:"count"`
}

// PresignQuery selects the object and operation to sign
type PresignQuery struct {
	Key       string `form:"key" binding:"required"`
	Operation string `form:"operation" binding:"omitempty,oneof=get put"`
	ExpiresIn int    `form:"expiresIn" binding:"omitempty,min=1"`
}
