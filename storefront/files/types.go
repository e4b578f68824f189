package files

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/internal/storage"
)

// the storage operations the file service depends on
type objectStore interface {
	Upload(ctx context.Context, folder, originalName, contentType string, r io.Reader, size int64) (*storage.UploadResult, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key, operation string, expiry time.Duration) (*storage.PresignedURL, error)
}

// tracks uploaded objects and their owners
type Service struct {
	model *odm.Model
	store objectStore
}

// an uploaded object owned by a user
type File struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	FileName     string             `bson:"fileName" json:"fileName"`
	FileKey      string             `bson:"fileKey" json:"fileKey"`
	FileURL      string             `bson:"fileUrl" json:"fileUrl"`
	MimeType     string             `bson:"mimeType" json:"mimeType"`
	FileSize     int64              `bson:"fileSize" json:"fileSize"`
	UploadedBy   primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	Folder       string             `bson:"folder" json:"folder"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// describes one upload
type UploadRequest struct {
	UploadedBy   string
	Folder       string
	Description  string
	OriginalName string
	ContentType  string
	Size         int64
	Body         io.Reader
}
