package files

import (
	"context"
	"errors"
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	apperrors "codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/logger"
	"codeberg.org/starterkit/server/internal/odm"
	"codeberg.org/starterkit/server/internal/storage"
)

const MaxFileSize = 10 << 20

func NewService(model *odm.Model, store *storage.Client) *Service {
	return &Service{model: model, store: store}
}

// stores the object and records it. The object is removed again when the
// record cannot be written.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*File, error) {
	if req.Body == nil || req.Size <= 0 {
		return nil, apperrors.BadRequest("No file uploaded", nil)
	}

	if req.Size > MaxFileSize {
		return nil, apperrors.BadRequest("File too large", nil)
	}

	data := bson.M{
		"originalName": req.OriginalName,
		"mimeType":     req.ContentType,
		"fileSize":     req.Size,
		"uploadedBy":   req.UploadedBy,
	}

	if req.Folder != "" {
		data["folder"] = req.Folder
	}

	if req.Description != "" {
		data["description"] = req.Description
	}

	// reject bad metadata before anything reaches the bucket
	pending := s.model.New(data)
	if err := s.model.Validate(pending.Data(), true); err != nil {
		return nil, err
	}

	if oid, err := primitive.ObjectIDFromHex(req.UploadedBy); err == nil {
		data["uploadedBy"] = oid
	}

	folder, _ := pending.Get("folder").(string)

	uploaded, err := s.store.Upload(ctx, folder, req.OriginalName, req.ContentType, req.Body, req.Size)
	if err != nil {
		return nil, err
	}

	data["folder"] = folder
	data["fileKey"] = uploaded.Key
	data["fileUrl"] = uploaded.URL
	data["fileName"] = path.Base(uploaded.Key)

	doc, err := s.model.Create(ctx, data)
	if err != nil {
		if delErr := s.store.Delete(ctx, uploaded.Key); delErr != nil {
			logger.Warn("failed to remove orphaned object", "key", uploaded.Key, "error", delErr)
		}

		return nil, err
	}

	logger.Info("file uploaded", "file_id", doc.ID().Hex(), "key", uploaded.Key, "size", req.Size)

	return decode(doc)
}

// lists the active files of a user, newest first
func (s *Service) ListForUser(ctx context.Context, userID string) ([]File, error) {
	owner, err := ownerID(userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.model.Find(ctx,
		bson.M{"uploadedBy": owner, "isActive": true},
		odm.WithSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}

	files := make([]File, 0, len(docs))

	for _, d := range docs {
		f, err := decode(d)
		if err != nil {
			return nil, err
		}

		files = append(files, *f)
	}

	return files, nil
}

// removes the object and marks its record inactive
func (s *Service) Delete(ctx context.Context, fileID, userID string) error {
	id, err := s.model.CastID(fileID)
	if err != nil {
		return err
	}

	owner, err := ownerID(userID)
	if err != nil {
		return err
	}

	doc, err := s.model.FindOne(ctx, bson.M{"_id": id, "uploadedBy": owner, "isActive": true})
	if errors.Is(err, odm.ErrNoDocument) {
		return apperrors.NotFound("File")
	}

	if err != nil {
		return err
	}

	key, _ := doc.Get("fileKey").(string)
	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}

	doc.Set("isActive", false)

	if err := s.model.Save(ctx, doc); err != nil {
		return err
	}

	logger.Info("file deleted", "file_id", fileID, "key", key)

	return nil
}

// signs a temporary URL. Downloads are limited to the caller's own active files.
func (s *Service) Presign(ctx context.Context, userID, key, operation string, expiry time.Duration) (*storage.PresignedURL, error) {
	if key == "" {
		return nil, apperrors.BadRequest("key is required", nil)
	}

	if operation == storage.OperationGet || operation == "" {
		owner, err := ownerID(userID)
		if err != nil {
			return nil, err
		}

		_, err = s.model.FindOne(ctx, bson.M{"fileKey": key, "uploadedBy": owner, "isActive": true})
		if errors.Is(err, odm.ErrNoDocument) {
			return nil, apperrors.NotFound("File")
		}

		if err != nil {
			return nil, err
		}
	}

	return s.store.PresignedURL(ctx, key, operation, expiry)
}

func ownerID(userID string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, apperrors.Unauthorized("invalid user")
	}

	return oid, nil
}

func decode(doc *odm.Document) (*File, error) {
	var f File
	if err := doc.Decode(&f); err != nil {
		return nil, err
	}

	return &f, nil
}
