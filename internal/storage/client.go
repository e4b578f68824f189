package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"codeberg.org/starterkit/server/internal/errors"
	"codeberg.org/starterkit/server/internal/logger"
)

const (
	defaultFolder        = "uploads"
	defaultPresignExpiry = time.Hour

	// upper bound accepted by S3 for presigned requests
	maxPresignExpiry = 7 * 24 * time.Hour
)

// presign operations
const (
	OperationGet = "get"
	OperationPut = "put"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// Client stores objects in an S3-compatible bucket.
type Client struct {
	mc     *minio.Client
	bucket string
	now    func() time.Time
}

type UploadResult struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
}

type PresignedURL struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

// creates a storage client. No request is made until the first operation.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{mc: mc, bucket: cfg.Bucket, now: time.Now}, nil
}

// creates the bucket when it does not exist yet
func (c *Client) EnsureBucket(ctx context.Context, region string) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if exists {
		return nil
	}

	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	logger.Info("created storage bucket", "bucket", c.bucket)

	return nil
}

// uploads r under a generated key inside folder
func (c *Client) Upload(ctx context.Context, folder, originalName, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	return c.Put(ctx, c.GenerateKey(folder, originalName), contentType, r, size)
}

// uploads r under key
func (c *Client) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (*UploadResult, error) {
	_, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, translate("upload", key, err)
	}

	logger.Debug("object uploaded", "bucket", c.bucket, "key", key, "size", size)

	return &UploadResult{
		Key:    key,
		URL:    c.ObjectURL(key),
		Bucket: c.bucket,
	}, nil
}

// removes the object stored under key
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return translate("delete", key, err)
	}

	logger.Debug("object deleted", "bucket", c.bucket, "key", key)

	return nil
}

// signs a temporary get or put URL for key. A zero expiry means one hour.
func (c *Client) PresignedURL(ctx context.Context, key, operation string, expiry time.Duration) (*PresignedURL, error) {
	if key == "" {
		return nil, errors.BadRequest("key is required", nil)
	}

	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}

	if expiry > maxPresignExpiry {
		return nil, errors.BadRequest("expiry must be at most 7 days", nil)
	}

	var (
		u   *url.URL
		err error
	)

	switch operation {
	case OperationGet, "":
		u, err = c.mc.PresignedGetObject(ctx, c.bucket, key, expiry, url.Values{})
	case OperationPut:
		u, err = c.mc.PresignedPutObject(ctx, c.bucket, key, expiry)
	default:
		return nil, errors.BadRequest("operation must be get or put", nil)
	}

	if err != nil {
		return nil, translate("presign", key, err)
	}

	return &PresignedURL{
		URL:       u.String(),
		Key:       key,
		ExpiresIn: int(expiry.Seconds()),
	}, nil
}

// returns the path-style URL of key
func (c *Client) ObjectURL(key string) string {
	return c.mc.EndpointURL().JoinPath(c.bucket, key).String()
}

// builds <folder>/<unix-millis>-<sanitized base name>-<uuid><ext>
func (c *Client) GenerateKey(folder, originalName string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = defaultFolder
	}

	ext := path.Ext(originalName)
	base := unsafeNameChars.ReplaceAllString(strings.TrimSuffix(path.Base(originalName), ext), "_")

	return fmt.Sprintf("%s/%d-%s-%s%s", folder, c.now().UnixMilli(), base, uuid.NewString(), strings.ToLower(ext))
}

// missing objects become a not found application error; everything else is
// wrapped so the transport error stays visible to the classifier
func translate(op, key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.NotFound("file")
	}

	return fmt.Errorf("storage %s %s: %w", op, key, err)
}
