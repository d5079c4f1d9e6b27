package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the settings required to reach the avatar bucket.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Service is the narrow interface the rest of the application sees for
// avatar files. Everything behind it is an external collaborator.
type Service interface {
	// Upload writes an object server-side. Used by the direct multipart
	// avatar upload path.
	Upload(ctx context.Context, key string, mimeType string, body io.Reader) error

	// PresignUpload generates a pre-signed URL a client can PUT a file to.
	PresignUpload(ctx context.Context, key string, mimeType string, fileSize int64, duration time.Duration) (string, error)

	// PresignDownload generates a pre-signed URL for fetching a file.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)

	// Delete removes the object with the given key.
	Delete(ctx context.Context, key string) error
}

// NewService is the factory for Service. Only S3-compatible backends are
// currently supported.
func NewService(cfg ServiceConfig) (Service, error) {
	return newS3Client(cfg)
}
