// Package storage provides S3-compatible object storage and the run-report
// archive built on top of it.
package storage

import (
	"context"
	"io"
)

// ObjectStore is the subset of object storage operations the archive needs.
type ObjectStore interface {
	// EnsureBucketExists creates the bucket if it doesn't exist.
	EnsureBucketExists(ctx context.Context, bucket string) error

	// PutObject writes reader to bucket under the exact key.
	PutObject(ctx context.Context, bucket, key, contentType string, reader io.Reader, size int64) error
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	IsMinIOEnabled() bool
}
