// Package gcs implements the blob store against Google Cloud Storage.
// Uploaded copies are the only artifacts that outlive a request.
package gcs

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/carelink/reminisce/server/domain/repositories"
)

// Storage uploads artifacts to a single bucket and returns their public
// URL.
type Storage struct {
	client     *storage.Client
	bucket     *storage.BucketHandle
	bucketName string
	logger     *zap.Logger
}

var _ repositories.BlobStore = (*Storage)(nil)

// NewStorage creates a Storage for the bucket named by GCS_BUCKET, using
// application default credentials.
func NewStorage(ctx context.Context, logger *zap.Logger) (*Storage, error) {
	bucketName := os.Getenv("GCS_BUCKET")
	if bucketName == "" {
		return nil, fmt.Errorf("GCS_BUCKET environment variable is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	logger.Info("Connected to blob storage", zap.String("bucket", bucketName))

	return &Storage{
		client:     client,
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		logger:     logger,
	}, nil
}

// Put implements repositories.BlobStore.
func (s *Storage) Put(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectPath)
	s.logger.Debug("Uploaded artifact", zap.String("url", url))
	return url, nil
}

// Close releases the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}
