package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"github.com/stwalsh4118/asrun/internal/logger"
	"google.golang.org/api/option"
)

// GCSStore reads objects from Google Cloud Storage
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates a GCS client. A non-empty endpoint points the client at
// an emulator and disables authentication.
func NewGCSStore(ctx context.Context, endpoint string) (*GCSStore, error) {
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// GetObject downloads gs://bucket/key into memory
func (s *GCSStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", bucket, key, err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Log.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("Failed to close GCS reader")
		}
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, key, err)
	}

	logger.Log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("bytes", len(data)).
		Msg("Downloaded object")

	return data, nil
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
