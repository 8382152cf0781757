// Package storage fetches AS-RUN log objects from a bucket store
package storage

import (
	"context"
	"errors"
)

// Storage errors
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// ObjectStore reads whole objects by bucket and key
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// IsObjectNotFound checks if error is a missing object error
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
