package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore reads objects from a directory tree laid out as root/bucket/key
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at root
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %s is not a directory", abs)
	}
	return &LocalStore{root: abs}, nil
}

// GetObject reads root/bucket/key. Keys may not escape the bucket directory.
func (s *LocalStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.objectPath(bucket, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", bucket, key, err)
	}
	return data, nil
}

func (s *LocalStore) objectPath(bucket, key string) (string, error) {
	if bucket == "" || key == "" || strings.ContainsAny(bucket, `/\`) || bucket == ".." {
		return "", fmt.Errorf("%s/%s: %w", bucket, key, ErrInvalidKey)
	}

	dir := filepath.Join(s.root, bucket)
	path := filepath.Join(dir, filepath.FromSlash(key))
	if !strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%s/%s: %w", bucket, key, ErrInvalidKey)
	}
	return path, nil
}
