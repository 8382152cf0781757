package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_GetObject(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "asrun", "2026"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "asrun", "2026", "20260104_BNE-TEN.LOG"), []byte("data"), 0o644))

	store, err := NewLocalStore(root)
	require.NoError(t, err)

	data, err := store.GetObject(context.Background(), "asrun", "2026/20260104_BNE-TEN.LOG")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)
}

func TestLocalStore_Missing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetObject(context.Background(), "asrun", "missing.LOG")
	assert.True(t, IsObjectNotFound(err))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name   string
		bucket string
		key    string
	}{
		{"parent key", "asrun", "../secret"},
		{"bucket traversal", "..", "file.LOG"},
		{"nested bucket", "a/b", "file.LOG"},
		{"empty key", "asrun", ""},
		{"empty bucket", "", "file.LOG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.GetObject(context.Background(), tt.bucket, tt.key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestNewLocalStore_RequiresDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewLocalStore(file)
	assert.Error(t, err)

	_, err = NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLocalStore_CancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.GetObject(ctx, "asrun", "file.LOG")
	assert.ErrorIs(t, err, context.Canceled)
}
