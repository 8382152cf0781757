package db

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/asrun/internal/models"
)

// LogFileRepository handles database operations for ingested file references
type LogFileRepository struct {
	db *DB
}

// NewLogFileRepository creates a new log file repository
func NewLogFileRepository(db *DB) *LogFileRepository {
	return &LogFileRepository{db: db}
}

// Create inserts a file reference. A second reference for the same object
// key fails with ErrDuplicate.
func (r *LogFileRepository) Create(ctx context.Context, logFile *models.LogFile) error {
	result := r.db.WithContext(ctx).Create(logFile)
	if result.Error != nil {
		return fmt.Errorf("failed to create log file reference: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByKey retrieves a file reference by its object key
func (r *LogFileRepository) GetByKey(ctx context.Context, key string) (*models.LogFile, error) {
	var logFile models.LogFile
	result := r.db.WithContext(ctx).Where("object_key = ?", key).First(&logFile)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &logFile, nil
}

// Count returns the total number of file references
func (r *LogFileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.LogFile{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count log files: %w", MapGormError(result.Error))
	}
	return count, nil
}
