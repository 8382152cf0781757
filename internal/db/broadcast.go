package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/models"
	"gorm.io/gorm"
)

// BroadcastRepository handles database operations for broadcasts
type BroadcastRepository struct {
	db *DB
}

// NewBroadcastRepository creates a new broadcast repository
func NewBroadcastRepository(db *DB) *BroadcastRepository {
	return &BroadcastRepository{db: db}
}

// WithTx returns a repository that runs its queries inside tx
func (r *BroadcastRepository) WithTx(tx *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: WithTx(tx)}
}

// Create inserts a new broadcast
func (r *BroadcastRepository) Create(ctx context.Context, broadcast *models.Broadcast) error {
	result := r.db.WithContext(ctx).Create(broadcast)
	if result.Error != nil {
		return fmt.Errorf("failed to create broadcast: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a broadcast by its UUID
func (r *BroadcastRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&broadcast)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &broadcast, nil
}

// FindOverlapping returns the earliest broadcast for (day, channel, region)
// whose interval intersects [start, end), or ErrNotFound
func (r *BroadcastRepository) FindOverlapping(ctx context.Context, dayID uuid.UUID, channel, region string, start, end time.Time) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	result := r.db.WithContext(ctx).
		Where("day_id = ? AND channel = ? AND region = ?", dayID.String(), channel, region).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC()).
		Order("start_time ASC").
		First(&broadcast)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &broadcast, nil
}

// ListByDay retrieves a day's broadcasts ordered by start time
func (r *BroadcastRepository) ListByDay(ctx context.Context, dayID uuid.UUID) ([]*models.Broadcast, error) {
	var broadcasts []*models.Broadcast
	result := r.db.WithContext(ctx).
		Where("day_id = ?", dayID.String()).
		Order("start_time ASC").
		Find(&broadcasts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", MapGormError(result.Error))
	}
	return broadcasts, nil
}

// FindContaining returns a broadcast of the program whose interval contains
// the instant, or ErrNotFound
func (r *BroadcastRepository) FindContaining(ctx context.Context, programID uuid.UUID, instant time.Time) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	result := r.db.WithContext(ctx).
		Joins("JOIN days ON days.id = broadcasts.day_id").
		Where("days.program_id = ?", programID.String()).
		Where("broadcasts.start_time <= ? AND broadcasts.end_time > ?", instant.UTC(), instant.UTC()).
		Order("broadcasts.start_time ASC").
		First(&broadcast)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &broadcast, nil
}

// Count returns the total number of broadcasts
func (r *BroadcastRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Broadcast{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count broadcasts: %w", MapGormError(result.Error))
	}
	return count, nil
}
