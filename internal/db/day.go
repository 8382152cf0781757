package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/models"
)

// DayRepository handles database operations for program days
type DayRepository struct {
	db *DB
}

// NewDayRepository creates a new day repository
func NewDayRepository(db *DB) *DayRepository {
	return &DayRepository{db: db}
}

// Create inserts a new day. A second day for the same (program, date)
// fails with ErrDuplicate.
func (r *DayRepository) Create(ctx context.Context, day *models.Day) error {
	result := r.db.WithContext(ctx).Create(day)
	if result.Error != nil {
		return fmt.Errorf("failed to create day: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a day by its UUID
func (r *DayRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Day, error) {
	var day models.Day
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&day)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &day, nil
}

// GetByProgramAndDate retrieves the day for a program on a YYYY-MM-DD date
func (r *DayRepository) GetByProgramAndDate(ctx context.Context, programID uuid.UUID, date string) (*models.Day, error) {
	var day models.Day
	result := r.db.WithContext(ctx).
		Where("program_id = ? AND date = ?", programID.String(), date).
		First(&day)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &day, nil
}

// ListByProgram retrieves a program's days, newest first
func (r *DayRepository) ListByProgram(ctx context.Context, programID uuid.UUID) ([]*models.Day, error) {
	var days []*models.Day
	result := r.db.WithContext(ctx).
		Where("program_id = ?", programID.String()).
		Order("date DESC").
		Find(&days)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list days: %w", MapGormError(result.Error))
	}
	return days, nil
}
