package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/models"
)

// ProgramRepository handles database operations for the program catalog
type ProgramRepository struct {
	db *DB
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create inserts a new program into the catalog
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	result := r.db.WithContext(ctx).Create(program)
	if result.Error != nil {
		return fmt.Errorf("failed to create program: %w", MapGormError(result.Error))
	}
	return nil
}

// GetByID retrieves a program by its UUID
func (r *ProgramRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	var program models.Program
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&program)
	if result.Error != nil {
		return nil, MapGormError(result.Error)
	}
	return &program, nil
}

// List retrieves the catalog in catalog order (oldest first, then by name).
// Keyword matching walks programs in this order.
func (r *ProgramRepository) List(ctx context.Context) ([]*models.Program, error) {
	var programs []*models.Program
	result := r.db.WithContext(ctx).Order("created_at ASC, name ASC").Find(&programs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list programs: %w", MapGormError(result.Error))
	}
	return programs, nil
}

// Delete deletes a program by its UUID (cascades to days and broadcasts)
func (r *ProgramRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&models.Program{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete program: %w", MapGormError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
