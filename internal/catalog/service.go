// Package catalog manages the programs AS-RUN titles are matched against and
// exposes their ingested days and broadcasts.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/logger"
	"github.com/stwalsh4118/asrun/internal/models"
)

const (
	minYear = 1900
	maxYear = 2100
)

// Service handles business logic for catalog operations
type Service struct {
	repos *db.Repositories
}

// NewService creates a new catalog service instance
func NewService(repos *db.Repositories) *Service {
	return &Service{
		repos: repos,
	}
}

// CreateProgram adds a program to the catalog
func (s *Service) CreateProgram(ctx context.Context, name, keyword string, year int) (*models.Program, error) {
	name = strings.TrimSpace(name)
	keyword = strings.TrimSpace(keyword)

	if keyword == "" {
		return nil, fmt.Errorf("failed to create program: %w", ErrEmptyKeyword)
	}
	if year != 0 && (year < minYear || year > maxYear) {
		return nil, fmt.Errorf("failed to create program: %w", ErrInvalidYear)
	}

	if err := s.validateNameUniqueness(ctx, name); err != nil {
		logger.Log.Warn().
			Str("name", name).
			Msg("Program creation failed: duplicate name")
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	program := models.NewProgram(name, keyword, year)
	if err := s.repos.Programs.Create(ctx, program); err != nil {
		logger.Log.Error().
			Err(err).
			Str("name", name).
			Msg("Failed to create program in database")
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	logger.Log.Info().
		Str("program_id", program.ID.String()).
		Str("name", program.Name).
		Str("keyword", program.Keyword).
		Msg("Program created successfully")

	return program, nil
}

// GetByID retrieves a program by its ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	program, err := s.repos.Programs.GetByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, ErrProgramNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("program_id", id.String()).
			Msg("Failed to get program by ID")
		return nil, fmt.Errorf("failed to get program: %w", err)
	}

	return program, nil
}

// List retrieves the catalog in matching order
func (s *Service) List(ctx context.Context) ([]*models.Program, error) {
	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list programs")
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}

	logger.Log.Debug().
		Int("count", len(programs)).
		Msg("Listed programs")

	return programs, nil
}

// DeleteProgram deletes a program and, through the schema, its days and
// broadcasts
func (s *Service) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Programs.Delete(ctx, id); err != nil {
		if db.IsNotFound(err) {
			return ErrProgramNotFound
		}
		logger.Log.Error().
			Err(err).
			Str("program_id", id.String()).
			Msg("Failed to delete program from database")
		return fmt.Errorf("failed to delete program: %w", err)
	}

	logger.Log.Info().
		Str("program_id", id.String()).
		Msg("Program deleted successfully")

	return nil
}

// Days lists a program's ingested days, newest first
func (s *Service) Days(ctx context.Context, programID uuid.UUID) ([]*models.Day, error) {
	if _, err := s.GetByID(ctx, programID); err != nil {
		return nil, err
	}

	days, err := s.repos.Days.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("failed to list days: %w", err)
	}
	return days, nil
}

// DayBroadcasts lists a day's broadcasts in start order
func (s *Service) DayBroadcasts(ctx context.Context, dayID uuid.UUID) ([]*models.Broadcast, error) {
	if _, err := s.repos.Days.GetByID(ctx, dayID); err != nil {
		if db.IsNotFound(err) {
			return nil, ErrDayNotFound
		}
		return nil, fmt.Errorf("failed to get day: %w", err)
	}

	broadcasts, err := s.repos.Broadcasts.ListByDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcasts: %w", err)
	}
	return broadcasts, nil
}

// validateNameUniqueness checks if a program name is unique (case-insensitive)
func (s *Service) validateNameUniqueness(ctx context.Context, name string) error {
	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to validate name uniqueness: %w", err)
	}

	nameLower := strings.ToLower(name)
	for _, program := range programs {
		if strings.ToLower(strings.TrimSpace(program.Name)) == nameLower {
			return ErrDuplicateProgramName
		}
	}

	return nil
}
