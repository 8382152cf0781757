package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/asrun/internal/db"
	"github.com/stwalsh4118/asrun/internal/models"
)

// setupTestService creates a service with a test database
func setupTestService(t *testing.T) (*Service, *db.Repositories, func()) {
	// Create temporary database
	tmpFile := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(tmpFile)
	require.NoError(t, err)

	// Run migrations
	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)

	err = db.RunMigrations(sqlDB)
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	service := NewService(repos)

	cleanup := func() {
		_ = database.Close()
	}

	return service, repos, cleanup
}

func TestCreateProgram_Success(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	program, err := service.CreateProgram(context.Background(), "  United Cup ", " UNITED CUP ", 2026)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, program.ID)
	assert.Equal(t, "United Cup", program.Name)
	assert.Equal(t, "UNITED CUP", program.Keyword)
	assert.Equal(t, 2026, program.Year)
	assert.False(t, program.CreatedAt.IsZero())
}

func TestCreateProgram_Validation(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	tests := []struct {
		name    string
		keyword string
		year    int
		wantErr error
	}{
		{"empty keyword", "", 2026, ErrEmptyKeyword},
		{"blank keyword", "   ", 2026, ErrEmptyKeyword},
		{"year too early", "NEWS", 1899, ErrInvalidYear},
		{"year too late", "NEWS", 2101, ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateProgram(context.Background(), tt.name, tt.keyword, tt.year)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}

	_, err := service.CreateProgram(context.Background(), "Undated", "UNDATED", 0)
	assert.NoError(t, err)
}

func TestCreateProgram_DuplicateNameCaseInsensitive(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, err := service.CreateProgram(ctx, "United Cup", "UNITED CUP", 2026)
	require.NoError(t, err)

	_, err = service.CreateProgram(ctx, "UNITED CUP", "CUP", 2026)
	assert.True(t, IsDuplicateName(err))
}

func TestGetByID_NotFound(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := service.GetByID(context.Background(), uuid.New())
	assert.True(t, IsProgramNotFound(err))
}

func TestList_CatalogOrder(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	programs, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, programs)

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := service.CreateProgram(ctx, name, name, 2026)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	programs, err = service.List(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 3)
	assert.Equal(t, "First", programs[0].Name)
	assert.Equal(t, "Third", programs[2].Name)
}

func TestDeleteProgram(t *testing.T) {
	service, _, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	program, err := service.CreateProgram(ctx, "United Cup", "UNITED CUP", 2026)
	require.NoError(t, err)

	require.NoError(t, service.DeleteProgram(ctx, program.ID))
	assert.True(t, IsProgramNotFound(service.DeleteProgram(ctx, program.ID)))

	_, err = service.GetByID(ctx, program.ID)
	assert.True(t, IsProgramNotFound(err))
}

func TestDaysAndBroadcasts(t *testing.T) {
	service, repos, cleanup := setupTestService(t)
	defer cleanup()
	ctx := context.Background()

	program, err := service.CreateProgram(ctx, "United Cup", "UNITED CUP", 2026)
	require.NoError(t, err)

	start := time.Date(2026, 1, 3, 20, 0, 0, 0, time.UTC)
	day := models.NewDay(program.ID, start)
	require.NoError(t, repos.Days.Create(ctx, day))
	require.NoError(t, repos.Broadcasts.Create(ctx, models.NewBroadcast(program.Name, day.ID, "TEN", "BNE", start, start.Add(2*time.Hour))))

	days, err := service.Days(ctx, program.ID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-01-03", days[0].Date)

	broadcasts, err := service.DayBroadcasts(ctx, day.ID)
	require.NoError(t, err)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, "BNE", broadcasts[0].Region)

	_, err = service.DayBroadcasts(ctx, uuid.New())
	assert.True(t, IsDayNotFound(err))

	_, err = service.Days(ctx, uuid.New())
	assert.True(t, IsProgramNotFound(err))
}
