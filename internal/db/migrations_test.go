package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_EmbeddedAndIdempotent(t *testing.T) {
	database, err := New(filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	// the schema ships inside the binary, so the working directory is irrelevant
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	sqlDB, err := database.GetSQLDB()
	require.NoError(t, err)
	require.NoError(t, RunMigrations(sqlDB))
	require.NoError(t, RunMigrations(sqlDB))

	for _, table := range []string{"programs", "days", "broadcasts", "log_files"} {
		assert.True(t, database.Migrator().HasTable(table), table)
	}

	var version int
	require.NoError(t, sqlDB.QueryRow("SELECT version FROM schema_migrations").Scan(&version))
	assert.Equal(t, 4, version)
}
