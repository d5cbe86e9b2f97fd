package migration

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Sync Runs Table")
	require.NoError(t, err)

	assert.Contains(t, mf.UpPath, "add_sync_runs_table.up.sql")
	assert.Contains(t, mf.DownPath, "add_sync_runs_table.down.sql")

	for _, path := range []string{mf.UpPath, mf.DownPath} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Add Sync Runs Table")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Sync Runs Table", "add_sync_runs_table"},
		{"fix--orders  index", "fix_orders_index"},
		{"trailing ", "trailing"},
		{"UPPER", "upper"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in))
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "first")
	require.NoError(t, err)

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Contains(t, migrations[0], "first")
}

func TestListMigrations_MissingDirIsEmpty(t *testing.T) {
	migrations, err := ListMigrations("/nonexistent/path")
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
