package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add renewal feedback table")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, "_add_renewal_feedback_table.up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, "_add_renewal_feedback_table.down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add renewal feedback table")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	names := []string{
		"0001_init.up.sql",
		"0001_init.down.sql",
		"0002_add_notifications.up.sql",
		"0002_add_notifications.down.sql",
		"README.md",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init", "0002_add_notifications"}, migrations)
}

func TestListMigrationsMissingDir(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Add users table":      "add_users_table",
		"add-approval--steps":  "add_approval_steps",
		"  trailing space    ": "trailing_space",
		"MixedCase42":          "mixedcase42",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeName(input), input)
	}
}
