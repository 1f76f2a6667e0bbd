package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)

	second, err := CreateMigration(dir, "Add product barcode")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "add_product_barcode", second.Name)

	for _, dialect := range Dialects {
		up := second.Paths[dialect]
		assert.Equal(t, "000002_add_product_barcode.up.sql", filepath.Base(up))
		_, err := os.Stat(filepath.Join(filepath.Dir(up), "000002_add_product_barcode.down.sql"))
		assert.NoError(t, err)
	}

	_, err = CreateMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("merges dialects and ignores stray files", func(t *testing.T) {
		dir := t.TempDir()
		pg := SourceDir(dir, DialectPostgres)
		my := SourceDir(dir, DialectMySQL)
		require.NoError(t, os.MkdirAll(pg, 0o755))
		require.NoError(t, os.MkdirAll(my, 0o755))
		for _, f := range []string{
			filepath.Join(pg, "000002_b.up.sql"),
			filepath.Join(pg, "000001_a.up.sql"),
			filepath.Join(pg, "000001_a.down.sql"),
			filepath.Join(pg, "README.md"),
			filepath.Join(my, "000001_a.up.sql"),
		} {
			require.NoError(t, os.WriteFile(f, nil, 0o644))
		}

		list, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, uint(1), list[0].Version)
		assert.Len(t, list[0].Paths, 2)
		assert.Equal(t, "b", list[1].Name)
		assert.Len(t, list[1].Paths, 1)
	})
}
