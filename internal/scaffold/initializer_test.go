package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dyluth/whirlpool/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	t.Run("fresh initialization", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Initialize(dir, false))

		for _, path := range Created {
			assert.FileExists(t, filepath.Join(dir, path))
		}

		cfg, err := config.Load(filepath.Join(dir, config.DefaultPath))
		require.NoError(t, err)
		assert.Equal(t, []string{"LOCThinker", "WikipediaThinker"}, cfg.ThinkerNames())
		assert.Equal(t, "stake", cfg.Seed)
		assert.Nil(t, cfg.Redis)
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old content"), 0644))

		err := Initialize(dir, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project already initialized")

		content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
		require.NoError(t, err)
		assert.Equal(t, "old content", string(content))
	})

	t.Run("force overwrites existing files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultPath), []byte("old content"), 0644))

		require.NoError(t, Initialize(dir, true))

		content, err := os.ReadFile(filepath.Join(dir, config.DefaultPath))
		require.NoError(t, err)
		assert.Contains(t, string(content), "WikipediaThinker")
	})
}

func TestCheckExisting(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, CheckExisting(dir))

	for _, path := range Created {
		require.NoError(t, os.WriteFile(filepath.Join(dir, path), nil, 0644))
	}
	err := CheckExisting(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "  - whirlpool.yml\n")
	assert.Contains(t, err.Error(), "  - .env.example\n")
}
