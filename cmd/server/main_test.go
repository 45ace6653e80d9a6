package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productentity "product_backend/internal/feature/products/domain/entity"
	"product_backend/internal/platform/filestorage"
)

func TestLoadConfig_EnvFile(t *testing.T) {
	// 空の環境変数はファイルの値を上書きしない
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "")
	path := filepath.Join(t.TempDir(), "server.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-file\nSERVER_PORT=9090\n"), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfig_MissingEnvFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestHasPlaceholder(t *testing.T) {
	files, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.False(t, hasPlaceholder(files))

	require.NoError(t, os.WriteFile(filepath.Join(files.Root(), productentity.DefaultImage), []byte("jpg"), 0o644))
	assert.True(t, hasPlaceholder(files))
}
