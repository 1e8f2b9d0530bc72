package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my-ranking-project")
	require.NoError(t, os.Mkdir(dir, 0o755))
	t.Setenv("PROJECT_ID", "")
	t.Setenv("FIRESTORE_PROJECT_ID", "")
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9000, cfg.Metrics.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "firestore", cfg.Rank.Backend)
	assert.Equal(t, time.Duration(0), cfg.Rank.CacheTTL)
	assert.Equal(t, "ranks", cfg.Firestore.Collection)
	assert.Equal(t, "0.0.0.0:8816", cfg.Emulator.HostPort)
	assert.Equal(t, "rank-exports", cfg.Storage.Bucket)
	assert.False(t, cfg.Tracing.Enabled)

	// No project configured: fall back to the directory name.
	assert.Equal(t, "my-ranking-project", cfg.Firestore.ProjectID)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3100")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RANK_BACKEND", "memory")
	t.Setenv("RANK_CACHE_TTL", "5s")
	t.Setenv("FIRESTORE_EMULATOR_HOST", "[::1]:8816")
	t.Setenv("PROJECT_ID", "from-makefile")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3100, cfg.Server.Port)
	assert.Equal(t, 9100, cfg.Metrics.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "memory", cfg.Rank.Backend)
	assert.Equal(t, 5*time.Second, cfg.Rank.CacheTTL)
	assert.Equal(t, "[::1]:8816", cfg.Firestore.EmulatorHost)
	assert.Equal(t, "from-makefile", cfg.Firestore.ProjectID)
}

func TestLoadConfig_PrefixedProjectWins(t *testing.T) {
	t.Setenv("FIRESTORE_PROJECT_ID", "explicit")
	t.Setenv("PROJECT_ID", "from-makefile")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Firestore.ProjectID)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SERVER_API_KEY=secret\n"), 0o600))
	t.Setenv("SERVER_API_KEY", "")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Server.ApiKey)
}
