package portal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/adoptionos/internal/platform/storage/memory"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ADOPTIONOS_STORAGE", "ADOPTIONOS_API_URL", "ADOPTIONOS_SESSION_TTL",
		"ADOPTIONOS_REQUEST_TIMEOUT", "ADOPTIONOS_METRICS_BEACON"} {
		unsetenv(t, key)
	}

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.MetricsBeacon)
}

func TestLoadConfig_DotenvDoesNotOverrideEnvironment(t *testing.T) {
	dotenv := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("ADOPTIONOS_REQUEST_TIMEOUT=3s\nPORT=9999\n"), 0o600))
	t.Setenv("PORT", "7070")
	unsetenv(t, "ADOPTIONOS_REQUEST_TIMEOUT")

	cfg, err := LoadConfig(dotenv)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestConfig_Validate(t *testing.T) {
	base := Config{APIURL: "https://api.example.org", Storage: "memory", SessionTTL: time.Hour, IdleTTL: time.Minute}

	cfg := base
	cfg.Storage = " SQLite "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StorageSQLite, cfg.Storage)

	cfg = base
	cfg.Storage = "redis"
	require.Error(t, cfg.Validate())

	cfg = base
	cfg.Storage = StoragePostgres
	require.ErrorContains(t, cfg.Validate(), "POSTGRES_DSN")

	cfg = base
	cfg.APIURL = "/relative"
	require.ErrorContains(t, cfg.Validate(), "ADOPTIONOS_API_URL")
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	b, err := OpenBackends(ctx, Config{Storage: StorageMemory}, afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b.Durable)

	fsys := afero.NewMemMapFs()
	b, err = OpenBackends(ctx, Config{Storage: StorageFile, StorageDir: "/state"}, fsys, nil)
	require.NoError(t, err)
	require.NoError(t, b.Durable.Set(ctx, "device:d:token", `"t"`))
	entries, err := afero.ReadDir(fsys, "/state")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.IsType(t, &memory.Backend{}, b.Session)

	b, err = OpenBackends(ctx, Config{Storage: StorageSQLite, SQLitePath: filepath.Join(t.TempDir(), "portal.db")}, fsys, nil)
	require.NoError(t, err)
	defer b.Close()
	require.NoError(t, b.Durable.Set(ctx, "k", "v"))
	value, ok, err := b.Durable.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	_, err = OpenBackends(ctx, Config{Storage: "tape"}, fsys, nil)
	require.Error(t, err)
}

// unsetenv clears key for the test and restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
