package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/focusflow/internal/share"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FOCUSFLOW_BACKEND", "FOCUSFLOW_DATA_DIR", "FOCUSFLOW_LOG_LEVEL",
		"FOCUSFLOW_REDIS_ADDR", "FOCUSFLOW_REDIS_DB", "FOCUSFLOW_SHARE_ADDR",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadSettingsDefaults(t *testing.T) {
	clearConfigEnv(t)

	s, err := loadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, defaultLogLevel, s.LogLevel)
	assert.Equal(t, share.DefaultAddr, s.Share.Addr)
	assert.Equal(t, types.DefaultRedisKeyPrefix, s.Redis.KeyPrefix)
	assert.Equal(t, types.DefaultRedisMaxWait, s.Redis.MaxWait)
}

func TestLoadSettingsPrecedence(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
backend: redis
data_dir: db
log_level: info
redis:
  addr: localhost:6379
  db: 2
  max_wait: 30s
share:
  addr: ":9000"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"FOCUSFLOW_LOG_LEVEL=error\nFOCUSFLOW_REDIS_DB=4\nFOCUSFLOW_SHARE_ADDR=:7000\nOTHER=ignored\n"), 0o644))
	t.Setenv("FOCUSFLOW_SHARE_ADDR", ":6000")

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendRedis, s.Backend, "config file")
	assert.Equal(t, "db", s.DataDir)
	assert.Equal(t, "localhost:6379", s.Redis.Addr)
	assert.Equal(t, 30*time.Second, s.Redis.MaxWait)
	assert.Equal(t, "error", s.LogLevel, ".env beats config file")
	assert.Equal(t, 4, s.Redis.DB, ".env beats config file")
	assert.Equal(t, ":6000", s.Share.Addr, "environment beats .env")
	_, leaked := os.LookupEnv("OTHER")
	assert.False(t, leaked, ".env does not touch the process environment")
}

func TestLoadSettingsBadFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("backend: [\n"), 0o644))

	_, err := loadSettings(dir)
	assert.Error(t, err)
}

func TestWriteConfigIfMissing(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	created, err := writeConfigIfMissing(dir)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# focusflow configuration")
	assert.Contains(t, string(data), "backend: sqlite")

	s, err := loadSettings(dir)
	require.NoError(t, err)
	assert.Equal(t, types.BackendSQLite, s.Backend)
	assert.Equal(t, share.DefaultAddr, s.Share.Addr)

	created, err = writeConfigIfMissing(dir)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestStoreConfigResolvesRelativeDataDir(t *testing.T) {
	clearConfigEnv(t)
	a := &app{configDir: "/etc/focusflow", settings: Settings{Backend: types.BackendSQLite, DataDir: "db"}}

	cfg, err := a.storeConfig()
	require.NoError(t, err)
	assert.Equal(t, "/etc/focusflow/db", cfg.DataDir)

	a.flags.dataDir = "/explicit"
	cfg, err = a.storeConfig()
	require.NoError(t, err)
	assert.Equal(t, "/explicit", cfg.DataDir)
}

func TestNewStore(t *testing.T) {
	for _, backend := range []string{types.BackendSQLite, types.BackendRedis} {
		s, err := newStore(backend, nil)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	_, err := newStore("mongo", nil)
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
