package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/focusflow/internal/jsonl"
	"github.com/mesh-intelligence/focusflow/internal/schema"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

func openBackend(t *testing.T, dir string) *Backend {
	t.Helper()
	b := NewBackend(nil)
	require.NoError(t, b.Open(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: dir,
	}))
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackend_Open(t *testing.T) {
	dir := t.TempDir()
	b := openBackend(t, dir)

	_, err := os.Stat(filepath.Join(dir, DatabaseFile))
	require.NoError(t, err, "database file created")

	version, err := b.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, version)

	// A second Open is a no-op.
	require.NoError(t, b.Open(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: dir}))
}

func TestBackend_OpenRejectsConfig(t *testing.T) {
	tests := []struct {
		name   string
		config types.Config
		want   error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "leveldb"}, types.ErrBackendUnknown},
		{"redis config", types.Config{Backend: types.BackendRedis, Redis: types.RedisConfig{Addr: "localhost:6379"}}, types.ErrBackendUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBackend(nil)
			err := b.Open(context.Background(), tt.config)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBackend_ConcurrentOpen(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend(nil)
	defer b.Close()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.Open(context.Background(), types.Config{Backend: types.BackendSQLite, DataDir: dir})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	version, err := b.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, version)
}

func TestBackend_Closed(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(nil)

	_, err := b.Get(ctx, types.CollectionTasks, "t1")
	assert.ErrorIs(t, err, types.ErrStoreClosed, "before Open")

	b = openBackend(t, t.TempDir())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "Close is idempotent")

	_, err = b.GetAll(ctx, types.CollectionTasks)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	err = b.Put(ctx, types.CollectionTasks, json.RawMessage(`{"id":"t1","text":"x"}`), "")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	err = b.Clear(ctx, types.CollectionTasks)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	_, err = b.SchemaVersion(ctx)
	assert.ErrorIs(t, err, types.ErrStoreClosed)
}

func TestBackend_DataSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b := openBackend(t, dir)
	require.NoError(t, b.Put(ctx, types.CollectionNotes, json.RawMessage(`{"id":"n1","title":"Ideas"}`), ""))
	require.NoError(t, b.Close())

	b = openBackend(t, dir)
	got, err := b.Get(ctx, types.CollectionNotes, "n1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"n1","title":"Ideas"}`, string(got))
}

// seedVersion1 writes a database in the version 1 layout, including a
// populated legacy achievements collection.
func seedVersion1(t *testing.T, dir string) {
	t.Helper()
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseFile))
	require.NoError(t, err)
	defer db.Close()

	tx := &schemaTx{q: db}
	require.NoError(t, schema.Run(ctx, schema.Steps[0], tx, schema.Env{}))
	require.NoError(t, tx.Put(ctx, types.CollectionAchievements, "task-starter",
		json.RawMessage(`{"id":"task-starter","name":"Task Starter","achievedOn":1650000000000}`)))
	require.NoError(t, tx.Put(ctx, types.CollectionAchievements, "beta-tester",
		json.RawMessage(`{"id":"beta-tester","name":"Beta Tester"}`)))
	require.NoError(t, tx.Put(ctx, types.CollectionTasks, "t1",
		json.RawMessage(`{"id":"t1","text":"kept","completed":true}`)))
	_, err = db.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
}

func TestBackend_UpgradesVersion1(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	seedVersion1(t, dir)

	b := openBackend(t, dir)

	version, err := b.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, version)

	raw, err := b.Get(ctx, types.CollectionMilestones, "task-starter")
	require.NoError(t, err)
	m, err := types.Decode[types.Milestone](raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1650000000000), m.AchievedOn)

	achievements, err := b.GetAll(ctx, types.CollectionAchievements)
	require.NoError(t, err)
	assert.Empty(t, achievements, "manual log starts empty")

	tasks, err := b.GetAll(ctx, types.CollectionTasks)
	require.NoError(t, err)
	assert.Len(t, tasks, 1, "user data untouched")

	archived, err := jsonl.Read(filepath.Join(dir, schema.LegacyArchiveFile))
	require.NoError(t, err)
	assert.Len(t, archived, 2)
}
