package redis

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/focusflow/internal/schema"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// openEngine connects to the server named by FOCUSFLOW_TEST_REDIS_ADDR under
// a random key prefix, or skips the test.
func openEngine(t *testing.T) *Engine {
	t.Helper()
	addr := os.Getenv("FOCUSFLOW_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FOCUSFLOW_TEST_REDIS_ADDR not set")
	}

	prefix := "focusflow-test-" + uuid.NewString()
	e := NewEngine(nil)
	require.NoError(t, e.Open(context.Background(), types.Config{
		Backend: types.BackendRedis,
		DataDir: t.TempDir(),
		Redis: types.RedisConfig{
			Addr:           addr,
			KeyPrefix:      prefix,
			ConnectTimeout: 2 * time.Second,
		},
	}))
	t.Cleanup(func() {
		ctx := context.Background()
		if e.client != nil {
			iter := e.client.Scan(ctx, 0, prefix+":*", 100).Iterator()
			for iter.Next(ctx) {
				e.client.Del(ctx, iter.Val())
			}
		}
		e.Close()
	})
	return e
}

func TestEngine_OpenUpgradesSchema(t *testing.T) {
	e := openEngine(t)

	version, err := e.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schema.CurrentVersion, version)

	ok, err := (&schemaTx{client: e.client, keys: e.keys}).HasCollection(context.Background(), types.CollectionMilestones)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEngine_Records(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t)

	require.NoError(t, e.Put(ctx, types.CollectionTasks, json.RawMessage(`{"id":"b","text":"second"}`), ""))
	require.NoError(t, e.Put(ctx, types.CollectionTasks, json.RawMessage(`{"id":"a","text":"first"}`), ""))

	got, err := e.Get(ctx, types.CollectionTasks, "a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","text":"first"}`, string(got))

	entries, err := e.GetAllEntries(ctx, types.CollectionTasks)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)

	require.NoError(t, e.Delete(ctx, types.CollectionTasks, "a"))
	assert.ErrorIs(t, e.Delete(ctx, types.CollectionTasks, "a"), types.ErrNotFound)
	_, err = e.Get(ctx, types.CollectionTasks, "a")
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, e.Clear(ctx, types.CollectionTasks))
	values, err := e.GetAll(ctx, types.CollectionTasks)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestEngine_Apply(t *testing.T) {
	ctx := context.Background()
	e := openEngine(t)

	bad := types.NewBatch()
	bad.Put(types.CollectionNotes, "n1", json.RawMessage(`{"id":"n1"}`))
	bad.Put(types.CollectionFolders, "f1", json.RawMessage(`{"id":"f1","type":"photos"}`))
	require.ErrorIs(t, e.Apply(ctx, bad), types.ErrInvalidData)
	_, err := e.Get(ctx, types.CollectionNotes, "n1")
	assert.ErrorIs(t, err, types.ErrNotFound)

	good := types.NewBatch()
	good.Put(types.CollectionNotes, "n1", json.RawMessage(`{"id":"n1"}`))
	good.Put(types.CollectionUserProfile, "name", json.RawMessage(`"Ada"`))
	require.NoError(t, e.Apply(ctx, good))

	name, err := e.Get(ctx, types.CollectionUserProfile, "name")
	require.NoError(t, err)
	assert.JSONEq(t, `"Ada"`, string(name))
}

func TestEngine_Closed(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Get(context.Background(), types.CollectionTasks, "x")
	assert.ErrorIs(t, err, types.ErrStoreClosed)
	assert.NoError(t, e.Close())
}

func TestEngine_UnknownCollection(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.GetAll(context.Background(), "widgets")
	assert.ErrorIs(t, err, types.ErrCollectionNotFound)
}
