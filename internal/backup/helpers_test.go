package backup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/focusflow/internal/sqlite"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

func newStore(t *testing.T) types.Store {
	t.Helper()
	store := sqlite.NewBackend(nil)
	require.NoError(t, store.Open(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { store.Close() })
	return store
}

func put(t *testing.T, store types.Store, collection, value, key string) {
	t.Helper()
	require.NoError(t, store.Put(context.Background(), collection, json.RawMessage(value), key))
}

// snapshot returns every collection as key to compacted value.
func snapshot(t *testing.T, store types.Store) map[string]map[string]string {
	t.Helper()
	out := make(map[string]map[string]string)
	for _, name := range types.AllCollections() {
		entries, err := store.GetAllEntries(context.Background(), name)
		require.NoError(t, err)
		m := make(map[string]string, len(entries))
		for _, e := range entries {
			m[e.Key] = string(e.Value)
		}
		out[name] = m
	}
	return out
}

func seed(t *testing.T, store types.Store) {
	t.Helper()
	put(t, store, types.CollectionTasks, `{"id":"t1","text":"Write","completed":true,"priority":1,"createdAt":10}`, "")
	put(t, store, types.CollectionTasks, `{"id":"t2","text":"Ship","parentId":"t1","createdAt":11}`, "")
	put(t, store, types.CollectionNotes, `{"id":"n1","title":"Idea","content":"<p>x</p>","tags":["a"],"shareId":"abc"}`, "")
	put(t, store, types.CollectionJournal, `{"id":"j1","title":"Day 1"}`, "")
	put(t, store, types.CollectionGoals, `{"id":"g1","text":"Run","type":"habit","completedDates":["2026-10-01"],"currentStreak":1}`, "")
	put(t, store, types.CollectionTimelines, `{"id":"tl1","name":"Life","events":[{"id":"e1","date":"2000-01-01","title":"Born"}]}`, "")
	put(t, store, types.CollectionFolders, `{"id":"f1","name":"Work","type":"note"}`, "")
	put(t, store, types.CollectionMilestones, `{"id":"first-steps","name":"First Steps","description":"d","achievedOn":5}`, "")
	put(t, store, types.CollectionAchievements, `{"id":"a1","title":"Promotion"}`, "")
	put(t, store, types.CollectionUserProfile, `"Ada"`, "name")
	put(t, store, types.CollectionSettings, `14`, types.SettingExportReminderFrequency)
	put(t, store, types.CollectionSettings, `{"mode":"dark"}`, "theme")
}
