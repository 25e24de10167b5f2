package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/focusflow/internal/backup"
	"github.com/mesh-intelligence/focusflow/internal/schema"
	"github.com/mesh-intelligence/focusflow/pkg/focusflow"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	configDir string
	dataDir   string
}

type result struct {
	stdout string
	stderr string
	code   int
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("FOCUSFLOW_CONFIG_DIR", "")
	t.Setenv("FOCUSFLOW_DATA_DIR", "")
	t.Setenv("FOCUSFLOW_BACKEND", "")
	t.Setenv("FOCUSFLOW_LOG_LEVEL", "")
	root := t.TempDir()
	return testEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func (e testEnv) runCtx(t *testing.T, ctx context.Context, args ...string) result {
	t.Helper()
	root := newRootCmd(&app{now: func() time.Time { return testNow }})
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	full := append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...)
	code := run(ctx, root, full, &stderr)
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func (e testEnv) run(t *testing.T, args ...string) result {
	t.Helper()
	return e.runCtx(t, context.Background(), args...)
}

// mustRun fails the test unless the command succeeds.
func (e testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res := e.run(t, args...)
	require.Equal(t, ExitSuccess, res.code, "args %v: stderr %s", args, res.stderr)
	return res.stdout
}

func decodeOut[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "version")
	assert.Contains(t, out, "focusflow v"+focusflow.Version)
	assert.Contains(t, out, modulePath)

	got := decodeOut[map[string]string](t, env.mustRun(t, "--json", "version"))
	assert.Equal(t, focusflow.Version, got["version"])
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	first := decodeOut[initResult](t, env.mustRun(t, "--json", "init"))
	assert.True(t, first.ConfigCreated)
	assert.Equal(t, schema.CurrentVersion, first.SchemaVersion)
	assert.Equal(t, env.dataDir, first.DataDir)
	assert.Equal(t, "sqlite", first.Backend)
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.DirExists(t, env.dataDir)

	second := decodeOut[initResult](t, env.mustRun(t, "--json", "init"))
	assert.False(t, second.ConfigCreated, "init is idempotent")

	assert.Contains(t, env.mustRun(t, "init"), "focusflow initialized")
}

func TestRawRecords(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "put", "settings", "14", "exportReminderFrequency")
	assert.JSONEq(t, "14", env.mustRun(t, "get", "settings", "exportReminderFrequency"))

	env.mustRun(t, "put", "folders", `{"id":"f1","name":"Work","type":"note","color":"red"}`)
	got := decodeOut[map[string]any](t, env.mustRun(t, "get", "folders", "f1"))
	assert.Equal(t, "red", got["color"], "unknown fields survive")

	entries := decodeOut[[]map[string]any](t, env.mustRun(t, "list", "settings"))
	require.Len(t, entries, 1)
	assert.Equal(t, "exportReminderFrequency", entries[0]["key"])

	folders := decodeOut[[]map[string]any](t, env.mustRun(t, "list", "folders"))
	require.Len(t, folders, 1)

	env.mustRun(t, "delete", "folders", "f1")
	assert.Equal(t, ExitUserError, env.run(t, "get", "folders", "f1").code)
	assert.Equal(t, ExitUserError, env.run(t, "delete", "folders", "f1").code)

	env.mustRun(t, "clear", "settings")
	assert.Equal(t, "[]\n", env.mustRun(t, "list", "settings"))
}

func TestUserErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown collection", []string{"list", "recipes"}},
		{"missing args", []string{"get", "tasks"}},
		{"unknown flag", []string{"list", "tasks", "--nope"}},
		{"invalid json", []string{"put", "tasks", "{"}},
		{"invalid record", []string{"put", "tasks", `{"id":"t1","priority":9}`}},
		{"kv without key", []string{"put", "settings", "1"}},
		{"invalid folder type", []string{"put", "folders", `{"id":"f1","type":"photo"}`}},
		{"unknown milestone", []string{"put", "milestones", `{"id":"nope"}`}},
		{"add to milestones", []string{"add", "milestones", `{"name":"x"}`}},
		{"add to settings", []string{"add", "settings", `{}`}},
		{"patch not an object", []string{"update", "tasks", "t1", "[1]"}},
		{"update missing record", []string{"update", "tasks", "t1", `{"text":"x"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.run(t, tt.args...)
			assert.Equal(t, ExitUserError, res.code, res.stderr)
			assert.Contains(t, res.stderr, "focusflow:")
		})
	}
}

func TestAddAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	task := decodeOut[map[string]any](t, env.mustRun(t, "add", "tasks", `{"text":"Write report","priority":2}`))
	id, _ := task["id"].(string)
	require.NotEmpty(t, id)
	assert.Greater(t, task["createdAt"], float64(0))

	updated := decodeOut[map[string]any](t, env.mustRun(t, "update", "tasks", id, `{"completed":true}`))
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "Write report", updated["text"])
	assert.Greater(t, updated["updatedAt"], float64(0))

	assert.Equal(t, ExitUserError, env.run(t, "update", "tasks", id, `{"id":"other"}`).code)

	sub := decodeOut[map[string]any](t, env.mustRun(t, "add", "tasks", `{"text":"Outline","parentId":"`+id+`"}`))
	assert.Equal(t, id, sub["parentId"])
	assert.Equal(t, ExitUserError, env.run(t, "add", "tasks", `{"text":"Orphan","parentId":"missing"}`).code)
}

func TestAddChecksFolders(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "put", "folders", `{"id":"fj","name":"Diary","type":"journal"}`)
	env.mustRun(t, "put", "folders", `{"id":"fn","name":"Ideas","type":"note"}`)

	env.mustRun(t, "add", "notes", `{"title":"ok","folderId":"fn"}`)
	env.mustRun(t, "add", "journal", `{"title":"ok","folderId":"fj"}`)
	assert.Equal(t, ExitUserError, env.run(t, "add", "notes", `{"title":"wrong","folderId":"fj"}`).code)
	assert.Equal(t, ExitUserError, env.run(t, "add", "notes", `{"title":"dangling","folderId":"gone"}`).code)
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "put", "tasks", `{"id":"t1","text":"Ship","completed":true}`)
	env.mustRun(t, "put", "userProfile", `"Ada"`, "name")

	outDir := t.TempDir()
	exported := decodeOut[map[string]string](t, env.mustRun(t, "--json", "export", "--out", outDir))
	path := exported["path"]
	assert.Equal(t, filepath.Join(outDir, backup.FileName(testNow)), path)
	require.FileExists(t, path)

	due := decodeOut[map[string]bool](t, env.mustRun(t, "--json", "reminder"))
	assert.False(t, due["due"], "export resets the reminder")

	env.mustRun(t, "clear", "tasks")
	env.mustRun(t, "clear", "userProfile")

	res := decodeOut[importResult](t, env.mustRun(t, "--json", "import", path))
	assert.Equal(t, 1, res.Counts["tasks"])
	assert.Equal(t, []string{"first-steps"}, res.Milestones, "imported data earns milestones")

	assert.JSONEq(t, `{"id":"t1","text":"Ship","completed":true}`, env.mustRun(t, "get", "tasks", "t1"))
	assert.JSONEq(t, `"Ada"`, env.mustRun(t, "get", "userProfile", "name"))

	text := env.run(t, "import", path)
	require.Equal(t, ExitSuccess, text.code, text.stderr)
	assert.Contains(t, text.stdout, "Import successful!")
	assert.Contains(t, text.stderr, "Importing...")
}

func TestImportRejects(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"tasks":[]}`), 0o644))

	res := env.run(t, "import", bad)
	assert.Equal(t, ExitUserError, res.code)
	assert.Contains(t, res.stderr, "Missing required data store")

	missing := env.run(t, "import", filepath.Join(dir, "nope.json"))
	assert.Equal(t, ExitUserError, missing.code)
}

func TestReminder(t *testing.T) {
	env := newTestEnv(t)

	due := decodeOut[map[string]bool](t, env.mustRun(t, "--json", "reminder"))
	assert.True(t, due["due"], "never exported")

	env.mustRun(t, "put", "settings", "0", "exportReminderFrequency")
	due = decodeOut[map[string]bool](t, env.mustRun(t, "--json", "reminder"))
	assert.False(t, due["due"], "0 disables the reminder")
}

func TestMilestones(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "put", "tasks", `{"id":"t1","text":"Ship","completed":true}`)
	env.mustRun(t, "put", "folders", `{"id":"f1","name":"Work","type":"note"}`)

	first := decodeOut[milestonesResult](t, env.mustRun(t, "--json", "milestones", "--retroactive"))
	assert.False(t, first.Skipped)
	assert.Equal(t, []string{"first-steps", "organizer"}, first.Awarded)

	again := decodeOut[milestonesResult](t, env.mustRun(t, "--json", "milestones", "--retroactive"))
	assert.True(t, again.Skipped)
	assert.Empty(t, again.Awarded)
	assert.ElementsMatch(t, []string{"first-steps", "organizer"}, again.Unlocked)

	normal := env.run(t, "milestones")
	require.Equal(t, ExitSuccess, normal.code, normal.stderr)
	assert.Contains(t, normal.stdout, "0 awarded, 2 of 9 unlocked")
}

func TestMilestonesNotify(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "put", "tasks", `{"id":"t1","text":"Ship","completed":true}`)

	res := env.run(t, "milestones")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "Milestone Unlocked: First Steps!")
}

func TestServeStopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	res := env.runCtx(t, ctx, "serve", "--addr", "127.0.0.1:0")
	assert.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestRedisBackendNeedsAddress(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("FOCUSFLOW_BACKEND", "redis")
	t.Setenv("FOCUSFLOW_REDIS_ADDR", "")

	res := env.run(t, "list", "tasks")
	assert.Equal(t, ExitUserError, res.code)
	assert.Contains(t, res.stderr, "redis address")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"user", userError(os.ErrInvalid), ExitUserError},
		{"system", sysError(os.ErrClosed), ExitSysError},
		{"unclassified", os.ErrInvalid, ExitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
