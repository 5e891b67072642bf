package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/taskdeck/internal/task"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "taskdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndListTasks(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first, err := db.CreateTask(ctx, "first")
	require.NoError(t, err)
	second, err := db.CreateTask(ctx, "second")
	require.NoError(t, err)

	tasks, err := db.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, first.ID, tasks[0].ID)
	assert.Equal(t, second.ID, tasks[1].ID)
	assert.Equal(t, task.StatusActive, tasks[0].Status)
	assert.Equal(t, "first", tasks[0].Name)
}

func TestGetTask(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.CreateTask(ctx, "lookup me")
	require.NoError(t, err)

	got, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup me", got.Name)

	_, err = db.GetTask(ctx, "nope")
	assert.Error(t, err)
}

func TestSetTaskStatus(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.CreateTask(ctx, "work")
	require.NoError(t, err)

	require.NoError(t, db.SetTaskStatus(ctx, created.ID, task.StatusCompleted))
	got, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)

	// Archiving keeps the row.
	require.NoError(t, db.SetTaskStatus(ctx, created.ID, task.StatusArchived))
	got, err = db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusArchived, got.Status)

	assert.Error(t, db.SetTaskStatus(ctx, "missing", task.StatusCompleted))
}

func TestAddRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	created, err := db.CreateTask(ctx, "multi-repo")
	require.NoError(t, err)

	require.NoError(t, db.AddRepository(ctx, created.ID, task.Repository{Name: "api", Path: "/src/api", Branch: "main"}))
	require.NoError(t, db.AddRepository(ctx, created.ID, task.Repository{Name: "web"}))

	got, err := db.GetTask(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Repositories, 2)
	assert.Equal(t, "api", got.Repositories[0].Name)
	assert.Equal(t, "main", got.Repositories[0].Branch)
	assert.Equal(t, "web", got.Repositories[1].Name)
}

func TestEnsureTask(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.EnsureTask(ctx, "t1", "t1"))
	// Idempotent; a second call must not clobber the row.
	require.NoError(t, db.SetTaskStatus(ctx, "t1", task.StatusCompleted))
	require.NoError(t, db.EnsureTask(ctx, "t1", "t1"))

	got, err := db.GetTask(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, got.Status)
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.Len(t, id, 12)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAppendEventDeduplicates(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.EnsureTask(ctx, "t1", "t1"))

	line := []byte(`{"type":"tool_call","tool_call":{"name":"bash","input":{"command":"ls"}}}`)

	fresh, err := db.AppendEvent(ctx, "t1", line)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = db.AppendEvent(ctx, "t1", line)
	require.NoError(t, err)
	assert.False(t, fresh, "identical line must be ignored")

	n, err := db.CountEvents(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The same line under another task is a distinct event.
	require.NoError(t, db.EnsureTask(ctx, "t2", "t2"))
	fresh, err = db.AppendEvent(ctx, "t2", line)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestListEventsSkipsUndecodableLines(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.EnsureTask(ctx, "t1", "t1"))

	lines := [][]byte{
		[]byte(`{"type":"tool_call","tool_call":{"name":"bash","input":{"command":"ls"}}}`),
		[]byte(`{"type":"tool_call","tool_call":{}}`), // no tool name
		[]byte(`{"type":"tool_call","tool_call":{"name":"write","input":{"file_path":"/tmp/a"}}}`),
	}
	for _, line := range lines {
		_, err := db.AppendEvent(ctx, "t1", line)
		require.NoError(t, err)
	}

	events, err := db.ListEvents(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "bash", events[0].Call.Name)
	assert.Equal(t, "write", events[1].Call.Name)
	assert.Equal(t, "t1", events[0].TaskID, "missing task id is filled from the query")
}

func TestLineHashStable(t *testing.T) {
	a := LineHash([]byte("same"))
	b := LineHash([]byte("same"))
	c := LineHash([]byte("different"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
