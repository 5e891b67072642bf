package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/codefionn/taskdeck/internal/task"
)

// listSource is an in-memory task.Source for view tests.
type listSource struct {
	tasks   []task.Task
	listErr error
	nextID  int32

	// when set, ListTasks signals started and waits for release.
	started chan struct{}
	release chan struct{}
}

func (s *listSource) ListTasks(ctx context.Context) ([]task.Task, error) {
	if s.started != nil {
		close(s.started)
		s.started = nil
		<-s.release
	}
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]task.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *listSource) CreateTask(ctx context.Context, name string) (task.Task, error) {
	id := atomic.AddInt32(&s.nextID, 1)
	t := task.Task{ID: fmt.Sprintf("new-%d", id), Name: name, Status: task.StatusActive}
	s.tasks = append(s.tasks, t)
	return t, nil
}

func (s *listSource) SetTaskStatus(ctx context.Context, id string, status task.Status) error {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("task %s not found", id)
}

func listFixture() []task.Task {
	return []task.Task{
		{ID: "a", Name: "refactor auth", Status: task.StatusActive,
			Repositories: []task.Repository{{Name: "api"}, {Name: "web"}}},
		{ID: "b", Name: "ship release", Status: task.StatusCompleted,
			Repositories: []task.Repository{{Name: "api"}}},
		{ID: "c", Name: "old migration", Status: task.StatusArchived},
	}
}

func loadedListModel(t *testing.T, tasks []task.Task) (TaskListModel, *task.Store) {
	t.Helper()
	store := task.NewStore(&listSource{tasks: tasks})
	if err := store.LoadTasks(context.Background()); err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	m := NewTaskListModel(store)
	m.SetSize(80, 24)
	return m, store
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestListViewLoadingTakesPrecedence(t *testing.T) {
	src := &listSource{
		tasks:   listFixture(),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := task.NewStore(src)

	started := src.started
	done := make(chan error, 1)
	go func() { done <- store.LoadTasks(context.Background()) }()
	<-started

	m := NewTaskListModel(store)
	view := m.View()
	if !strings.Contains(view, "Loading tasks") {
		t.Errorf("view while loading missing loading indicator:\n%s", view)
	}
	if strings.Contains(view, "refactor auth") {
		t.Errorf("view while loading must not render the groups:\n%s", view)
	}
	if strings.Contains(view, "No tasks yet") {
		t.Errorf("view while loading must not render the empty state:\n%s", view)
	}

	close(src.release)
	if err := <-done; err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}

	view = m.View()
	if !strings.Contains(view, "refactor auth") {
		t.Errorf("view after loading missing tasks:\n%s", view)
	}
}

func TestListViewLoadError(t *testing.T) {
	store := task.NewStore(&listSource{listErr: errors.New("connection refused")})
	_ = store.LoadTasks(context.Background())

	m := NewTaskListModel(store)
	view := m.View()
	if !strings.Contains(view, "Failed to load tasks") {
		t.Errorf("view missing error banner:\n%s", view)
	}
	if !strings.Contains(view, "connection refused") {
		t.Errorf("view missing the underlying error:\n%s", view)
	}
	if !strings.Contains(view, "Press r to retry") {
		t.Errorf("view missing retry hint:\n%s", view)
	}
	if strings.Contains(view, "No tasks yet") {
		t.Errorf("error state must not render the empty state:\n%s", view)
	}
}

func TestListViewEmptyState(t *testing.T) {
	m, _ := loadedListModel(t, nil)
	view := m.View()
	if !strings.Contains(view, "No tasks yet") {
		t.Errorf("view missing empty state:\n%s", view)
	}
}

func TestListViewGroups(t *testing.T) {
	m, _ := loadedListModel(t, listFixture())
	view := m.View()

	if !strings.Contains(view, "Active") || !strings.Contains(view, "Completed") {
		t.Errorf("view missing group headers:\n%s", view)
	}
	if !strings.Contains(view, "refactor auth") {
		t.Errorf("view missing active task:\n%s", view)
	}
	if !strings.Contains(view, "(2 repos)") {
		t.Errorf("active task missing repo count:\n%s", view)
	}
	if !strings.Contains(view, "ship release") {
		t.Errorf("view missing completed task:\n%s", view)
	}
	if strings.Contains(view, "(1 repo)") {
		t.Errorf("completed tasks must not show a repo count:\n%s", view)
	}
	if strings.Contains(view, "old migration") {
		t.Errorf("archived task must not be visible:\n%s", view)
	}
	if strings.Contains(view, "No tasks yet") {
		t.Errorf("non-empty list must not render the empty state:\n%s", view)
	}
}

func TestListViewAllArchived(t *testing.T) {
	m, _ := loadedListModel(t, []task.Task{
		{ID: "x", Name: "buried", Status: task.StatusArchived},
	})
	view := m.View()
	if strings.Contains(view, "No tasks yet") {
		t.Errorf("archived tasks count against emptiness:\n%s", view)
	}
	if strings.Contains(view, "buried") {
		t.Errorf("archived tasks must stay hidden:\n%s", view)
	}
}

func TestListNavigationAndOpen(t *testing.T) {
	m, store := loadedListModel(t, listFixture())

	// Move to the second visible row (the completed task) and open it.
	m, _ = m.Update(keyMsg("j"))
	m, cmd := m.Update(keyMsg("enter"))
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	msg := cmd()
	open, ok := msg.(openTaskMsg)
	if !ok {
		t.Fatalf("enter produced %T, want openTaskMsg", msg)
	}
	if open.task.ID != "b" {
		t.Errorf("opened task %q, want %q", open.task.ID, "b")
	}
	if store.SelectedID() != "b" {
		t.Errorf("SelectedID() = %q, want %q", store.SelectedID(), "b")
	}
}

func TestListCursorStaysInBounds(t *testing.T) {
	m, _ := loadedListModel(t, listFixture())

	for i := 0; i < 10; i++ {
		m, _ = m.Update(keyMsg("j"))
	}
	if m.cursor != 1 {
		t.Errorf("cursor = %d after overshooting down, want 1", m.cursor)
	}
	for i := 0; i < 10; i++ {
		m, _ = m.Update(keyMsg("k"))
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d after overshooting up, want 0", m.cursor)
	}
}

func TestListCreateTask(t *testing.T) {
	m, store := loadedListModel(t, nil)

	m, _ = m.Update(keyMsg("n"))
	if !m.creating {
		t.Fatal("n did not enter create mode")
	}

	for _, r := range "deploy docs" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, cmd := m.Update(keyMsg("enter"))
	if m.creating {
		t.Error("enter did not leave create mode")
	}
	if cmd == nil {
		t.Fatal("enter produced no command")
	}

	msg := cmd()
	created, ok := msg.(taskCreatedMsg)
	if !ok {
		t.Fatalf("got %T, want taskCreatedMsg", msg)
	}
	if created.err != nil {
		t.Fatalf("create error = %v", created.err)
	}
	if created.created.Name != "deploy docs" {
		t.Errorf("created task name = %q, want %q", created.created.Name, "deploy docs")
	}
	if store.Len() != 1 {
		t.Errorf("store Len() = %d, want 1", store.Len())
	}
}

func TestListCreateCancelled(t *testing.T) {
	m, store := loadedListModel(t, nil)

	m, _ = m.Update(keyMsg("n"))
	m, cmd := m.Update(keyMsg("esc"))
	if m.creating {
		t.Error("esc did not leave create mode")
	}
	if cmd != nil {
		t.Error("esc must not produce a command")
	}
	if store.Len() != 0 {
		t.Errorf("store Len() = %d, want 0", store.Len())
	}
}

func TestListCompleteAndArchive(t *testing.T) {
	m, store := loadedListModel(t, listFixture())

	// Complete the first active task.
	m, cmd := m.Update(keyMsg("c"))
	if cmd == nil {
		t.Fatal("c produced no command")
	}
	if msg := cmd().(statusChangedMsg); msg.err != nil {
		t.Fatalf("complete error = %v", msg.err)
	}
	if len(store.Active()) != 0 {
		t.Errorf("Active() has %d tasks after completing, want 0", len(store.Active()))
	}

	// Archive the row now under the cursor.
	m, cmd = m.Update(keyMsg("a"))
	if cmd == nil {
		t.Fatal("a produced no command")
	}
	if msg := cmd().(statusChangedMsg); msg.err != nil {
		t.Fatalf("archive error = %v", msg.err)
	}
	if store.Len() != 3 {
		t.Errorf("Len() = %d after archiving, want 3", store.Len())
	}
}
