package task

import (
	"context"
	"fmt"
	"sync"

	"github.com/codefionn/taskdeck/internal/logger"
)

// Source supplies and mutates the task list. Implementations: the
// taskdeckd HTTP client and the local SQLite store.
type Source interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, name string) (Task, error)
	SetTaskStatus(ctx context.Context, id string, status Status) error
}

// Store is the client-side state container for the task list. All
// mutation goes through its methods; views read synchronous snapshots.
// Loads complete on their own goroutines, so state is mutex-guarded.
type Store struct {
	mu         sync.RWMutex
	source     Source
	tasks      []Task
	selectedID string
	loading    bool
	loadErr    error
	generation uint64
}

// NewStore creates a Store backed by the given source.
func NewStore(source Source) *Store {
	return &Store{source: source}
}

// LoadTasks fetches the task list from the source, replacing the local
// list on success. Safe to call repeatedly: each call bumps a
// generation counter and a completion that lost the race to a newer
// load is dropped (latest wins), which also guards against a stale
// completion arriving after the caller moved on.
func (s *Store) LoadTasks(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.loadErr = nil
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	tasks, err := s.source.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		logger.Debug("LoadTasks: dropping stale completion (gen %d, current %d)", gen, s.generation)
		return nil
	}
	s.loading = false
	if err != nil {
		s.loadErr = fmt.Errorf("failed to load tasks: %w", err)
		return s.loadErr
	}
	s.tasks = tasks
	return nil
}

// CreateTask creates a task through the source and appends it locally.
func (s *Store) CreateTask(ctx context.Context, name string) (Task, error) {
	t, err := s.source.CreateTask(ctx, name)
	if err != nil {
		return Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t, nil
}

// SetTaskStatus transitions a task through the source and mirrors the
// change locally. Archiving is a soft transition; the task stays in the
// list.
func (s *Store) SetTaskStatus(ctx context.Context, id string, status Status) error {
	if err := s.source.SetTaskStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			break
		}
	}
	return nil
}

// SelectTask sets the selected task id. No side effects on the list;
// an empty id clears the selection.
func (s *Store) SelectTask(id string) {
	s.mu.Lock()
	s.selectedID = id
	s.mu.Unlock()
}

// SelectedID returns the currently selected task id, or "".
func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// SelectedTask returns the selected task, if it is still in the list.
func (s *Store) SelectedTask() (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == s.selectedID {
			return t, true
		}
	}
	return Task{}, false
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoadError returns the error of the most recent failed load, cleared
// when a new load starts.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Tasks returns a snapshot of all tasks, archived included.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len counts all tasks including archived ones. The empty state keys
// off this, not off the visible groups.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Active returns the tasks shown in the active group, in list order.
func (s *Store) Active() []Task {
	return s.filter(func(t Task) bool { return t.IsActive() })
}

// Completed returns the tasks shown in the completed group, in list order.
func (s *Store) Completed() []Task {
	return s.filter(func(t Task) bool { return t.IsCompleted() })
}

func (s *Store) filter(keep func(Task) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
