package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.design/x/clipboard"

	"github.com/codefionn/taskdeck/internal/task"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// requestTimeout bounds every background call to the task source.
const requestTimeout = 30 * time.Second

// EventStream is a live or replayed tool-call stream for one task.
// *api.Subscription satisfies it; offline mode wraps stored events
// with NewReplayStream.
type EventStream interface {
	Events() <-chan toolcall.Event
	Close() error
}

// SubscribeFunc opens the event stream for a task.
type SubscribeFunc func(ctx context.Context, taskID string) (EventStream, error)

// tasksLoadedMsg is sent when a task list load completes.
type tasksLoadedMsg struct {
	err error
}

// taskCreatedMsg is sent when a task creation completes.
type taskCreatedMsg struct {
	created task.Task
	err     error
}

// statusChangedMsg is sent when a status transition completes.
type statusChangedMsg struct {
	id     string
	status task.Status
	err    error
}

// openTaskMsg asks the app to open the detail view for a task.
type openTaskMsg struct {
	task task.Task
}

// backToListMsg asks the app to return to the task list.
type backToListMsg struct{}

// subscribedMsg is sent when a detail-view subscription attempt completes.
type subscribedMsg struct {
	taskID string
	stream EventStream
	err    error
}

// streamEventMsg carries one event from an open stream. ok is false
// once the stream has closed.
type streamEventMsg struct {
	taskID string
	event  toolcall.Event
	ok     bool
}

// ClipboardCopyMsg is sent when content is copied to clipboard
type ClipboardCopyMsg struct {
	Content string
	Success bool
	Error   string
}

func loadTasksCmd(store *task.Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return tasksLoadedMsg{err: store.LoadTasks(ctx)}
	}
}

func createTaskCmd(store *task.Store, name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := store.CreateTask(ctx, name)
		return taskCreatedMsg{created: t, err: err}
	}
}

func setStatusCmd(store *task.Store, id string, status task.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return statusChangedMsg{id: id, status: status, err: store.SetTaskStatus(ctx, id, status)}
	}
}

func subscribeCmd(subscribe SubscribeFunc, taskID string) tea.Cmd {
	return func() tea.Msg {
		if subscribe == nil {
			return subscribedMsg{taskID: taskID, err: fmt.Errorf("no event stream available")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		stream, err := subscribe(ctx, taskID)
		return subscribedMsg{taskID: taskID, stream: stream, err: err}
	}
}

// waitForEventCmd blocks on the stream until the next event or close.
// The detail view re-issues it after every delivery.
func waitForEventCmd(taskID string, stream EventStream) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-stream.Events()
		return streamEventMsg{taskID: taskID, event: ev, ok: ok}
	}
}

// copyToClipboard copies content to system clipboard
func copyToClipboard(content string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.Init(); err != nil {
			return ClipboardCopyMsg{
				Success: false,
				Error:   fmt.Sprintf("Failed to initialize clipboard: %v", err),
			}
		}

		clipboard.Write(clipboard.FmtText, []byte(content))

		return ClipboardCopyMsg{Content: truncateForDisplay(content, 50), Success: true}
	}
}

// truncateForDisplay truncates content for display in status messages
func truncateForDisplay(s string, maxLen int) string {
	firstLine, _, _ := strings.Cut(s, "\n")
	if len(firstLine) > maxLen {
		return firstLine[:maxLen] + "..."
	}
	return firstLine
}

// NewReplayStream wraps a fixed set of events as an EventStream.
// Offline mode uses it to replay the locally stored transcript.
func NewReplayStream(events []toolcall.Event) EventStream {
	ch := make(chan toolcall.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return &replayStream{events: ch}
}

type replayStream struct {
	events chan toolcall.Event
}

func (r *replayStream) Events() <-chan toolcall.Event { return r.events }
func (r *replayStream) Close() error                  { return nil }
