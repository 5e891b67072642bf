package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/task"
)

type screen int

const (
	screenList screen = iota
	screenDetail
)

// App is the root bubbletea model. It switches between the task list
// and the per-task transcript view.
type App struct {
	store     *task.Store
	registry  *Registry
	subscribe SubscribeFunc

	screen screen
	list   TaskListModel
	detail TaskDetailModel

	width  int
	height int
}

// Option configures the App.
type Option func(*App)

// WithoutAnimations disables the loading spinner.
func WithoutAnimations() Option {
	return func(a *App) {
		a.list.animationsDisabled = true
	}
}

// NewApp creates the root model. subscribe may be nil when no event
// stream is available; the detail view then shows an error instead.
func NewApp(store *task.Store, subscribe SubscribeFunc, opts ...Option) *App {
	a := &App{
		store:     store,
		registry:  NewRegistry(),
		subscribe: subscribe,
		screen:    screenList,
		list:      NewTaskListModel(store),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init kicks off the first task load.
func (a *App) Init() tea.Cmd {
	return tea.Batch(loadTasksCmd(a.store), a.list.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.list.SetSize(msg.Width, msg.Height)
		if a.screen == screenDetail {
			a.detail.SetSize(msg.Width, msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.closeDetail()
			return a, tea.Quit
		case "q":
			// Quit only from the list; the detail view owns its keys.
			if a.screen == screenList && !a.list.creating {
				return a, tea.Quit
			}
		}

	case openTaskMsg:
		logger.Debug("opening task %s", msg.task.ID)
		a.detail = NewTaskDetailModel(msg.task, a.registry, a.subscribe)
		if a.width > 0 {
			a.detail.SetSize(a.width, a.height)
		}
		a.screen = screenDetail
		return a, a.detail.Init()

	case backToListMsg:
		a.closeDetail()
		a.screen = screenList
		return a, nil
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenDetail:
		a.detail, cmd = a.detail.Update(msg)
	default:
		a.list, cmd = a.list.Update(msg)
	}
	return a, cmd
}

func (a *App) closeDetail() {
	if a.screen == screenDetail {
		a.detail.CloseStream()
	}
}

func (a *App) View() string {
	if a.screen == screenDetail {
		return a.detail.View()
	}
	return a.list.View()
}
