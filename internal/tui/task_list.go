package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/codefionn/taskdeck/internal/task"
)

// TaskListModel renders the grouped task list: active tasks first,
// completed below, archived tasks hidden. Rendering precedence is
// loading, then load error, then empty state, then the groups.
type TaskListModel struct {
	store   *task.Store
	styles  *Styles
	spinner spinner.Model

	cursor   int
	creating bool
	input    textarea.Model
	notice   string

	width  int
	height int

	animationsDisabled bool
}

// NewTaskListModel creates the task list view backed by the store.
func NewTaskListModel(store *task.Store) TaskListModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.Line),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTaskActive))),
	)

	ta := textarea.New()
	ta.Placeholder = "Task name..."
	ta.Prompt = "│ "
	ta.CharLimit = 200
	ta.SetWidth(60)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return TaskListModel{
		store:   store,
		styles:  GetStyles(),
		spinner: sp,
		input:   ta,
	}
}

// Init starts the loading spinner.
func (m TaskListModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// visibleTasks flattens the grouped list in display order. The cursor
// indexes into this slice.
func (m TaskListModel) visibleTasks() []task.Task {
	return append(m.store.Active(), m.store.Completed()...)
}

func (m *TaskListModel) clampCursor() {
	n := len(m.visibleTasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSize updates the view dimensions.
func (m *TaskListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if width > 10 {
		m.input.SetWidth(width - 4)
	}
}

func (m TaskListModel) Update(msg tea.Msg) (TaskListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.store.Loading() || m.animationsDisabled {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		m.clampCursor()
		return m, nil

	case taskCreatedMsg:
		if msg.err != nil {
			m.notice = m.styles.ErrorStyle.Render(fmt.Sprintf("create failed: %v", msg.err))
			return m, nil
		}
		m.notice = ""
		// Move the cursor onto the new task.
		for i, t := range m.visibleTasks() {
			if t.ID == msg.created.ID {
				m.cursor = i
				break
			}
		}
		return m, nil

	case statusChangedMsg:
		if msg.err != nil {
			m.notice = m.styles.ErrorStyle.Render(fmt.Sprintf("update failed: %v", msg.err))
			return m, nil
		}
		m.notice = ""
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		if m.creating {
			return m.updateCreating(msg)
		}
		return m.updateBrowsing(msg)
	}

	return m, nil
}

func (m TaskListModel) updateCreating(msg tea.KeyMsg) (TaskListModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.creating = false
		m.input.Reset()
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		m.creating = false
		m.input.Reset()
		if name == "" {
			return m, nil
		}
		return m, createTaskCmd(m.store, name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TaskListModel) updateBrowsing(msg tea.KeyMsg) (TaskListModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visibleTasks())-1 {
			m.cursor++
		}
	case "enter":
		tasks := m.visibleTasks()
		if m.cursor < len(tasks) {
			t := tasks[m.cursor]
			m.store.SelectTask(t.ID)
			return m, func() tea.Msg { return openTaskMsg{task: t} }
		}
	case "n":
		m.creating = true
		m.notice = ""
		m.input.Focus()
		return m, textarea.Blink
	case "r":
		m.notice = ""
		return m, tea.Batch(loadTasksCmd(m.store), m.spinner.Tick)
	case "c":
		tasks := m.visibleTasks()
		if m.cursor < len(tasks) && tasks[m.cursor].IsActive() {
			return m, setStatusCmd(m.store, tasks[m.cursor].ID, task.StatusCompleted)
		}
	case "a":
		tasks := m.visibleTasks()
		if m.cursor < len(tasks) {
			return m, setStatusCmd(m.store, tasks[m.cursor].ID, task.StatusArchived)
		}
	}
	return m, nil
}

func (m TaskListModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.styles.HeaderStyle.Render("Tasks"))
	sb.WriteString("\n\n")

	switch {
	case m.store.Loading():
		sb.WriteString("  ")
		if !m.animationsDisabled {
			sb.WriteString(m.spinner.View())
			sb.WriteString(" ")
		}
		sb.WriteString(m.styles.DimStyle.Render("Loading tasks..."))

	case m.store.LoadError() != nil:
		sb.WriteString("  ")
		sb.WriteString(m.styles.ErrorStyle.Render(fmt.Sprintf("Failed to load tasks: %v", m.store.LoadError())))
		sb.WriteString("\n  ")
		sb.WriteString(m.styles.DimStyle.Render("Press r to retry"))

	case m.store.Len() == 0:
		sb.WriteString(m.styles.EmptyStyle.Render("No tasks yet. Press n to create one."))

	default:
		sb.WriteString(m.renderGroups())
	}

	if m.creating {
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.GroupHeaderStyle.Render("New task"))
		sb.WriteString("\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.DimStyle.Render("Enter: create • Esc: cancel"))
	}

	if m.notice != "" {
		sb.WriteString("\n\n  ")
		sb.WriteString(m.notice)
	}

	sb.WriteString("\n\n")
	sb.WriteString(m.styles.DimStyle.Render("↑/↓: Navigate • Enter: Open • n: New • c: Complete • a: Archive • r: Reload • q: Quit"))
	return sb.String()
}

func (m TaskListModel) renderGroups() string {
	var sb strings.Builder
	row := 0

	active := m.store.Active()
	if len(active) > 0 {
		sb.WriteString(m.styles.GroupHeaderStyle.Render("Active"))
		sb.WriteString("\n")
		for _, t := range active {
			sb.WriteString(m.renderActiveRow(t, row == m.cursor))
			sb.WriteString("\n")
			row++
		}
	}

	completed := m.store.Completed()
	if len(completed) > 0 {
		if len(active) > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.styles.GroupHeaderStyle.Render("Completed"))
		sb.WriteString("\n")
		for _, t := range completed {
			sb.WriteString(m.renderCompletedRow(t, row == m.cursor))
			sb.WriteString("\n")
			row++
		}
	}

	if len(active) == 0 && len(completed) == 0 {
		// Every task is archived; the list is not empty, just quiet.
		sb.WriteString(m.styles.FaintStyle.Render("All tasks are archived."))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderActiveRow shows the status glyph, the name, and the repo count.
func (m TaskListModel) renderActiveRow(t task.Task, selected bool) string {
	glyph := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorTaskActive)).
		Render(GlyphInProgress)

	prefix := "    "
	name := t.Name
	if selected {
		prefix = "  > "
		name = m.styles.SelectedStyle.Render(t.Name)
	}
	return fmt.Sprintf("%s%s %s %s", prefix, glyph, name,
		m.styles.DimStyle.Render(formatRepoCount(len(t.Repositories))))
}

// renderCompletedRow shows the name struck through, without a repo count.
func (m TaskListModel) renderCompletedRow(t task.Task, selected bool) string {
	glyph := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorTaskCompleted)).
		Render(GlyphCompleted)

	prefix := "    "
	name := m.styles.CompletedStyle.Render(t.Name)
	if selected {
		prefix = "  > "
		name = m.styles.SelectedStyle.Render(t.Name)
	}
	return fmt.Sprintf("%s%s %s", prefix, glyph, name)
}

func formatRepoCount(n int) string {
	if n == 1 {
		return "(1 repo)"
	}
	return fmt.Sprintf("(%d repos)", n)
}
