package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/codefionn/taskdeck/internal/task"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// TaskDetailModel shows the tool-call transcript of one task. The
// stream replays stored events first, then delivers live ones; each
// call goes through the renderer registry.
type TaskDetailModel struct {
	task      task.Task
	registry  *Registry
	styles    *Styles
	subscribe SubscribeFunc

	viewport viewport.Model
	ready    bool

	stream    EventStream
	streamErr error
	calls     []toolcall.ToolCall
	live      bool

	mode   RenderMode
	status string

	width  int
	height int
}

// NewTaskDetailModel creates the detail view for a task. The caller
// follows up with Init to open the stream.
func NewTaskDetailModel(t task.Task, registry *Registry, subscribe SubscribeFunc) TaskDetailModel {
	return TaskDetailModel{
		task:      t,
		registry:  registry,
		styles:    GetStyles(),
		subscribe: subscribe,
		mode:      RenderCompact,
	}
}

// Init opens the event stream.
func (m TaskDetailModel) Init() tea.Cmd {
	return subscribeCmd(m.subscribe, m.task.ID)
}

// CloseStream shuts the stream down; call it when leaving the view.
func (m *TaskDetailModel) CloseStream() {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
}

// SetSize updates the view dimensions and the wrap width used for
// long-form rendering.
func (m *TaskDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.registry.SetWrapWidth(width - 4)

	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.refreshContent(false)
}

func (m TaskDetailModel) Update(msg tea.Msg) (TaskDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case subscribedMsg:
		if msg.taskID != m.task.ID {
			return m, nil
		}
		if msg.err != nil {
			m.streamErr = msg.err
			m.refreshContent(false)
			return m, nil
		}
		m.stream = msg.stream
		m.streamErr = nil
		m.live = true
		m.refreshContent(false)
		return m, waitForEventCmd(m.task.ID, m.stream)

	case streamEventMsg:
		if msg.taskID != m.task.ID || m.stream == nil {
			return m, nil
		}
		if !msg.ok {
			m.live = false
			return m, nil
		}
		m.calls = append(m.calls, msg.event.Call)
		m.refreshContent(true)
		return m, waitForEventCmd(m.task.ID, m.stream)

	case ClipboardCopyMsg:
		if msg.Success {
			m.status = fmt.Sprintf("Copied: %s", msg.Content)
		} else {
			m.status = m.styles.ErrorStyle.Render(msg.Error)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			if m.mode == RenderCompact {
				m.mode = RenderExpanded
			} else {
				m.mode = RenderCompact
			}
			m.refreshContent(false)
			return m, nil
		case "y":
			if cmd := m.lastShellCommand(); cmd != "" {
				return m, copyToClipboard(cmd)
			}
			m.status = "No shell command to copy"
			return m, nil
		case "esc":
			m.CloseStream()
			return m, func() tea.Msg { return backToListMsg{} }
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// lastShellCommand returns the command of the most recent bash call.
func (m TaskDetailModel) lastShellCommand() string {
	for i := len(m.calls) - 1; i >= 0; i-- {
		if m.calls[i].Name != toolcall.ToolNameBash {
			continue
		}
		in, err := toolcall.DecodeBash(m.calls[i].Input)
		if err != nil {
			continue
		}
		return in.Command
	}
	return ""
}

// refreshContent re-renders the transcript into the viewport. When
// follow is true and the view was at the bottom, it stays there.
func (m *TaskDetailModel) refreshContent(follow bool) {
	if !m.ready {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if follow && atBottom {
		m.viewport.GotoBottom()
	}
}

func (m TaskDetailModel) renderTranscript() string {
	if len(m.calls) == 0 {
		if m.streamErr != nil {
			return m.styles.ErrorStyle.Render(fmt.Sprintf("Stream unavailable: %v", m.streamErr))
		}
		return m.styles.EmptyStyle.Render("No tool calls yet.")
	}

	blocks := make([]string, 0, len(m.calls))
	for _, call := range m.calls {
		rendered := m.registry.Render(call, m.mode)
		if m.width > 4 {
			rendered = wordwrap.String(rendered, m.width-2)
		}
		blocks = append(blocks, rendered)
	}
	return strings.Join(blocks, "\n\n")
}

func (m TaskDetailModel) View() string {
	var sb strings.Builder

	title := m.task.Name
	if title == "" {
		title = m.task.ID
	}
	header := m.styles.HeaderStyle.Render(title)
	if !m.task.CreatedAt.IsZero() {
		header += " " + m.styles.TimestampStyle.Render(formatRelativeTime(m.task.CreatedAt))
	}
	if m.live {
		header += " " + m.styles.DimStyle.Render("(live)")
	} else if m.stream != nil || len(m.calls) > 0 {
		header += " " + m.styles.DimStyle.Render("(stream closed)")
	}
	sb.WriteString(header)
	sb.WriteString("\n\n")

	if m.ready {
		sb.WriteString(m.viewport.View())
	} else {
		sb.WriteString(m.renderTranscript())
	}

	sb.WriteString("\n")
	if m.status != "" {
		sb.WriteString(m.status)
		sb.WriteString("\n")
	}
	sb.WriteString(m.styles.DimStyle.Render("↑/↓: Scroll • e: Expand • y: Copy last command • Esc: Back"))
	return sb.String()
}
