package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/codefionn/taskdeck/internal/toolcall"
)

// ToolType represents the category of a tool for styling purposes
type ToolType int

const (
	ToolTypeShell ToolType = iota
	ToolTypeShellOutput
	ToolTypeShellKill
	ToolTypeSubagent
	ToolTypeTodo
	ToolTypeWebSearch
	ToolTypeWrite
	ToolTypePlan
	ToolTypeUnknown
)

// String returns the string representation of a ToolType
func (tt ToolType) String() string {
	switch tt {
	case ToolTypeShell:
		return "shell"
	case ToolTypeShellOutput:
		return "shell_output"
	case ToolTypeShellKill:
		return "shell_kill"
	case ToolTypeSubagent:
		return "subagent"
	case ToolTypeTodo:
		return "todo"
	case ToolTypeWebSearch:
		return "web_search"
	case ToolTypeWrite:
		return "write"
	case ToolTypePlan:
		return "plan"
	default:
		return "unknown"
	}
}

// Color definitions for tool types (lipgloss color codes)
const (
	ColorShell       = "#FF8C00" // Dark Orange
	ColorShellOutput = "#F0E68C" // Khaki
	ColorShellKill   = "#DC143C" // Crimson
	ColorSubagent    = "#9370DB" // Purple
	ColorTodo        = "#FF6B9D" // Pink/Magenta
	ColorWebSearch   = "#00CED1" // Cyan
	ColorWrite       = "#50C878" // Green
	ColorPlan        = "#98FB98" // Pale Green
	ColorUnknown     = "#A9A9A9" // Dark Grey

	ColorTaskActive    = "#00BFFF" // Deep Sky Blue
	ColorTaskCompleted = "#32CD32" // Lime Green
	ColorError         = "#FF4444" // Red
	ColorDim           = "#666666"
	ColorFaint         = "#888888"
)

// Icons for tool types
const (
	IconShell       = "💻"
	IconShellOutput = "📜"
	IconShellKill   = "🛑"
	IconSubagent    = "🤖"
	IconTodo        = "✅"
	IconWebSearch   = "🔍"
	IconWrite       = "📝"
	IconPlan        = "📋"
	IconUnknown     = "🔹"
)

// Status glyphs for todo items and tasks
const (
	GlyphPending    = "○"
	GlyphInProgress = "◐"
	GlyphCompleted  = "✓"
	GlyphCancelled  = "✗"
)

// previewLength bounds compact previews of prompt and file content.
const previewLength = 100

// ellipsis marks a truncated preview.
const ellipsis = "…"

// Styles holds the lipgloss styles shared by the task and transcript views.
type Styles struct {
	ToolTypeStyles map[ToolType]lipgloss.Style

	HeaderStyle      lipgloss.Style
	GroupHeaderStyle lipgloss.Style
	SelectedStyle    lipgloss.Style
	CompletedStyle   lipgloss.Style
	CancelledStyle   lipgloss.Style
	DimStyle         lipgloss.Style
	FaintStyle       lipgloss.Style
	ErrorStyle       lipgloss.Style
	CodeStyle        lipgloss.Style
	PathStyle        lipgloss.Style
	TimestampStyle   lipgloss.Style
	EmptyStyle       lipgloss.Style
}

var styles *Styles

// GetStyles returns the global style set, building it on first use.
func GetStyles() *Styles {
	if styles != nil {
		return styles
	}

	s := &Styles{
		ToolTypeStyles: make(map[ToolType]lipgloss.Style),
	}

	for tt, color := range map[ToolType]string{
		ToolTypeShell:       ColorShell,
		ToolTypeShellOutput: ColorShellOutput,
		ToolTypeShellKill:   ColorShellKill,
		ToolTypeSubagent:    ColorSubagent,
		ToolTypeTodo:        ColorTodo,
		ToolTypeWebSearch:   ColorWebSearch,
		ToolTypeWrite:       ColorWrite,
		ToolTypePlan:        ColorPlan,
		ToolTypeUnknown:     ColorUnknown,
	} {
		s.ToolTypeStyles[tt] = lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).Bold(true)
	}

	s.HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)

	s.GroupHeaderStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")).
		Bold(true)

	s.SelectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)

	s.CompletedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)).
		Strikethrough(true)

	s.CancelledStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)).
		Strikethrough(true)

	s.DimStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim))

	s.FaintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorFaint)).
		Italic(true)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorError)).
		Bold(true)

	s.CodeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C0C0C0")).
		Background(lipgloss.Color("#2A2A2A")).
		Padding(0, 1)

	s.PathStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWrite))

	s.TimestampStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim))

	s.EmptyStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorFaint)).
		Italic(true).
		Padding(1, 2)

	styles = s
	return s
}

// GetToolTypeFromName determines the ToolType from a tool name
func GetToolTypeFromName(name string) ToolType {
	switch name {
	case toolcall.ToolNameBash:
		return ToolTypeShell
	case toolcall.ToolNameBashOutput:
		return ToolTypeShellOutput
	case toolcall.ToolNameKillBash:
		return ToolTypeShellKill
	case toolcall.ToolNameTask:
		return ToolTypeSubagent
	case toolcall.ToolNameTodoWrite:
		return ToolTypeTodo
	case toolcall.ToolNameWebSearch:
		return ToolTypeWebSearch
	case toolcall.ToolNameWrite:
		return ToolTypeWrite
	case toolcall.ToolNameExitPlanMode:
		return ToolTypePlan
	default:
		return ToolTypeUnknown
	}
}

// GetIconForToolType returns the icon for a tool type
func GetIconForToolType(tt ToolType) string {
	switch tt {
	case ToolTypeShell:
		return IconShell
	case ToolTypeShellOutput:
		return IconShellOutput
	case ToolTypeShellKill:
		return IconShellKill
	case ToolTypeSubagent:
		return IconSubagent
	case ToolTypeTodo:
		return IconTodo
	case ToolTypeWebSearch:
		return IconWebSearch
	case ToolTypeWrite:
		return IconWrite
	case ToolTypePlan:
		return IconPlan
	default:
		return IconUnknown
	}
}

// TodoGlyph returns the status glyph for a todo item. Unknown statuses
// get the pending glyph so newer agents never break the list.
func TodoGlyph(status toolcall.TodoStatus) string {
	switch status {
	case toolcall.TodoInProgress:
		return GlyphInProgress
	case toolcall.TodoCompleted:
		return GlyphCompleted
	case toolcall.TodoCancelled:
		return GlyphCancelled
	default:
		return GlyphPending
	}
}

// Preview bounds s to the preview length, appending an ellipsis marker
// if and only if s is longer than the bound. Counted in runes so
// multi-byte text never splits mid-character.
func Preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength]) + ellipsis
}

// GetToolTypeStyle returns the style for a tool type
func (s *Styles) GetToolTypeStyle(tt ToolType) lipgloss.Style {
	if style, ok := s.ToolTypeStyles[tt]; ok {
		return style
	}
	return s.ToolTypeStyles[ToolTypeUnknown]
}

// FormatToolHeader creates a styled one-line header for a tool call.
func (s *Styles) FormatToolHeader(name string, timestamp time.Time) string {
	tt := GetToolTypeFromName(name)
	parts := []string{
		s.GetToolTypeStyle(tt).Render(fmt.Sprintf("%s %s", GetIconForToolType(tt), name)),
	}
	if !timestamp.IsZero() {
		parts = append(parts, s.TimestampStyle.Render(timestamp.Format("15:04:05")))
	}
	return strings.Join(parts, " ")
}

// formatRelativeTime formats a time.Time as a relative time string
func formatRelativeTime(t time.Time) string {
	now := time.Now()
	duration := now.Sub(t)

	if duration < time.Minute {
		return "just now"
	}
	if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	}
	if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	if duration < 7*24*time.Hour {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	}
	return t.Format("2006-01-02")
}
