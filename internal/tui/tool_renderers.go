package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// RenderMode selects between the one-screen compact rendering and the
// expanded rendering with full text.
type RenderMode int

const (
	RenderCompact RenderMode = iota
	RenderExpanded
)

// ToolRenderer renders one tool call's input payload.
type ToolRenderer func(call toolcall.ToolCall, mode RenderMode) string

// Registry maps tool names to renderers. Render is total over the open
// tag space: an unregistered name, or input that fails to decode, falls
// back to a generic key/value rendering instead of an error.
type Registry struct {
	renderers map[string]ToolRenderer
	styles    *Styles
	fallback  *ParamsRenderer
	markdown  *glamour.TermRenderer
	wrapWidth int
}

// NewRegistry creates a registry with all built-in tool renderers.
func NewRegistry() *Registry {
	r := &Registry{
		renderers: make(map[string]ToolRenderer),
		styles:    GetStyles(),
		fallback:  NewParamsRenderer(),
		wrapWidth: 80,
	}

	r.Register(toolcall.ToolNameBash, r.renderBash)
	r.Register(toolcall.ToolNameBashOutput, r.renderBashOutput)
	r.Register(toolcall.ToolNameKillBash, r.renderKillBash)
	r.Register(toolcall.ToolNameTask, r.renderTask)
	r.Register(toolcall.ToolNameTodoWrite, r.renderTodoWrite)
	r.Register(toolcall.ToolNameWebSearch, r.renderWebSearch)
	r.Register(toolcall.ToolNameWrite, r.renderWrite)
	r.Register(toolcall.ToolNameExitPlanMode, r.renderExitPlanMode)

	return r
}

// Register adds or replaces the renderer for a tool name.
func (r *Registry) Register(name string, fn ToolRenderer) {
	r.renderers[name] = fn
}

// SetWrapWidth updates the wrap width for long-form rendering. The
// markdown renderer is rebuilt lazily on next use.
func (r *Registry) SetWrapWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width != r.wrapWidth {
		r.wrapWidth = width
		r.markdown = nil
	}
}

// Render renders one tool call. Never fails: unknown tool names and
// undecodable inputs degrade to the generic parameter rendering.
func (r *Registry) Render(call toolcall.ToolCall, mode RenderMode) string {
	header := r.styles.FormatToolHeader(call.Name, call.Timestamp)

	fn, ok := r.renderers[call.Name]
	if !ok {
		logger.Debug("no renderer for tool %q, using fallback", call.Name)
		return header + "\n" + r.renderFallback(call)
	}

	body := fn(call, mode)
	if body == "" {
		return header
	}
	return header + "\n" + body
}

// renderFallback shows the raw input as styled key/value pairs.
func (r *Registry) renderFallback(call toolcall.ToolCall) string {
	return r.fallback.FormatCompactParams(call.InputMap())
}

func (r *Registry) renderBash(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeBash(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}

	var sb strings.Builder
	if in.Command != "" {
		sb.WriteString(r.styles.CodeStyle.Render(in.Command))
	}
	if in.Description != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(r.styles.FaintStyle.Render(in.Description))
	}
	return sb.String()
}

func (r *Registry) renderBashOutput(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeBashOutput(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}
	if in.BashID == "" {
		return r.styles.DimStyle.Render("reading shell output")
	}
	return r.styles.DimStyle.Render(fmt.Sprintf("reading output of shell %s", in.BashID))
}

func (r *Registry) renderKillBash(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeKillBash(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}
	if in.ShellID == "" {
		return r.styles.ErrorStyle.Render("terminating shell")
	}
	return r.styles.ErrorStyle.Render(fmt.Sprintf("terminating shell %s", in.ShellID))
}

func (r *Registry) renderTask(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeTask(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}

	var lines []string
	if in.SubagentType != "" {
		lines = append(lines, r.styles.FaintStyle.Render(fmt.Sprintf("subagent: %s", in.SubagentType)))
	}
	if in.Description != "" {
		lines = append(lines, in.Description)
	}
	if in.Prompt != "" {
		prompt := in.Prompt
		if mode == RenderCompact {
			prompt = Preview(prompt)
		}
		lines = append(lines, r.styles.DimStyle.Render(prompt))
	}
	return strings.Join(lines, "\n")
}

func (r *Registry) renderTodoWrite(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeTodoWrite(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}

	var sb strings.Builder
	sb.WriteString(r.styles.FaintStyle.Render(formatItemCount(len(in.Todos))))
	for _, todo := range in.Todos {
		sb.WriteString("\n")
		sb.WriteString("  ")
		sb.WriteString(TodoGlyph(todo.Status))
		sb.WriteString(" ")

		label := todo.Content
		if todo.Status == toolcall.TodoInProgress && todo.ActiveForm != "" {
			label = todo.ActiveForm
		}
		switch todo.Status {
		case toolcall.TodoCompleted:
			sb.WriteString(r.styles.CompletedStyle.Render(label))
		case toolcall.TodoCancelled:
			sb.WriteString(r.styles.CancelledStyle.Render(label))
		default:
			sb.WriteString(label)
		}
	}
	return sb.String()
}

func formatItemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

func (r *Registry) renderWebSearch(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeWebSearch(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}
	return fmt.Sprintf("%q", in.Query)
}

func (r *Registry) renderWrite(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeWrite(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}

	var lines []string
	if in.FilePath != "" {
		lines = append(lines, r.styles.PathStyle.Render(in.FilePath))
	}
	if in.Content != "" {
		content := in.Content
		if mode == RenderCompact {
			content = Preview(content)
		}
		lines = append(lines, r.styles.CodeStyle.Render(content))
	}
	return strings.Join(lines, "\n")
}

// renderExitPlanMode renders the plan as long-form markdown, not a
// preview: plans are the one payload meant to be read in full.
func (r *Registry) renderExitPlanMode(call toolcall.ToolCall, mode RenderMode) string {
	in, err := toolcall.DecodeExitPlanMode(call.Input)
	if err != nil {
		return r.renderFallback(call)
	}
	if in.Plan == "" {
		return ""
	}
	return r.renderMarkdown(in.Plan)
}

func (r *Registry) renderMarkdown(text string) string {
	if r.markdown == nil {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.wrapWidth),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			logger.Warn("markdown renderer unavailable: %v", err)
			return text
		}
		r.markdown = renderer
	}

	rendered, err := r.markdown.Render(text)
	if err != nil {
		logger.Warn("markdown rendering failed: %v", err)
		return text
	}
	return strings.TrimRight(rendered, "\n")
}
