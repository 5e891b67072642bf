package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/codefionn/taskdeck/internal/toolcall"
)

func TestGetToolTypeFromName(t *testing.T) {
	tests := []struct {
		toolName string
		want     ToolType
	}{
		{"bash", ToolTypeShell},
		{"bash_output", ToolTypeShellOutput},
		{"kill_bash", ToolTypeShellKill},
		{"task", ToolTypeSubagent},
		{"todo_write", ToolTypeTodo},
		{"web_search", ToolTypeWebSearch},
		{"write", ToolTypeWrite},
		{"exit_plan_mode", ToolTypePlan},
		{"unknown_tool", ToolTypeUnknown},
		{"", ToolTypeUnknown},
		{"Bash", ToolTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.toolName, func(t *testing.T) {
			got := GetToolTypeFromName(tt.toolName)
			if got != tt.want {
				t.Errorf("GetToolTypeFromName(%q) = %v, want %v", tt.toolName, got, tt.want)
			}
		})
	}
}

func TestGetIconForToolType(t *testing.T) {
	tests := []struct {
		toolType ToolType
		want     string
	}{
		{ToolTypeShell, IconShell},
		{ToolTypeTodo, IconTodo},
		{ToolTypeWrite, IconWrite},
		{ToolTypePlan, IconPlan},
		{ToolTypeUnknown, IconUnknown},
		{ToolType(99), IconUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.toolType.String(), func(t *testing.T) {
			if got := GetIconForToolType(tt.toolType); got != tt.want {
				t.Errorf("GetIconForToolType(%v) = %q, want %q", tt.toolType, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "hello", "hello"},
		{"exactly at bound", strings.Repeat("a", 100), strings.Repeat("a", 100)},
		{"one over bound", strings.Repeat("a", 101), strings.Repeat("a", 100) + ellipsis},
		{"long", strings.Repeat("x", 150), strings.Repeat("x", 100) + ellipsis},
		{"one under bound", strings.Repeat("a", 99), strings.Repeat("a", 99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.in); got != tt.want {
				t.Errorf("Preview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreviewCountsRunes(t *testing.T) {
	// 100 multi-byte runes fit exactly; 101 get truncated at a rune
	// boundary, never mid-character.
	exact := strings.Repeat("ä", 100)
	if got := Preview(exact); got != exact {
		t.Errorf("Preview() truncated a 100-rune string")
	}

	over := strings.Repeat("ä", 101)
	got := Preview(over)
	if got != strings.Repeat("ä", 100)+ellipsis {
		t.Errorf("Preview() = %q, want 100 runes plus ellipsis", got)
	}
}

func TestTodoGlyph(t *testing.T) {
	tests := []struct {
		status toolcall.TodoStatus
		want   string
	}{
		{toolcall.TodoPending, GlyphPending},
		{toolcall.TodoInProgress, GlyphInProgress},
		{toolcall.TodoCompleted, GlyphCompleted},
		{toolcall.TodoCancelled, GlyphCancelled},
		{toolcall.TodoStatus("deferred"), GlyphPending},
		{toolcall.TodoStatus(""), GlyphPending},
	}
	for _, tt := range tests {
		if got := TodoGlyph(tt.status); got != tt.want {
			t.Errorf("TodoGlyph(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestFormatToolHeader(t *testing.T) {
	s := GetStyles()
	header := s.FormatToolHeader("bash", time.Date(2026, 8, 26, 14, 30, 5, 0, time.UTC))
	if !strings.Contains(header, "bash") {
		t.Errorf("header missing tool name: %q", header)
	}
	if !strings.Contains(header, "14:30:05") {
		t.Errorf("header missing timestamp: %q", header)
	}

	noTime := s.FormatToolHeader("bash", time.Time{})
	if strings.Contains(noTime, ":") {
		t.Errorf("zero timestamp must not be rendered: %q", noTime)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-10 * time.Minute), "10 minutes ago"},
		{"one hour", now.Add(-90 * time.Minute), "1 hour ago"},
		{"hours", now.Add(-5 * time.Hour), "5 hours ago"},
		{"yesterday", now.Add(-30 * time.Hour), "yesterday"},
		{"days", now.Add(-3 * 24 * time.Hour), "3 days ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}

	old := now.Add(-30 * 24 * time.Hour)
	if got := formatRelativeTime(old); got != old.Format("2006-01-02") {
		t.Errorf("formatRelativeTime() = %q, want absolute date", got)
	}
}
