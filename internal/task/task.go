package task

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a task. Archived is a soft state:
// tasks are hidden from the grouped views but never destroyed.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// ParseStatus normalizes a status string, defaulting to active for
// anything unrecognized so stored rows from newer versions stay usable.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusCompleted:
		return StatusCompleted
	case StatusArchived:
		return StatusArchived
	default:
		return StatusActive
	}
}

// Repository is a repo associated with a task.
type Repository struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Task is a top-level unit of work tracked by the dashboard.
type Task struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Status       Status       `json:"status"`
	Repositories []Repository `json:"repositories"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsActive reports whether the task shows up in the active group.
func (t Task) IsActive() bool { return t.Status == StatusActive }

// IsCompleted reports whether the task shows up in the completed group.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }
