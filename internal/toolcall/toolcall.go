package toolcall

import (
	"encoding/json"
	"time"
)

// Tool name tags as emitted by the agent event stream. The tag space is
// open: newer agents may emit names not listed here, and consumers must
// degrade gracefully for those.
const (
	ToolNameBash         = "bash"
	ToolNameBashOutput   = "bash_output"
	ToolNameKillBash     = "kill_bash"
	ToolNameTask         = "task"
	ToolNameTodoWrite    = "todo_write"
	ToolNameWebSearch    = "web_search"
	ToolNameWrite        = "write"
	ToolNameExitPlanMode = "exit_plan_mode"
)

// ToolCall is one action taken by the agent: a name tag plus the raw
// input payload for that tool. Immutable once received; the input is
// kept raw so unknown tags can still be displayed.
type ToolCall struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// InputMap decodes the raw input into a generic key/value map. Returns
// an empty map when the input is absent or not a JSON object, so
// fallback rendering always has something to work with.
func (c ToolCall) InputMap() map[string]interface{} {
	if len(c.Input) == 0 {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(c.Input, &m); err != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}

// TodoStatus is the lifecycle state of a single todo item, tracked
// independently of the parent task's status.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
	TodoCancelled  TodoStatus = "cancelled"
)

// TodoItem is one entry of a todo_write payload.
type TodoItem struct {
	Content    string     `json:"content"`
	Status     TodoStatus `json:"status"`
	ActiveForm string     `json:"activeForm,omitempty"`
}

// BashInput is the payload for the bash tool.
type BashInput struct {
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
}

// BashOutputInput references a running shell by id.
type BashOutputInput struct {
	BashID string `json:"bash_id"`
}

// KillBashInput requests termination of a shell by id.
type KillBashInput struct {
	ShellID string `json:"shell_id"`
}

// TaskInput spawns a subagent with a prompt.
type TaskInput struct {
	SubagentType string `json:"subagent_type,omitempty"`
	Description  string `json:"description,omitempty"`
	Prompt       string `json:"prompt,omitempty"`
}

// TodoWriteInput replaces the agent's todo list.
type TodoWriteInput struct {
	Todos []TodoItem `json:"todos"`
}

// WebSearchInput carries the literal search query.
type WebSearchInput struct {
	Query string `json:"query"`
}

// WriteInput writes content to a file path.
type WriteInput struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

// ExitPlanModeInput carries the long-form plan text.
type ExitPlanModeInput struct {
	Plan string `json:"plan"`
}

// decodeInput unmarshals raw input into dst. Missing fields are left at
// their zero values; only malformed JSON is an error.
func decodeInput(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// DecodeBash decodes a bash tool input.
func DecodeBash(raw json.RawMessage) (BashInput, error) {
	var in BashInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeBashOutput decodes a bash_output tool input.
func DecodeBashOutput(raw json.RawMessage) (BashOutputInput, error) {
	var in BashOutputInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeKillBash decodes a kill_bash tool input.
func DecodeKillBash(raw json.RawMessage) (KillBashInput, error) {
	var in KillBashInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeTask decodes a task (subagent) tool input.
func DecodeTask(raw json.RawMessage) (TaskInput, error) {
	var in TaskInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeTodoWrite decodes a todo_write tool input.
func DecodeTodoWrite(raw json.RawMessage) (TodoWriteInput, error) {
	var in TodoWriteInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeWebSearch decodes a web_search tool input.
func DecodeWebSearch(raw json.RawMessage) (WebSearchInput, error) {
	var in WebSearchInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeWrite decodes a write tool input.
func DecodeWrite(raw json.RawMessage) (WriteInput, error) {
	var in WriteInput
	err := decodeInput(raw, &in)
	return in, err
}

// DecodeExitPlanMode decodes an exit_plan_mode tool input.
func DecodeExitPlanMode(raw json.RawMessage) (ExitPlanModeInput, error) {
	var in ExitPlanModeInput
	err := decodeInput(raw, &in)
	return in, err
}
