package toolcall

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types on the transcript wire.
const (
	EventTypeToolCall = "tool_call"
)

// Event is one line of a task transcript: an envelope around a tool
// call, tagged with the task it belongs to.
type Event struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id,omitempty"`
	Call      ToolCall  `json:"tool_call"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// DecodeEvent parses a single transcript line. Unknown event types are
// returned as-is so callers can decide to skip them; only malformed
// JSON or an empty tool name on a tool_call event is an error.
func DecodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode transcript event: %w", err)
	}
	if ev.Type == "" {
		ev.Type = EventTypeToolCall
	}
	if ev.Type == EventTypeToolCall && ev.Call.Name == "" {
		return Event{}, fmt.Errorf("tool_call event is missing a tool name")
	}
	if ev.Call.Timestamp.IsZero() {
		ev.Call.Timestamp = ev.Timestamp
	}
	return ev, nil
}

// EncodeEvent serializes an event to one transcript line (no trailing
// newline).
func EncodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
