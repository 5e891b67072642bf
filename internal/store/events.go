package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/codefionn/taskdeck/internal/toolcall"
)

// LineHash keys a transcript line for de-duplication. Re-reads of the
// same JSONL file after a watcher restart must not duplicate events.
func LineHash(line []byte) string {
	return strconv.FormatUint(xxhash.Sum64(line), 16)
}

// AppendEvent stores one transcript line for a task. Returns false when
// the line was already stored (same hash), which is not an error.
func (d *DB) AppendEvent(ctx context.Context, taskID string, line []byte) (bool, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO task_events (task_id, line_hash, payload) VALUES (?, ?, ?)`,
		taskID, LineHash(line), string(line))
	if err != nil {
		return false, fmt.Errorf("failed to append event for task %s: %w", taskID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListEvents replays a task's stored transcript in insertion order.
// Lines that no longer decode (e.g. written by a newer agent with a
// breaking format change) are skipped rather than failing the replay.
func (d *DB) ListEvents(ctx context.Context, taskID string) ([]toolcall.Event, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT payload FROM task_events WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var events []toolcall.Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev, err := toolcall.DecodeEvent([]byte(payload))
		if err != nil {
			continue
		}
		if ev.TaskID == "" {
			ev.TaskID = taskID
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CountEvents returns how many transcript lines are stored for a task.
func (d *DB) CountEvents(ctx context.Context, taskID string) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM task_events WHERE task_id = ?`, taskID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events for task %s: %w", taskID, err)
	}
	return n, nil
}
