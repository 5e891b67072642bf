package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codefionn/taskdeck/internal/task"
)

// DB handles SQLite persistence for tasks and their transcripts. It is
// the single source of truth behind taskdeckd and doubles as the
// offline task source for the TUI.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Open opens (and if necessary creates) the database at dbPath.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	d := &DB{db: db, dbPath: dbPath}
	if err := d.migrate(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return d, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS task_repositories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		name TEXT NOT NULL,
		path TEXT,
		branch TEXT,
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS task_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id TEXT NOT NULL,
		line_hash TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (task_id, line_hash),
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_task_repositories_task_id ON task_repositories(task_id);
	CREATE INDEX IF NOT EXISTS idx_task_events_task_id ON task_events(task_id);
	`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GenerateID creates a random task ID (hex, 12 chars).
func GenerateID() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("task-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}

// ListTasks returns all tasks in creation order, repositories attached.
func (d *DB) ListTasks(ctx context.Context) ([]task.Task, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		var t task.Task
		var status string
		if err := rows.Scan(&t.ID, &t.Name, &status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		t.Status = task.ParseStatus(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		repos, err := d.listRepositories(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Repositories = repos
	}

	return tasks, nil
}

func (d *DB) listRepositories(ctx context.Context, taskID string) ([]task.Repository, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT name, COALESCE(path, ''), COALESCE(branch, '') FROM task_repositories WHERE task_id = ? ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var repos []task.Repository
	for rows.Next() {
		var r task.Repository
		if err := rows.Scan(&r.Name, &r.Path, &r.Branch); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// GetTask loads a single task by id.
func (d *DB) GetTask(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	var status string
	err := d.db.QueryRowContext(ctx,
		`SELECT id, name, status, created_at, updated_at FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &status, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return task.Task{}, fmt.Errorf("task %s not found", id)
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to load task %s: %w", id, err)
	}
	t.Status = task.ParseStatus(status)
	t.Repositories, err = d.listRepositories(ctx, id)
	return t, err
}

// CreateTask inserts a new active task.
func (d *DB) CreateTask(ctx context.Context, name string) (task.Task, error) {
	now := time.Now().UTC()
	t := task.Task{
		ID:        GenerateID(),
		Name:      name,
		Status:    task.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, string(t.Status), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t, nil
}

// EnsureTask inserts a task row if none exists. The transcript ingest
// uses it when a transcript shows up for a task that was never created
// through the API.
func (d *DB) EnsureTask(ctx context.Context, id, name string) error {
	now := time.Now().UTC()
	_, err := d.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tasks (id, name, status, created_at, updated_at) VALUES (?, ?, 'active', ?, ?)`,
		id, name, now, now)
	if err != nil {
		return fmt.Errorf("failed to ensure task %s: %w", id, err)
	}
	return nil
}

// SetTaskStatus updates a task's status. Archiving keeps the row; tasks
// are never deleted here.
func (d *DB) SetTaskStatus(ctx context.Context, id string, status task.Status) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %s not found", id)
	}
	return nil
}

// AddRepository associates a repository with a task.
func (d *DB) AddRepository(ctx context.Context, taskID string, repo task.Repository) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO task_repositories (task_id, name, path, branch) VALUES (?, ?, ?, ?)`,
		taskID, repo.Name, repo.Path, repo.Branch)
	if err != nil {
		return fmt.Errorf("failed to add repository to task %s: %w", taskID, err)
	}
	return nil
}
