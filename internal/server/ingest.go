package server

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/store"
	"github.com/codefionn/taskdeck/internal/toolcall"
)

// Ingest tails agent transcript files. Each task's transcript is a
// JSONL file named <task-id>.jsonl in the transcripts directory; the
// agent process appends one tool-call event per line. Lines are
// de-duplicated by hash in the store, so re-reading a file after a
// restart is harmless.
type Ingest struct {
	db      *store.DB
	hub     *Hub
	dir     string
	log     *logger.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	offsets map[string]int64 // file path -> bytes consumed

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewIngest creates an ingest for the given transcripts directory.
func NewIngest(db *store.DB, hub *Hub, dir string) *Ingest {
	return &Ingest{
		db:      db,
		hub:     hub,
		dir:     dir,
		log:     logger.Global().WithPrefix("ingest"),
		offsets: make(map[string]int64),
		quit:    make(chan struct{}),
	}
}

// Start scans existing transcripts and then watches for appends.
func (in *Ingest) Start(ctx context.Context) error {
	if err := os.MkdirAll(in.dir, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(in.dir); err != nil {
		watcher.Close()
		return err
	}
	in.watcher = watcher

	// Catch up on transcripts written while we were down.
	entries, err := os.ReadDir(in.dir)
	if err != nil {
		watcher.Close()
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		in.consume(ctx, filepath.Join(in.dir, entry.Name()))
	}

	in.wg.Add(1)
	go in.watch(ctx)

	in.log.Info("transcript ingest watching %s", in.dir)
	return nil
}

// Stop terminates the watcher loop and waits for it.
func (in *Ingest) Stop() {
	close(in.quit)
	if in.watcher != nil {
		in.watcher.Close()
	}
	in.wg.Wait()
}

func (in *Ingest) watch(ctx context.Context) {
	defer in.wg.Done()

	for {
		select {
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".jsonl") {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				in.consume(ctx, event.Name)
			}

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			in.log.Error("transcript watcher error: %v", err)

		case <-in.quit:
			return

		case <-ctx.Done():
			return
		}
	}
}

// consume reads complete new lines from a transcript file, stores them
// and broadcasts the fresh ones. A trailing partial line stays in the
// file until the next write completes it.
func (in *Ingest) consume(ctx context.Context, path string) {
	taskID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	if taskID == "" {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	// A transcript can show up before anyone created the task through
	// the API; register it so the event rows have a parent.
	if err := in.db.EnsureTask(ctx, taskID, taskID); err != nil {
		in.log.Error("failed to register task %s: %v", taskID, err)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		in.log.Error("failed to open transcript %s: %v", path, err)
		return
	}
	defer file.Close()

	offset := in.offsets[path]
	if info, err := file.Stat(); err == nil && info.Size() < offset {
		// Truncated or replaced; start over. De-dup in the store keeps
		// this from double-counting.
		offset = 0
	}
	if _, err := file.Seek(offset, 0); err != nil {
		in.log.Error("failed to seek transcript %s: %v", path, err)
		return
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Partial line: re-read it on the next write event.
			break
		}
		offset += int64(len(line))

		trimmed := strings.TrimSpace(string(line))
		if trimmed == "" {
			continue
		}

		fresh, err := in.db.AppendEvent(ctx, taskID, []byte(trimmed))
		if err != nil {
			in.log.Error("failed to store event for task %s: %v", taskID, err)
			continue
		}
		if !fresh {
			continue
		}

		ev, err := toolcall.DecodeEvent([]byte(trimmed))
		if err != nil {
			in.log.Warn("skipping malformed transcript line for task %s: %v", taskID, err)
			continue
		}
		if ev.TaskID == "" {
			ev.TaskID = taskID
		}
		in.hub.Broadcast(ev)
	}

	in.offsets[path] = offset
}
