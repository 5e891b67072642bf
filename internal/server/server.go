package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/store"
	"github.com/codefionn/taskdeck/internal/task"
)

// Server exposes the task list over HTTP and task transcripts over
// WebSocket. It is the "external task-listing source" the TUI talks to.
type Server struct {
	addr     string
	db       *store.DB
	hub      *Hub
	ingest   *Ingest
	router   *httprouter.Router
	server   *http.Server
	upgrader websocket.Upgrader
}

// New creates a server bound to addr, backed by db, ingesting
// transcripts from transcriptsDir (ingest disabled when empty).
func New(addr string, db *store.DB, transcriptsDir string) *Server {
	hub := NewHub()

	s := &Server{
		addr:   addr,
		db:     db,
		hub:    hub,
		router: httprouter.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if transcriptsDir != "" {
		s.ingest = NewIngest(db, hub, transcriptsDir)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/api/tasks", s.handleListTasks)
	s.router.POST("/api/tasks", s.handleCreateTask)
	s.router.PATCH("/api/tasks/:id", s.handleUpdateTask)
	s.router.GET("/api/tasks/:id/events", s.handleListEvents)
	s.router.GET("/ws/tasks/:id", s.handleSubscribe)
}

// Start runs the hub, the transcript ingest and the HTTP listener.
// Blocks until the listener stops.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run()
	if s.ingest != nil {
		if err := s.ingest.Start(ctx); err != nil {
			return fmt.Errorf("failed to start transcript ingest: %w", err)
		}
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	logger.Info("taskdeckd listening on %s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener, the ingest and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ingest != nil {
		s.ingest.Stop()
	}
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"viewers": s.hub.ClientCount(),
	})
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	tasks, err := s.db.ListTasks(r.Context())
	if err != nil {
		logger.Error("list tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

type createTaskRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "task name is required")
		return
	}

	t, err := s.db.CreateTask(r.Context(), req.Name)
	if err != nil {
		logger.Error("create task: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

type updateTaskRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := task.ParseStatus(req.Status)
	if err := s.db.SetTaskStatus(r.Context(), id, status); err != nil {
		writeError(w, http.StatusNotFound, "failed to update task %s", id)
		return
	}

	t, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload task %s", id)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	events, err := s.db.ListEvents(r.Context(), id)
	if err != nil {
		logger.Error("list events for %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// handleSubscribe upgrades to WebSocket, replays the stored transcript
// for the task and then streams live events as the ingest appends them.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	events, err := s.db.ListEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to replay events")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(s.hub, conn, id)

	// Queue the replay before the hub knows about the client: until
	// registration the send buffer is ours alone, so stored events
	// always precede live broadcasts and the hub cannot close the
	// channel mid-replay.
	for _, ev := range events {
		select {
		case client.send <- ev:
		default:
			logger.Warn("replay overflow for task %s", id)
		}
	}

	s.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()
}
