package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefionn/taskdeck/internal/task"
)

func TestListTasks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tasks":[
			{"id":"a","name":"alpha","status":"active"},
			{"id":"b","name":"beta","status":"completed"}
		]}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "alpha", tasks[0].Name)
	assert.Equal(t, task.StatusCompleted, tasks[1].Status)
}

func TestCreateTask(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "new work", body["name"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"x","name":"new work","status":"active"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	created, err := client.CreateTask(context.Background(), "new work")
	require.NoError(t, err)
	assert.Equal(t, "x", created.ID)
	assert.Equal(t, task.StatusActive, created.Status)
}

func TestSetTaskStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/tasks/a", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "archived", body["status"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"a","status":"archived"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	require.NoError(t, client.SetTaskStatus(context.Background(), "a", task.StatusArchived))
}

func TestErrorEnvelopeIsSurfaced(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"task missing not found"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	err := client.SetTaskStatus(context.Background(), "missing", task.StatusCompleted)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task missing not found")
	assert.Contains(t, err.Error(), "404")
}

func TestHealth(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer ts.Close()

	require.NoError(t, NewClient(ts.URL).Health(context.Background()))
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8743", "ws://localhost:8743/ws/tasks/t1"},
		{"https://deck.example.com", "wss://deck.example.com/ws/tasks/t1"},
		{"http://localhost:8743/", "ws://localhost:8743/ws/tasks/t1"},
	}
	for _, tt := range tests {
		got, err := websocketURL(tt.base, "t1")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
