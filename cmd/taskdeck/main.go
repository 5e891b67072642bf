package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/codefionn/taskdeck/internal/api"
	"github.com/codefionn/taskdeck/internal/config"
	"github.com/codefionn/taskdeck/internal/logger"
	"github.com/codefionn/taskdeck/internal/store"
	"github.com/codefionn/taskdeck/internal/task"
	"github.com/codefionn/taskdeck/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	serverURL := flag.String("server", "", "taskdeckd base URL (overrides config)")
	offline := flag.Bool("offline", false, "use the local database instead of a server")
	logLevelFlag := flag.String("log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *offline {
		cfg.Offline = true
	}
	if envLevel := strings.TrimSpace(os.Getenv("TASKDECK_LOG_LEVEL")); envLevel != "" {
		cfg.LogLevel = envLevel
	}
	if *logLevelFlag != "" {
		cfg.LogLevel = *logLevelFlag
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogPath); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("taskdeck requires an interactive terminal")
	}

	source, subscribe, cleanup, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	taskStore := task.NewStore(source)

	var opts []tui.Option
	if cfg.DisableAnimations {
		opts = append(opts, tui.WithoutAnimations())
	}
	app := tui.NewApp(taskStore, subscribe, opts...)

	logger.Info("starting taskdeck (offline=%v, server=%s)", cfg.Offline, cfg.ServerURL)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// buildSource picks the task source: the daemon API, or the local
// database when running offline. Offline streams are replays of the
// stored transcript.
func buildSource(cfg *config.Config) (task.Source, tui.SubscribeFunc, func(), error) {
	if cfg.Offline {
		db, err := store.Open(cfg.DatabasePath())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		subscribe := func(ctx context.Context, taskID string) (tui.EventStream, error) {
			events, err := db.ListEvents(ctx, taskID)
			if err != nil {
				return nil, err
			}
			return tui.NewReplayStream(events), nil
		}
		return db, subscribe, func() { db.Close() }, nil
	}

	client := api.NewClient(cfg.ServerURL)
	subscribe := func(ctx context.Context, taskID string) (tui.EventStream, error) {
		return client.Subscribe(ctx, taskID)
	}
	return client, subscribe, func() {}, nil
}
