package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config represents application configuration
type Config struct {
	ServerURL         string `json:"server_url"`         // taskdeckd base URL
	Offline           bool   `json:"offline"`            // read tasks from the local database instead of the server
	DataDir           string `json:"data_dir"`           // SQLite database and server state
	TranscriptsDir    string `json:"transcripts_dir"`    // agent transcript JSONL files watched by taskdeckd
	LogLevel          string `json:"log_level"`          // debug, info, warn, error, none
	LogPath           string `json:"-"`
	DisableAnimations bool   `json:"disable_animations"`
}

func defaultConfigDir() string {
	switch runtime.GOOS {
	case "linux":
		if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
			return filepath.Join(configHome, "taskdeck")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "taskdeck")
	case "windows":
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, "taskdeck")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Roaming", "taskdeck")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "taskdeck")
	}
}

func defaultStateDir() string {
	switch runtime.GOOS {
	case "linux":
		if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
			return filepath.Join(stateHome, "taskdeck")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "state", "taskdeck")
	case "windows":
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, "taskdeck")
		}
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "AppData", "Local", "taskdeck")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".config", "taskdeck")
	}
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		ServerURL:      "http://localhost:8743",
		DataDir:        stateDir,
		TranscriptsDir: filepath.Join(stateDir, "transcripts"),
		LogLevel:       "info",
		LogPath:        filepath.Join(stateDir, "taskdeck.log"),
	}
}

// ConfigPath returns the path of the configuration file
func ConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Load reads the configuration file, falling back to defaults when the
// file does not exist yet.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Re-derive paths the file left empty so partial configs stay valid.
	defaults := DefaultConfig()
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaults.ServerURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaults.DataDir
	}
	if cfg.TranscriptsDir == "" {
		cfg.TranscriptsDir = defaults.TranscriptsDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	cfg.LogPath = defaults.LogPath

	return cfg, nil
}

// Save writes the configuration file, creating the directory if needed.
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// DatabasePath returns the SQLite database location under the data dir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "taskdeck.db")
}
