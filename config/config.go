package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/spf13/afero"
)

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// TMDBSettings configures the movie catalog client.
type TMDBSettings struct {
	APIKey       string `json:"apiKey"`
	BaseURL      string `json:"baseUrl"`
	ImageBaseURL string `json:"imageBaseUrl"`
	Language     string `json:"language"`
}

// DatabaseSettings configures the sqlite database.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// LoggingSettings configures the rotating log output.
type LoggingSettings struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// RateLimitSettings configures per-IP request throttling.
type RateLimitSettings struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	Burst             int `json:"burst"`
}

// ImageCacheSettings configures the poster cache.
type ImageCacheSettings struct {
	Dir string `json:"dir"`
}

// Settings is the full application configuration.
type Settings struct {
	Server     ServerSettings     `json:"server"`
	TMDB       TMDBSettings       `json:"tmdb"`
	Database   DatabaseSettings   `json:"database"`
	Logging    LoggingSettings    `json:"logging"`
	RateLimit  RateLimitSettings  `json:"rateLimit"`
	ImageCache ImageCacheSettings `json:"imageCache"`
}

// DefaultSettings returns the configuration used on first run.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 8080},
		TMDB: TMDBSettings{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "en-US",
		},
		Database: DatabaseSettings{Path: "data/kino.db"},
		Logging: LoggingSettings{
			Level:      "info",
			File:       "data/kino.log",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		RateLimit:  RateLimitSettings{RequestsPerMinute: 300, Burst: 60},
		ImageCache: ImageCacheSettings{Dir: "data/images"},
	}
}

// Manager owns the settings file. Reads and writes go through an afero
// filesystem so tests can run against memory.
type Manager struct {
	fs   afero.Fs
	path string

	mu       sync.RWMutex
	settings Settings
}

// NewManager creates a manager for the settings file at path on the real
// filesystem.
func NewManager(path string) *Manager {
	return NewManagerWithFs(afero.NewOsFs(), path)
}

// NewManagerWithFs creates a manager on an explicit filesystem.
func NewManagerWithFs(fs afero.Fs, path string) *Manager {
	return &Manager{fs: fs, path: path, settings: DefaultSettings()}
}

// Load reads the settings file. A missing file yields the defaults with
// environment overrides applied; a malformed file is an error.
func (m *Manager) Load() (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()

	data, err := afero.ReadFile(m.fs, m.path)
	switch {
	case os.IsNotExist(err):
		// first run, keep defaults
	case err != nil:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse settings %s: %w", m.path, err)
		}
	}

	applyEnv(&settings)
	m.settings = settings
	return settings, nil
}

// Save writes the settings file, creating parent directories as needed.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "" && dir != "." {
		if err := m.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := afero.WriteFile(m.fs, m.path, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	m.settings = settings
	return nil
}

// Current returns the last loaded or saved settings.
func (m *Manager) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// applyEnv layers environment overrides on top of file settings.
func applyEnv(s *Settings) {
	if v := os.Getenv("KINO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			s.Server.Port = port
		}
	}
	if v := os.Getenv("KINO_TMDB_API_KEY"); v != "" {
		s.TMDB.APIKey = v
	}
	if v := os.Getenv("KINO_DB_PATH"); v != "" {
		s.Database.Path = v
	}
	if v := os.Getenv("KINO_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
}
