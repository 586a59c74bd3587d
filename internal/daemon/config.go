// Package daemon manages the Lectern daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API           APIConfig           `toml:"api"`
	Storage       StorageConfig       `toml:"storage"`
	Engagement    EngagementConfig    `toml:"engagement"`
	Notifications NotificationsConfig `toml:"notifications"`
	Sync          SyncConfig          `toml:"sync"`
	Telemetry     TelemetryConfig     `toml:"telemetry"`
	Logging       LoggingConfig       `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where progress data lives.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// EngagementConfig tunes the reading-time gate.
type EngagementConfig struct {
	SlowWPM           int     `toml:"slow_wpm"`
	AverageWPM        int     `toml:"average_wpm"`
	FastWPM           int     `toml:"fast_wpm"`
	MinimumRatio      float64 `toml:"minimum_ratio"`
	GoodRatio         float64 `toml:"good_ratio"`
	ExcellentRatio    float64 `toml:"excellent_ratio"`
	CompletionPercent int     `toml:"completion_percent"`
	ScrollOnly        bool    `toml:"scroll_only"`
	TickSeconds       int     `toml:"tick_seconds"`
}

// NotificationsConfig tunes auto-dismiss timeouts, in milliseconds.
type NotificationsConfig struct {
	CompletionTimeoutMs  int `toml:"completion_timeout_ms"`
	ChallengeTimeoutMs   int `toml:"challenge_timeout_ms"`
	AchievementTimeoutMs int `toml:"achievement_timeout_ms"`
}

// SyncConfig controls pushing progress to a remote account endpoint.
type SyncConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	Token    string `toml:"token"`
	Interval string `toml:"interval"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := lecternHome()
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        7391,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Engagement: EngagementConfig{
			SlowWPM:           150,
			AverageWPM:        200,
			FastWPM:           300,
			MinimumRatio:      0.25,
			GoodRatio:         0.50,
			ExcellentRatio:    0.75,
			CompletionPercent: 90,
			TickSeconds:       5,
		},
		Notifications: NotificationsConfig{
			CompletionTimeoutMs:  6000,
			ChallengeTimeoutMs:   10000,
			AchievementTimeoutMs: 5000,
		},
		Sync: SyncConfig{
			Enabled:  false,
			Interval: "30s",
		},
		Telemetry: TelemetryConfig{
			Prometheus: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "lectern.log"),
		},
	}
}

// LoadConfig reads config from ~/.lectern/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(lecternHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.lectern/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(lecternHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// lecternHome returns the Lectern data directory.
func lecternHome() string {
	if env := os.Getenv("LECTERN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lectern")
}

// LecternHome is exported for use by other packages.
func LecternHome() string {
	return lecternHome()
}
