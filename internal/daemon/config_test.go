package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 7391 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 7391)
	}
	if cfg.Engagement.AverageWPM != 200 {
		t.Errorf("Engagement.AverageWPM = %d, want %d", cfg.Engagement.AverageWPM, 200)
	}
	if cfg.Engagement.CompletionPercent != 90 {
		t.Errorf("Engagement.CompletionPercent = %d, want %d", cfg.Engagement.CompletionPercent, 90)
	}
	if cfg.Notifications.ChallengeTimeoutMs != 10000 {
		t.Errorf("Notifications.ChallengeTimeoutMs = %d, want %d", cfg.Notifications.ChallengeTimeoutMs, 10000)
	}
	if cfg.Sync.Enabled {
		t.Error("Sync.Enabled = true, want false by default")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LECTERN_HOME", dir)

	content := `
[api]
port = 9000

[engagement]
average_wpm = 250
scroll_only = true

[sync]
enabled = true
endpoint = "https://account.example.com/sync"
interval = "2m"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 9000)
	}
	// Unset fields keep their defaults
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want default %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.Engagement.AverageWPM != 250 {
		t.Errorf("Engagement.AverageWPM = %d, want %d", cfg.Engagement.AverageWPM, 250)
	}
	if !cfg.Engagement.ScrollOnly {
		t.Error("Engagement.ScrollOnly = false, want true")
	}
	if !cfg.Sync.Enabled || cfg.Sync.Endpoint != "https://account.example.com/sync" {
		t.Errorf("Sync = %+v, want enabled with endpoint", cfg.Sync)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("LECTERN_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("missing config file should yield defaults, got port %d", cfg.API.Port)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		fallback time.Duration
		want     time.Duration
	}{
		{"30s", time.Minute, 30 * time.Second},
		{"2m", time.Minute, 2 * time.Minute},
		{"", time.Minute, time.Minute},
		{"bogus", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.input, tt.fallback); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestTrackerConfigOverrides(t *testing.T) {
	cfg := trackerConfig(EngagementConfig{
		AverageWPM:        250,
		CompletionPercent: 80,
		TickSeconds:       10,
	})

	if cfg.Policy.Speeds.AverageWPM != 250 {
		t.Errorf("AverageWPM = %d, want %d", cfg.Policy.Speeds.AverageWPM, 250)
	}
	if cfg.Policy.Speeds.SlowWPM != 150 {
		t.Errorf("SlowWPM = %d, want default %d", cfg.Policy.Speeds.SlowWPM, 150)
	}
	if cfg.CompletionPercent != 80 {
		t.Errorf("CompletionPercent = %d, want %d", cfg.CompletionPercent, 80)
	}
	if cfg.TickInterval != 10*time.Second {
		t.Errorf("TickInterval = %v, want %v", cfg.TickInterval, 10*time.Second)
	}
}
