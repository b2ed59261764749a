package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load([]string{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.DBPath != "./data/brightbuzz.db" {
		t.Errorf("Expected default db path, got '%s'", cfg.DBPath)
	}
	if cfg.RefreshInterval != 15*time.Minute {
		t.Errorf("Expected refresh interval 15m, got %v", cfg.RefreshInterval)
	}
	if cfg.CurationWindow() != 72*time.Hour {
		t.Errorf("Expected curation window 72h, got %v", cfg.CurationWindow())
	}
	if cfg.FreshnessWindow() != 30*24*time.Hour {
		t.Errorf("Expected freshness window 30 days, got %v", cfg.FreshnessWindow())
	}
	if cfg.MinNewArticles != 10 {
		t.Errorf("Expected min new articles 10, got %d", cfg.MinNewArticles)
	}
	if cfg.AIEnabled() || cfg.NewsAPIEnabled() || cfg.TTSEnabled() {
		t.Error("Expected external services disabled without keys")
	}
	if Get() != cfg {
		t.Error("Expected Get to return the loaded configuration")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/bb.db")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("TTS_URL", "https://tts.example/speak")

	cfg, err := load([]string{"--curation-window-days", "7"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.DBPath != "/tmp/bb.db" {
		t.Errorf("Expected db path from env, got '%s'", cfg.DBPath)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("Expected refresh interval 5m, got %v", cfg.RefreshInterval)
	}
	if cfg.CurationWindowDays != 7 {
		t.Errorf("Expected curation window 7 from flag, got %d", cfg.CurationWindowDays)
	}
	if !cfg.AIEnabled() || !cfg.TTSEnabled() {
		t.Error("Expected AI and TTS enabled")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero curation window", []string{"--curation-window-days", "0"}},
		{"zero freshness window", []string{"--freshness-window-days", "0"}},
		{"zero scheduler interval", []string{"--scheduler-interval", "0"}},
		{"negative enrich limit", []string{"--ai-enrich-limit=-1"}},
		{"bad duration", []string{"--refresh-interval", "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(tt.args); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
