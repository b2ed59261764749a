package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFeedFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	tempDir := t.TempDir()

	writeFeedFile(t, tempDir, "good-news.yml", `
url: "https://example.com/feed.xml"
source: "Good News"
category: "community"

settings:
  enabled: true
  max_items: 25
  timeout: 10
  extract_content: true

filters:
  - field: "title"
    excludes:
      - "sponsored"
`)
	writeFeedFile(t, tempDir, "paused.yml", `
url: "https://example.org/rss"
settings:
  enabled: false
`)
	writeFeedFile(t, tempDir, "notes.txt", "ignored")

	configCache := NewConfigCache(tempDir)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 feed configs, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("good-news")
	if err != nil {
		t.Fatal(err)
	}
	if feedConfig.Name != "good-news" || feedConfig.Source != "Good News" || feedConfig.Category != "community" {
		t.Errorf("Unexpected config: %+v", feedConfig)
	}
	if feedConfig.Settings.MaxItems != 25 || feedConfig.Settings.Timeout != 10 || !feedConfig.Settings.ExtractContent {
		t.Errorf("Unexpected settings: %+v", feedConfig.Settings)
	}

	paused, _ := configCache.GetConfig("paused")
	if paused.Settings.MaxItems != defaultMaxItems || paused.Settings.Timeout != defaultTimeout {
		t.Errorf("Expected defaults to be applied, got %+v", paused.Settings)
	}

	enabled := configCache.GetEnabledConfigs()
	if len(enabled) != 1 || enabled[0].Name != "good-news" {
		t.Errorf("Expected only good-news enabled, got %d configs", len(enabled))
	}
}

func TestConfigCacheMissingDirectory(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	if err := configCache.Run(); err != nil {
		t.Errorf("Expected missing directory to be tolerated, got %v", err)
	}
	if _, err := configCache.GetConfig("any"); err == nil {
		t.Error("Expected error for unknown feed")
	}
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "settings:\n  enabled: true\n"},
		{"negative timeout", "url: https://a.com\nsettings:\n  timeout: -1\n"},
		{"bad filter field", "url: https://a.com\nfilters:\n  - field: authors\n    excludes: [x]\n"},
		{"empty filter", "url: https://a.com\nfilters:\n  - field: title\n"},
		{"extraction without source", "url: https://a.com\nsettings:\n  extract_content: true\n"},
		{"bad yaml", "url: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseConfig("feed", []byte(tt.content)); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestConfigCacheInvalidFileFailsRun(t *testing.T) {
	tempDir := t.TempDir()
	writeFeedFile(t, tempDir, "broken.yml", "settings:\n  enabled: true\n")

	if err := NewConfigCache(tempDir).Run(); err == nil {
		t.Error("Expected error for config without url")
	}
}
