package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data/brightbuzz.db" description:"SQLite database file"`
	FeedsDir string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing feed configuration files"`

	// HTTP server and background work
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"300" description:"Scheduler interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`

	// Pipeline tuning
	RefreshInterval     time.Duration `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"15m" description:"Minimum time between non-forced news fetches"`
	CurationWindowDays  int           `long:"curation-window-days" env:"CURATION_WINDOW_DAYS" default:"3" description:"Age limit in days for curated articles"`
	FreshnessWindowDays int           `long:"freshness-window-days" env:"FRESHNESS_WINDOW_DAYS" default:"30" description:"Age limit in days for personalized articles"`
	MinNewArticles      int           `long:"min-new-articles" env:"MIN_NEW_ARTICLES" default:"10" description:"New article count below which the secondary source is queried, 0 disables"`
	AIEnrichLimit       int           `long:"ai-enrich-limit" env:"AI_ENRICH_LIMIT" default:"20" description:"Articles per fetch enriched by the AI service"`

	// External services
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key, enables AI enrichment"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-1.5-flash" description:"Gemini model name"`
	NewsAPIKey   string `long:"news-api-key" env:"NEWS_API_KEY" description:"Secondary news API key, enables supplementing"`
	NewsAPIURL   string `long:"news-api-url" env:"NEWS_API_URL" default:"https://newsapi.org" description:"Secondary news API base URL"`
	NewsAPIQuery string `long:"news-api-query" env:"NEWS_API_QUERY" description:"Search query for the secondary news API"`
	TTSURL       string `long:"tts-url" env:"TTS_URL" description:"Text-to-speech endpoint, enables podcast audio"`
	TTSAPIKey    string `long:"tts-api-key" env:"TTS_API_KEY" description:"Text-to-speech API key"`
	TTSVoice     string `long:"tts-voice" env:"TTS_VOICE" description:"Text-to-speech voice name"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"BrightBuzz/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:              raw.DBPath,
		FeedsDir:            raw.FeedsDir,
		Port:                raw.Port,
		BaseUrl:             raw.BaseUrl,
		WorkerCount:         raw.WorkerCount,
		SchedulerInterval:   raw.SchedulerInterval,
		APIAccessKey:        raw.APIAccessKey,
		RefreshInterval:     raw.RefreshInterval,
		CurationWindowDays:  raw.CurationWindowDays,
		FreshnessWindowDays: raw.FreshnessWindowDays,
		MinNewArticles:      raw.MinNewArticles,
		AIEnrichLimit:       raw.AIEnrichLimit,
		GeminiAPIKey:        raw.GeminiAPIKey,
		GeminiModel:         raw.GeminiModel,
		NewsAPIKey:          raw.NewsAPIKey,
		NewsAPIURL:          raw.NewsAPIURL,
		NewsAPIQuery:        raw.NewsAPIQuery,
		TTSURL:              raw.TTSURL,
		TTSAPIKey:           raw.TTSAPIKey,
		TTSVoice:            raw.TTSVoice,
		UserAgent:           raw.UserAgent,
		Timezone:            raw.Timezone,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func validate(cfg *Cfg) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if cfg.CurationWindowDays < 1 {
		return fmt.Errorf("curation window must be at least one day")
	}
	if cfg.FreshnessWindowDays < 1 {
		return fmt.Errorf("freshness window must be at least one day")
	}
	if cfg.SchedulerInterval < 1 {
		return fmt.Errorf("scheduler interval must be positive")
	}
	if cfg.RefreshInterval < 0 || cfg.MinNewArticles < 0 || cfg.AIEnrichLimit < 0 {
		return fmt.Errorf("refresh interval, min new articles and AI enrich limit must be non-negative")
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
