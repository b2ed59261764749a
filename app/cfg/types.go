package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath   string
	FeedsDir string

	// HTTP server and background work
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Pipeline tuning
	RefreshInterval     time.Duration
	CurationWindowDays  int
	FreshnessWindowDays int
	MinNewArticles      int
	AIEnrichLimit       int

	// External services, each optional
	GeminiAPIKey string
	GeminiModel  string
	NewsAPIKey   string
	NewsAPIURL   string
	NewsAPIQuery string
	TTSURL       string
	TTSAPIKey    string
	TTSVoice     string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) CurationWindow() time.Duration {
	return time.Duration(c.CurationWindowDays) * 24 * time.Hour
}

func (c *Cfg) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowDays) * 24 * time.Hour
}

func (c *Cfg) AIEnabled() bool {
	return c.GeminiAPIKey != ""
}

func (c *Cfg) NewsAPIEnabled() bool {
	return c.NewsAPIKey != ""
}

func (c *Cfg) TTSEnabled() bool {
	return c.TTSURL != ""
}
