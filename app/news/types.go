package news

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultSentimentThreshold = 0.7
	DefaultRealTimeFiltering  = true
)

var (
	ErrCurationOverlap    = errors.New("article ids flagged as both top five and curated")
	ErrInvalidKeywordType = errors.New("keyword type must be blocked or prioritized")
	ErrEmptyFindText      = errors.New("find text must not be empty")
)

// CurationState replaces the isTopFive/isCurated flag pair so an article can
// never carry both.
type CurationState int

const (
	CurationNone CurationState = iota
	CurationTopFive
	CurationCurated
)

func (s CurationState) String() string {
	switch s {
	case CurationTopFive:
		return "top_five"
	case CurationCurated:
		return "curated"
	default:
		return "none"
	}
}

// Flags returns the persisted column pair for the state.
func (s CurationState) Flags() (isTopFive, isCurated bool) {
	return s == CurationTopFive, s == CurationCurated
}

// StateFromFlags maps the persisted column pair back to a state. Top five
// wins when a corrupted row carries both flags.
func StateFromFlags(isTopFive, isCurated bool) CurationState {
	switch {
	case isTopFive:
		return CurationTopFive
	case isCurated:
		return CurationCurated
	default:
		return CurationNone
	}
}

type Article struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Content     string        `json:"content,omitempty"`
	Source      string        `json:"source"`
	URL         string        `json:"url"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	Category    string        `json:"category"`
	ReadTime    int           `json:"readTime"` // minutes
	Views       int           `json:"views"`
	Sentiment   float64       `json:"sentiment"`
	Keywords    []string      `json:"keywords"`
	Curation    CurationState `json:"-"`
	Likes       int           `json:"likes"`
	PublishedAt time.Time     `json:"publishedAt"`
}

func (a Article) IsTopFive() bool { return a.Curation == CurationTopFive }
func (a Article) IsCurated() bool { return a.Curation == CurationCurated }

func (a Article) MarshalJSON() ([]byte, error) {
	type plain Article
	keywords := a.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	p := plain(a)
	p.Keywords = keywords
	return json.Marshal(struct {
		plain
		IsCurated bool `json:"isCurated"`
		IsTopFive bool `json:"isTopFive"`
	}{p, a.IsCurated(), a.IsTopFive()})
}

// FilteredArticle is an article as returned by the personalized pipeline.
type FilteredArticle struct {
	Article
	PriorityScore int `json:"priorityScore"`
}

func (f FilteredArticle) MarshalJSON() ([]byte, error) {
	base, err := f.Article.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	fields["priorityScore"] = f.PriorityScore
	return json.Marshal(fields)
}

// Candidate is a raw tuple produced by a feed source before it becomes an Article.
type Candidate struct {
	Title       string
	Summary     string
	Content     string
	Link        string
	Source      string
	Category    string
	ImageURL    string
	PublishedAt time.Time
}

// Valid reports whether the candidate carries every field ingestion requires.
func (c Candidate) Valid() bool {
	return c.Title != "" && c.Summary != "" && c.Content != "" && c.Link != ""
}

type KeywordType string

const (
	KeywordBlocked     KeywordType = "blocked"
	KeywordPrioritized KeywordType = "prioritized"
)

func ParseKeywordType(s string) (KeywordType, error) {
	switch KeywordType(s) {
	case KeywordBlocked, KeywordPrioritized:
		return KeywordType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKeywordType, s)
}

type Keyword struct {
	ID      int64       `json:"id"`
	Keyword string      `json:"keyword"`
	Type    KeywordType `json:"type"`
}

// Terms returns the keyword strings of the given list.
func Terms(keywords []Keyword) []string {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		terms = append(terms, k.Keyword)
	}
	return terms
}

type ReplacementPattern struct {
	ID            int64  `json:"id"`
	FindText      string `json:"findText"`
	ReplaceText   string `json:"replaceText"`
	CaseSensitive bool   `json:"caseSensitive"`
	UserID        string `json:"userId"`
}

type UserPreferences struct {
	ID                 int64   `json:"id"`
	UserID             string  `json:"userId,omitempty"`
	SentimentThreshold float64 `json:"sentimentThreshold"`
	RealTimeFiltering  bool    `json:"realTimeFiltering"`
}

// DefaultPreferences is the view served to callers without stored preferences.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		SentimentThreshold: DefaultSentimentThreshold,
		RealTimeFiltering:  DefaultRealTimeFiltering,
	}
}

type Podcast struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AudioURL     string    `json:"audioUrl"`
	Duration     int       `json:"duration"` // seconds
	Transcript   string    `json:"transcript"`
	ArticleIDs   []int64   `json:"articleIds"`
	CreatedAt    time.Time `json:"createdAt"`
	IsProcessing bool      `json:"isProcessing"`
}

// ClampSentiment bounds a sentiment value to [0, 1].
func ClampSentiment(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// CheckDisjoint fails when an id appears in both curation sets.
func CheckDisjoint(topFive, curated []int64) error {
	seen := make(map[int64]struct{}, len(topFive))
	for _, id := range topFive {
		seen[id] = struct{}{}
	}
	for _, id := range curated {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: id %d", ErrCurationOverlap, id)
		}
	}
	return nil
}
