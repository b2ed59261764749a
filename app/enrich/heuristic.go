package enrich

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	defaultSentiment = 0.7
	maxSummaryRunes  = 300
)

var stopWords = map[string]struct{}{
	"about": {}, "above": {}, "after": {}, "again": {}, "against": {}, "also": {},
	"among": {}, "been": {}, "before": {}, "being": {}, "below": {}, "between": {},
	"both": {}, "could": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "even": {}, "from": {}, "further": {}, "have": {}, "having": {},
	"here": {}, "into": {}, "itself": {}, "just": {}, "like": {}, "made": {},
	"make": {}, "many": {}, "more": {}, "most": {}, "much": {}, "must": {},
	"only": {}, "other": {}, "ours": {}, "over": {}, "said": {}, "same": {},
	"says": {}, "should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"their": {}, "them": {}, "then": {}, "there": {}, "these": {}, "they": {},
	"this": {}, "those": {}, "through": {}, "under": {}, "until": {}, "upon": {},
	"very": {}, "want": {}, "were": {}, "what": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "will": {}, "with": {}, "within": {}, "without": {},
	"would": {}, "year": {}, "years": {}, "your": {}, "yours": {},
}

// Heuristic is the local enricher used when no AI service is configured or
// when it fails. It is also the cheap path for high-volume ingestion.
type Heuristic struct{}

func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// DefaultSentiment is the neutral-positive rating assumed without analysis.
func DefaultSentiment() float64 {
	return defaultSentiment
}

// BasicKeywords returns up to ten distinct words of text, in order of
// appearance, skipping stop words and words of three runes or fewer.
func BasicKeywords(text string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, news.Fold(text))

	keywords := make([]string, 0, MaxKeywords)
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(stripped) {
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}
	return keywords
}

func (h *Heuristic) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	return Sentiment{Rating: DefaultSentiment()}, nil
}

func (h *Heuristic) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	return BasicKeywords(text), nil
}

// Summarize shortens content to its leading sentences.
func (h *Heuristic) Summarize(ctx context.Context, title, content string) (string, error) {
	text := strings.Join(strings.Fields(content), " ")
	if text == "" {
		return title, nil
	}
	if utf8.RuneCountInString(text) <= maxSummaryRunes {
		return text, nil
	}

	cut := string([]rune(text)[:maxSummaryRunes])
	if idx := strings.LastIndex(cut, ". "); idx > maxSummaryRunes/3 {
		return cut[:idx+1], nil
	}
	return strings.TrimSpace(cut) + "...", nil
}
