package pipeline

import (
	"github.com/bright-buzz/brightbuzz-app/app/news"
)

// matchesText reports whether term occurs in the article's title or summary.
func matchesText(a news.Article, term string) bool {
	return news.ContainsFold(a.Title+" "+a.Summary, term)
}

// matchesKeywords reports whether term occurs in any of the article's keywords.
func matchesKeywords(a news.Article, term string) bool {
	for _, kw := range a.Keywords {
		if news.ContainsFold(kw, term) {
			return true
		}
	}
	return false
}

// BlockedBy returns the first blocked term the article matches in its text or
// keywords.
func BlockedBy(a news.Article, blocked []string) (string, bool) {
	for _, term := range blocked {
		if matchesText(a, term) || matchesKeywords(a, term) {
			return term, true
		}
	}
	return "", false
}

// PriorityScore counts prioritized terms found in the article text plus those
// found in its keywords. A term present in both counts twice.
func PriorityScore(a news.Article, prioritized []string) int {
	score := 0
	for _, term := range prioritized {
		if matchesText(a, term) {
			score++
		}
		if matchesKeywords(a, term) {
			score++
		}
	}
	return score
}

func dropBlocked(articles []news.Article, blocked []string) []news.Article {
	if len(blocked) == 0 {
		return articles
	}
	kept := make([]news.Article, 0, len(articles))
	for _, a := range articles {
		if _, ok := BlockedBy(a, blocked); ok {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
