package database

import (
	"context"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

type ArticleStore interface {
	CreateArticle(ctx context.Context, a news.Article) (*news.Article, bool, error)
	GetArticles(ctx context.Context) ([]news.Article, error)
	GetArticlesByFlag(ctx context.Context, state news.CurationState) ([]news.Article, error)
	GetArticlesByIDs(ctx context.Context, ids []int64) ([]news.Article, error)
	GetArticle(ctx context.Context, id int64) (*news.Article, error)
	GetArticleCount(ctx context.Context) (int, error)

	UpdateArticle(ctx context.Context, id int64, patch ArticlePatch) (*news.Article, error)
	IncrementViews(ctx context.Context, id int64) (*news.Article, error)
	IncrementLikes(ctx context.Context, id int64) (*news.Article, error)
	SetCurationFlagsBulk(ctx context.Context, topFive, curated []int64) error

	GetArticlesForExtraction(ctx context.Context, source string, limit int) ([]ArticleForExtraction, error)
	UpdateExtractionStatus(ctx context.Context, id int64, status, errorMsg string) error
	UpdateExtractedContent(ctx context.Context, id int64, content string, readTime int) error
}

type KeywordStore interface {
	CreateKeyword(ctx context.Context, keyword string, kind news.KeywordType) (*news.Keyword, error)
	GetKeywords(ctx context.Context) ([]news.Keyword, error)
	GetKeywordsByType(ctx context.Context, kind news.KeywordType) ([]news.Keyword, error)
	DeleteKeyword(ctx context.Context, id int64) (bool, error)
}

type PatternStore interface {
	CreateReplacementPattern(ctx context.Context, p news.ReplacementPattern) (*news.ReplacementPattern, error)
	GetReplacementPatterns(ctx context.Context, userID string) ([]news.ReplacementPattern, error)
	DeleteReplacementPattern(ctx context.Context, userID string, id int64) (bool, error)
}

type PreferencesStore interface {
	GetUserPreferences(ctx context.Context, userID string) (*news.UserPreferences, error)
	UpsertUserPreferences(ctx context.Context, p news.UserPreferences) (*news.UserPreferences, error)
}

type PodcastStore interface {
	CreatePodcast(ctx context.Context, p news.Podcast) error
	UpdatePodcast(ctx context.Context, p news.Podcast) error
	GetPodcast(ctx context.Context, id string) (*news.Podcast, error)
	GetPodcasts(ctx context.Context) ([]news.Podcast, error)
}

type SavedStore interface {
	SaveArticle(ctx context.Context, userID string, articleID int64) error
	UnsaveArticle(ctx context.Context, userID string, articleID int64) (bool, error)
	GetSavedArticles(ctx context.Context, userID string) ([]news.Article, error)
}

var (
	_ ArticleStore     = (*ArticleRepository)(nil)
	_ KeywordStore     = (*KeywordRepository)(nil)
	_ PatternStore     = (*PatternRepository)(nil)
	_ PreferencesStore = (*PreferencesRepository)(nil)
	_ PodcastStore     = (*PodcastRepository)(nil)
	_ SavedStore       = (*SavedRepository)(nil)
)
