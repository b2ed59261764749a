package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

const (
	ExtractionPending = "pending"
	ExtractionSuccess = "success"
	ExtractionFailed  = "failed"
	ExtractionSkipped = "skipped"
)

var articleColumns = []string{
	"id", "title", "summary", "content", "source", "url", "image_url", "category",
	"read_time", "views", "likes", "sentiment", "keywords", "is_top_five", "is_curated",
	"published_at",
}

// ArticlePatch carries the fields of an article to change. Nil fields are
// left untouched.
type ArticlePatch struct {
	Title     *string
	Summary   *string
	Content   *string
	ImageURL  *string
	ReadTime  *int
	Sentiment *float64
	Keywords  []string
}

func (p ArticlePatch) empty() bool {
	return p.Title == nil && p.Summary == nil && p.Content == nil && p.ImageURL == nil &&
		p.ReadTime == nil && p.Sentiment == nil && p.Keywords == nil
}

type ArticleForExtraction struct {
	ID    int64
	URL   string
	Title string
}

type ArticleRepository struct {
	db  *DB
	now func() time.Time
}

func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db, now: time.Now}
}

// CreateArticle stores a new article keyed on its normalized URL. When an
// article with the same key exists it is returned unchanged with created false.
func (r *ArticleRepository) CreateArticle(ctx context.Context, a news.Article) (*news.Article, bool, error) {
	a.URL = news.NormalizeURL(a.URL)
	if a.URL == "" {
		return nil, false, fmt.Errorf("failed to create article: empty url")
	}

	keywords, err := encodeKeywords(a.Keywords)
	if err != nil {
		return nil, false, err
	}
	if a.ReadTime < 1 {
		a.ReadTime = 1
	}
	isTopFive, isCurated := a.Curation.Flags()

	res, err := r.db.builder().
		Insert("articles").
		Columns("title", "summary", "content", "source", "url", "image_url", "category",
			"read_time", "views", "likes", "sentiment", "keywords", "is_top_five", "is_curated",
			"published_at", "created_at").
		Values(a.Title, a.Summary, a.Content, a.Source, a.URL, a.ImageURL, a.Category,
			a.ReadTime, a.Views, a.Likes, news.ClampSentiment(a.Sentiment), keywords, isTopFive, isCurated,
			a.PublishedAt.Unix(), r.now().Unix()).
		Suffix("ON CONFLICT(url) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create article: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	stored, err := r.GetArticleByURL(ctx, a.URL)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		return nil, false, fmt.Errorf("failed to create article: row for %s not found after insert", a.URL)
	}
	return stored, affected > 0, nil
}

func (r *ArticleRepository) GetArticles(ctx context.Context) ([]news.Article, error) {
	return r.query(ctx, r.selectArticles())
}

// GetArticlesByFlag returns the articles currently in the given curation state.
func (r *ArticleRepository) GetArticlesByFlag(ctx context.Context, state news.CurationState) ([]news.Article, error) {
	isTopFive, isCurated := state.Flags()
	return r.query(ctx, r.selectArticles().Where(sq.Eq{"is_top_five": isTopFive, "is_curated": isCurated}))
}

func (r *ArticleRepository) GetArticlesByIDs(ctx context.Context, ids []int64) ([]news.Article, error) {
	if len(ids) == 0 {
		return []news.Article{}, nil
	}
	articles, err := r.query(ctx, r.selectArticles().Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]news.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	ordered := make([]news.Article, 0, len(articles))
	for _, id := range ids {
		if a, ok := byID[id]; ok {
			ordered = append(ordered, a)
		}
	}
	return ordered, nil
}

func (r *ArticleRepository) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	return r.queryOne(ctx, r.selectArticles().Where(sq.Eq{"id": id}))
}

func (r *ArticleRepository) GetArticleByURL(ctx context.Context, url string) (*news.Article, error) {
	return r.queryOne(ctx, r.selectArticles().Where(sq.Eq{"url": news.NormalizeURL(url)}))
}

func (r *ArticleRepository) GetArticleCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.builder().Select("COUNT(*)").From("articles").QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get article count: %w", err)
	}
	return count, nil
}

// UpdateArticle applies patch to the article and returns the updated row,
// or nil when no article has the id.
func (r *ArticleRepository) UpdateArticle(ctx context.Context, id int64, patch ArticlePatch) (*news.Article, error) {
	if patch.empty() {
		return r.GetArticle(ctx, id)
	}

	update := r.db.builder().Update("articles").Where(sq.Eq{"id": id})
	if patch.Title != nil {
		update = update.Set("title", *patch.Title)
	}
	if patch.Summary != nil {
		update = update.Set("summary", *patch.Summary)
	}
	if patch.Content != nil {
		update = update.Set("content", *patch.Content)
	}
	if patch.ImageURL != nil {
		update = update.Set("image_url", *patch.ImageURL)
	}
	if patch.ReadTime != nil {
		update = update.Set("read_time", max(1, *patch.ReadTime))
	}
	if patch.Sentiment != nil {
		update = update.Set("sentiment", news.ClampSentiment(*patch.Sentiment))
	}
	if patch.Keywords != nil {
		keywords, err := encodeKeywords(patch.Keywords)
		if err != nil {
			return nil, err
		}
		update = update.Set("keywords", keywords)
	}

	if _, err := update.ExecContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return r.GetArticle(ctx, id)
}

func (r *ArticleRepository) IncrementViews(ctx context.Context, id int64) (*news.Article, error) {
	return r.increment(ctx, id, "views")
}

func (r *ArticleRepository) IncrementLikes(ctx context.Context, id int64) (*news.Article, error) {
	return r.increment(ctx, id, "likes")
}

func (r *ArticleRepository) increment(ctx context.Context, id int64, column string) (*news.Article, error) {
	res, err := r.db.builder().
		Update("articles").
		Set(column, sq.Expr(column+" + 1")).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.GetArticle(ctx, id)
}

// SetCurationFlagsBulk replaces every article's curation flags in one
// transaction: the given ids get their flag, all others are cleared. An id
// present in both lists rejects the whole update.
func (r *ArticleRepository) SetCurationFlagsBulk(ctx context.Context, topFive, curated []int64) error {
	if err := news.CheckDisjoint(topFive, curated); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(tx)

	if _, err := builder.Update("articles").
		Set("is_top_five", false).
		Set("is_curated", false).
		Where(sq.Or{sq.Eq{"is_top_five": true}, sq.Eq{"is_curated": true}}).
		ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear curation flags: %w", err)
	}

	if len(topFive) > 0 {
		if _, err := builder.Update("articles").
			Set("is_top_five", true).
			Where(sq.Eq{"id": topFive}).
			ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to set top five flags: %w", err)
		}
	}

	if len(curated) > 0 {
		if _, err := builder.Update("articles").
			Set("is_curated", true).
			Where(sq.Eq{"id": curated}).
			ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to set curated flags: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit curation flags: %w", err)
	}
	return nil
}

// GetArticlesForExtraction returns up to limit articles from source whose
// content has not been extracted yet, newest first.
func (r *ArticleRepository) GetArticlesForExtraction(ctx context.Context, source string, limit int) ([]ArticleForExtraction, error) {
	rows, err := r.db.builder().
		Select("id", "url", "title").
		From("articles").
		Where(sq.Eq{"source": source, "extraction_status": ExtractionPending}).
		OrderBy("published_at DESC").
		Limit(uint64(limit)).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for extraction: %w", err)
	}
	defer rows.Close()

	var articles []ArticleForExtraction
	for rows.Next() {
		var a ArticleForExtraction
		if err := rows.Scan(&a.ID, &a.URL, &a.Title); err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepository) UpdateExtractionStatus(ctx context.Context, id int64, status, errorMsg string) error {
	_, err := r.db.builder().
		Update("articles").
		Set("extraction_status", status).
		Set("extraction_error", errorMsg).
		Set("extracted_at", r.now().Unix()).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update extraction status: %w", err)
	}
	return nil
}

// UpdateExtractedContent stores extracted content with its read time and
// marks the extraction successful.
func (r *ArticleRepository) UpdateExtractedContent(ctx context.Context, id int64, content string, readTime int) error {
	_, err := r.db.builder().
		Update("articles").
		Set("content", content).
		Set("read_time", max(1, readTime)).
		Set("extraction_status", ExtractionSuccess).
		Set("extraction_error", "").
		Set("extracted_at", r.now().Unix()).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}
	return nil
}

func (r *ArticleRepository) selectArticles() sq.SelectBuilder {
	return r.db.builder().
		Select(articleColumns...).
		From("articles").
		OrderBy("published_at DESC", "id DESC")
}

func (r *ArticleRepository) query(ctx context.Context, q sq.SelectBuilder) ([]news.Article, error) {
	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	articles := []news.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepository) queryOne(ctx context.Context, q sq.SelectBuilder) (*news.Article, error) {
	a, err := scanArticle(q.Limit(1).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (news.Article, error) {
	var (
		a                    news.Article
		keywords             string
		isTopFive, isCurated bool
		publishedAt          int64
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Summary, &a.Content, &a.Source, &a.URL, &a.ImageURL, &a.Category,
		&a.ReadTime, &a.Views, &a.Likes, &a.Sentiment, &keywords, &isTopFive, &isCurated,
		&publishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return a, err
	}
	if err != nil {
		return a, fmt.Errorf("failed to scan article row: %w", err)
	}

	if err := json.Unmarshal([]byte(keywords), &a.Keywords); err != nil {
		return a, fmt.Errorf("failed to decode keywords of article %d: %w", a.ID, err)
	}
	a.Curation = news.StateFromFlags(isTopFive, isCurated)
	a.PublishedAt = time.Unix(publishedAt, 0).UTC()
	return a, nil
}

func encodeKeywords(keywords []string) (string, error) {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}
	return string(b), nil
}
