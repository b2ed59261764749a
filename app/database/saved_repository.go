package database

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

type SavedRepository struct {
	db       *DB
	articles *ArticleRepository
}

func NewSavedRepository(db *DB) *SavedRepository {
	return &SavedRepository{db: db, articles: NewArticleRepository(db)}
}

// SaveArticle bookmarks an article for the user. Saving twice is a no-op.
func (r *SavedRepository) SaveArticle(ctx context.Context, userID string, articleID int64) error {
	_, err := r.db.builder().
		Insert("saved_articles").
		Columns("user_id", "article_id", "saved_at").
		Values(userID, articleID, time.Now().Unix()).
		Suffix("ON CONFLICT(user_id, article_id) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

func (r *SavedRepository) UnsaveArticle(ctx context.Context, userID string, articleID int64) (bool, error) {
	res, err := r.db.builder().
		Delete("saved_articles").
		Where(sq.Eq{"user_id": userID, "article_id": articleID}).
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to unsave article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// GetSavedArticles returns the user's saved articles, most recently saved first.
func (r *SavedRepository) GetSavedArticles(ctx context.Context, userID string) ([]news.Article, error) {
	rows, err := r.db.builder().
		Select("article_id").
		From("saved_articles").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("saved_at DESC", "rowid DESC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved articles: %w", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan saved article row: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved article rows: %w", err)
	}

	return r.articles.GetArticlesByIDs(ctx, ids)
}
