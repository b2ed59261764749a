package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

var ErrEmptyKeyword = errors.New("keyword must not be empty")

type KeywordRepository struct {
	db *DB
}

func NewKeywordRepository(db *DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// CreateKeyword stores a lowercased, trimmed keyword. Adding a keyword that
// already exists for the type returns the stored one.
func (r *KeywordRepository) CreateKeyword(ctx context.Context, keyword string, kind news.KeywordType) (*news.Keyword, error) {
	if _, err := news.ParseKeywordType(string(kind)); err != nil {
		return nil, err
	}
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	_, err := r.db.builder().
		Insert("keywords").
		Columns("keyword", "type", "created_at").
		Values(keyword, string(kind), time.Now().Unix()).
		Suffix("ON CONFLICT(keyword, type) DO NOTHING").
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}

	k := news.Keyword{Keyword: keyword, Type: kind}
	err = r.db.builder().
		Select("id").
		From("keywords").
		Where(sq.Eq{"keyword": keyword, "type": string(kind)}).
		QueryRowContext(ctx).
		Scan(&k.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read created keyword: %w", err)
	}
	return &k, nil
}

func (r *KeywordRepository) GetKeywords(ctx context.Context) ([]news.Keyword, error) {
	return r.query(ctx, nil)
}

func (r *KeywordRepository) GetKeywordsByType(ctx context.Context, kind news.KeywordType) ([]news.Keyword, error) {
	return r.query(ctx, sq.Eq{"type": string(kind)})
}

// DeleteKeyword removes a keyword and reports whether it existed.
func (r *KeywordRepository) DeleteKeyword(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.builder().Delete("keywords").Where(sq.Eq{"id": id}).ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete keyword: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *KeywordRepository) query(ctx context.Context, where sq.Sqlizer) ([]news.Keyword, error) {
	q := r.db.builder().Select("id", "keyword", "type").From("keywords").OrderBy("id")
	if where != nil {
		q = q.Where(where)
	}

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get keywords: %w", err)
	}
	defer rows.Close()

	keywords := []news.Keyword{}
	for rows.Next() {
		var k news.Keyword
		var kind string
		if err := rows.Scan(&k.ID, &k.Keyword, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan keyword row: %w", err)
		}
		k.Type = news.KeywordType(kind)
		keywords = append(keywords, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating keyword rows: %w", err)
	}
	return keywords, nil
}
