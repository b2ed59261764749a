package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

type PatternRepository struct {
	db *DB
}

func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{db: db}
}

func (r *PatternRepository) CreateReplacementPattern(ctx context.Context, p news.ReplacementPattern) (*news.ReplacementPattern, error) {
	if strings.TrimSpace(p.FindText) == "" {
		return nil, news.ErrEmptyFindText
	}

	res, err := r.db.builder().
		Insert("replacement_patterns").
		Columns("user_id", "find_text", "replace_text", "case_sensitive", "created_at").
		Values(p.UserID, p.FindText, p.ReplaceText, p.CaseSensitive, time.Now().Unix()).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create replacement pattern: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern id: %w", err)
	}
	p.ID = id
	return &p, nil
}

// GetReplacementPatterns returns the user's patterns in creation order,
// which is the order they are applied in.
func (r *PatternRepository) GetReplacementPatterns(ctx context.Context, userID string) ([]news.ReplacementPattern, error) {
	rows, err := r.db.builder().
		Select("id", "user_id", "find_text", "replace_text", "case_sensitive").
		From("replacement_patterns").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get replacement patterns: %w", err)
	}
	defer rows.Close()

	patterns := []news.ReplacementPattern{}
	for rows.Next() {
		var p news.ReplacementPattern
		if err := rows.Scan(&p.ID, &p.UserID, &p.FindText, &p.ReplaceText, &p.CaseSensitive); err != nil {
			return nil, fmt.Errorf("failed to scan pattern row: %w", err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pattern rows: %w", err)
	}
	return patterns, nil
}

// DeleteReplacementPattern removes one of the user's patterns and reports
// whether it existed.
func (r *PatternRepository) DeleteReplacementPattern(ctx context.Context, userID string, id int64) (bool, error) {
	res, err := r.db.builder().
		Delete("replacement_patterns").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete replacement pattern: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
