package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

type PreferencesRepository struct {
	db *DB
}

func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetUserPreferences returns the stored preferences of the user, or nil when
// none were saved.
func (r *PreferencesRepository) GetUserPreferences(ctx context.Context, userID string) (*news.UserPreferences, error) {
	var p news.UserPreferences
	err := r.db.builder().
		Select("id", "user_id", "sentiment_threshold", "real_time_filtering").
		From("user_preferences").
		Where(sq.Eq{"user_id": userID}).
		QueryRowContext(ctx).
		Scan(&p.ID, &p.UserID, &p.SentimentThreshold, &p.RealTimeFiltering)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}
	return &p, nil
}

// UpsertUserPreferences creates or replaces the preferences of p.UserID.
func (r *PreferencesRepository) UpsertUserPreferences(ctx context.Context, p news.UserPreferences) (*news.UserPreferences, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("failed to upsert user preferences: empty user id")
	}

	_, err := r.db.builder().
		Insert("user_preferences").
		Columns("user_id", "sentiment_threshold", "real_time_filtering", "updated_at").
		Values(p.UserID, news.ClampSentiment(p.SentimentThreshold), p.RealTimeFiltering, time.Now().Unix()).
		Suffix(`ON CONFLICT(user_id) DO UPDATE SET
			sentiment_threshold = excluded.sentiment_threshold,
			real_time_filtering = excluded.real_time_filtering,
			updated_at = excluded.updated_at`).
		ExecContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user preferences: %w", err)
	}
	return r.GetUserPreferences(ctx, p.UserID)
}
