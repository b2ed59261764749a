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

var podcastColumns = []string{
	"id", "title", "description", "audio_url", "duration", "transcript", "article_ids",
	"created_at", "is_processing",
}

type PodcastRepository struct {
	db *DB
}

func NewPodcastRepository(db *DB) *PodcastRepository {
	return &PodcastRepository{db: db}
}

func (r *PodcastRepository) CreatePodcast(ctx context.Context, p news.Podcast) error {
	ids, err := encodeIDs(p.ArticleIDs)
	if err != nil {
		return err
	}

	_, err = r.db.builder().
		Insert("podcasts").
		Columns(podcastColumns...).
		Values(p.ID, p.Title, p.Description, p.AudioURL, p.Duration, p.Transcript, ids,
			p.CreatedAt.Unix(), p.IsProcessing).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create podcast: %w", err)
	}
	return nil
}

// UpdatePodcast overwrites every mutable field of the podcast.
func (r *PodcastRepository) UpdatePodcast(ctx context.Context, p news.Podcast) error {
	ids, err := encodeIDs(p.ArticleIDs)
	if err != nil {
		return err
	}

	_, err = r.db.builder().
		Update("podcasts").
		SetMap(map[string]any{
			"title":         p.Title,
			"description":   p.Description,
			"audio_url":     p.AudioURL,
			"duration":      p.Duration,
			"transcript":    p.Transcript,
			"article_ids":   ids,
			"is_processing": p.IsProcessing,
		}).
		Where(sq.Eq{"id": p.ID}).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update podcast: %w", err)
	}
	return nil
}

func (r *PodcastRepository) GetPodcast(ctx context.Context, id string) (*news.Podcast, error) {
	p, err := scanPodcast(r.selectPodcasts().Where(sq.Eq{"id": id}).QueryRowContext(ctx))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPodcasts returns podcasts newest first.
func (r *PodcastRepository) GetPodcasts(ctx context.Context) ([]news.Podcast, error) {
	rows, err := r.selectPodcasts().QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get podcasts: %w", err)
	}
	defer rows.Close()

	podcasts := []news.Podcast{}
	for rows.Next() {
		p, err := scanPodcast(rows)
		if err != nil {
			return nil, err
		}
		podcasts = append(podcasts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating podcast rows: %w", err)
	}
	return podcasts, nil
}

func (r *PodcastRepository) selectPodcasts() sq.SelectBuilder {
	return r.db.builder().Select(podcastColumns...).From("podcasts").OrderBy("created_at DESC", "rowid DESC")
}

func scanPodcast(row rowScanner) (news.Podcast, error) {
	var (
		p         news.Podcast
		ids       string
		createdAt int64
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.AudioURL, &p.Duration, &p.Transcript, &ids,
		&createdAt, &p.IsProcessing)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("failed to scan podcast row: %w", err)
	}

	if err := json.Unmarshal([]byte(ids), &p.ArticleIDs); err != nil {
		return p, fmt.Errorf("failed to decode article ids of podcast %s: %w", p.ID, err)
	}
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return p, nil
}

func encodeIDs(ids []int64) (string, error) {
	if ids == nil {
		ids = []int64{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode article ids: %w", err)
	}
	return string(b), nil
}
