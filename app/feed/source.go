package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bright-buzz/brightbuzz-app/app/news"
)

// FetchResult describes one ingestion pass over the configured feeds.
type FetchResult struct {
	Candidates  []news.Candidate
	FeedsOK     int
	FeedsFailed int
	Filtered    int
}

type documentFetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error)
}

// RSSSource fetches every enabled feed concurrently. Each feed has its own
// timeout; a feed that fails is logged and skipped.
type RSSSource struct {
	configs  *ConfigCache
	fetcher  documentFetcher
	parser   *Parser
	filterer *Filterer
	workers  int
	now      func() time.Time
}

func NewRSSSource(configs *ConfigCache, fetcher documentFetcher, workers int) *RSSSource {
	if workers < 1 {
		workers = 1
	}
	return &RSSSource{
		configs:  configs,
		fetcher:  fetcher,
		parser:   NewParser(),
		filterer: NewFilterer(),
		workers:  workers,
		now:      time.Now,
	}
}

func (s *RSSSource) FetchCandidates(ctx context.Context) (FetchResult, error) {
	feeds := s.configs.GetEnabledConfigs()
	perFeed := make([][]news.Candidate, len(feeds))

	var (
		mu     sync.Mutex
		result FetchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, feedConfig := range feeds {
		g.Go(func() error {
			candidates, filtered, err := s.fetchFeed(gctx, feedConfig)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Feed fetch failed, skipping", "feed", feedConfig.Name, "error", err)
				result.FeedsFailed++
				return nil
			}
			perFeed[i] = candidates
			result.FeedsOK++
			result.Filtered += filtered
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	for _, candidates := range perFeed {
		result.Candidates = append(result.Candidates, candidates...)
	}
	return result, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, feedConfig *Config) ([]news.Candidate, int, error) {
	timeout := time.Duration(feedConfig.Settings.Timeout) * time.Second

	data, err := s.fetcher.Fetch(ctx, feedConfig.URL, timeout)
	if err != nil {
		return nil, 0, err
	}

	metadata, items, err := s.parser.Run(data)
	if err != nil {
		return nil, 0, err
	}

	if limit := feedConfig.Settings.MaxItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	items, filtered := s.filterer.Run(items, feedConfig)
	candidates := s.parser.Candidates(metadata, items, feedConfig, s.now())

	slog.Debug("Feed fetched", "feed", feedConfig.Name, "items", len(items), "filtered", filtered)
	return candidates, filtered, nil
}
