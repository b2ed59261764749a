package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bright-buzz/brightbuzz-app/app/api"
	"github.com/bright-buzz/brightbuzz-app/app/cfg"
	"github.com/bright-buzz/brightbuzz-app/app/database"
	"github.com/bright-buzz/brightbuzz-app/app/enrich"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/ingest"
	"github.com/bright-buzz/brightbuzz-app/app/pipeline"
	"github.com/bright-buzz/brightbuzz-app/app/podcast"
	"github.com/bright-buzz/brightbuzz-app/app/search"
	"github.com/bright-buzz/brightbuzz-app/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting BrightBuzz", "version", appCfg.Version, "port", appCfg.Port)

	db, err := database.Open(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load feed configurations", "dir", appCfg.FeedsDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Feed configurations loaded", "count", configCache.GetConfigCount())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := database.NewRepositories(db)
	httpClient := &http.Client{Timeout: 2 * time.Minute}
	fetcher := feed.NewFetcher(httpClient, appCfg.UserAgent)

	index, err := search.NewIndex()
	if err != nil {
		slog.Error("Failed to create search index", "error", err)
		os.Exit(1)
	}
	defer index.Close()
	if err := rebuildIndex(ctx, repos.Articles, index); err != nil {
		slog.Warn("Failed to rebuild search index", "error", err)
	}

	var (
		enricher enrich.Enricher
		writer   podcast.ScriptWriter
	)
	if appCfg.AIEnabled() {
		gemini, err := enrich.NewGemini(ctx, appCfg.GeminiAPIKey, appCfg.GeminiModel)
		if err != nil {
			slog.Warn("AI enrichment disabled", "error", err)
		} else {
			defer gemini.Close()
			enricher = enrich.NewFallback(gemini)
			writer = gemini
			slog.Info("AI enrichment enabled", "model", appCfg.GeminiModel)
		}
	}

	var synthesizer podcast.Synthesizer
	if appCfg.TTSEnabled() {
		synthesizer = podcast.NewHTTPSynthesizer(httpClient, appCfg.TTSURL, appCfg.TTSAPIKey, appCfg.TTSVoice)
	}

	opts := ingest.Options{
		RefreshInterval: appCfg.RefreshInterval,
		MinNewArticles:  appCfg.MinNewArticles,
		AIEnrichLimit:   appCfg.AIEnrichLimit,
		SupplementQuery: appCfg.NewsAPIQuery,
		Indexer:         index,
	}
	if appCfg.NewsAPIEnabled() {
		opts.SupplementSource = feed.NewNewsAPIClient(httpClient, appCfg.NewsAPIURL, appCfg.NewsAPIKey, appCfg.UserAgent)
	}

	curator := pipeline.NewCurator(repos.CurationView(), pipeline.NewSelector(appCfg.CurationWindow()))
	personalizer := pipeline.NewPersonalizer(repos.FilterView(), appCfg.FreshnessWindow())
	orchestrator := ingest.NewOrchestrator(
		feed.NewRSSSource(configCache, fetcher, appCfg.WorkerCount),
		enricher,
		repos.Articles,
		curator,
		opts,
	)

	scheduler := tasks.NewScheduler(tasks.Dependencies{
		News:             orchestrator,
		Curator:          curator,
		Configs:          configCache,
		Fetcher:          fetcher,
		ContentExtractor: feed.NewContentExtractor(),
		Articles:         repos.Articles,
	}, time.Duration(appCfg.SchedulerInterval)*time.Second, appCfg.WorkerCount)

	handler := api.NewHandler(api.Dependencies{
		Articles:     repos.Articles,
		Keywords:     repos.Keywords,
		Patterns:     repos.Patterns,
		Preferences:  repos.Preferences,
		PodcastStore: repos.Podcasts,
		Saved:        repos.Saved,
		Personalizer: personalizer,
		Searcher:     index,
		Podcasts:     podcast.NewGenerator(repos.Articles, personalizer, repos.Podcasts, writer, synthesizer),
		News:         orchestrator,
		Curator:      curator,
		Scheduler:    scheduler,
		Generator:    feed.NewGenerator(appCfg.BaseUrl, appCfg.Version),
		Version:      appCfg.Version,
	})

	server := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           api.NewServer(handler, appCfg.APIAccessKey),
		ReadHeaderTimeout: 10 * time.Second,
	}

	scheduler.Start()
	slog.Info("Scheduler started", "workers", appCfg.WorkerCount, "interval", time.Duration(appCfg.SchedulerInterval)*time.Second)

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	scheduler.Stop()

	slog.Info("Stopped")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// rebuildIndex loads every stored article into the in-memory search index.
func rebuildIndex(ctx context.Context, articles database.ArticleStore, index *search.Index) error {
	all, err := articles.GetArticles(ctx)
	if err != nil {
		return err
	}
	if err := index.Index(ctx, all); err != nil {
		return err
	}
	slog.Info("Search index rebuilt", "articles", len(all))
	return nil
}
