package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bright-buzz/brightbuzz-app/app/database"
	"github.com/bright-buzz/brightbuzz-app/app/feed"
	"github.com/bright-buzz/brightbuzz-app/app/news"
	"github.com/bright-buzz/brightbuzz-app/app/podcast"
	"github.com/bright-buzz/brightbuzz-app/app/search"
	"github.com/bright-buzz/brightbuzz-app/app/tasks"
)

// Outgoing RSS channels served under /feeds/.
var channels = map[string]struct {
	channel feed.Channel
	state   news.CurationState
}{
	"top-five": {feed.Channel{Name: "top-five", Title: "BrightBuzz Top Five", Description: "The five brightest stories right now"}, news.CurationTopFive},
	"curated":  {feed.Channel{Name: "curated", Title: "BrightBuzz Curated", Description: "Uplifting stories picked by BrightBuzz"}, news.CurationCurated},
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{Dependencies: deps}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.Articles.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = count
	} else {
		slog.Error("Database error", "operation", "get_article_count", "error", err)
		health["status"] = "degraded"
	}

	if h.News != nil {
		health["pipeline_state"] = h.News.State().String()
		if last := h.News.LastFetchTime(); !last.IsZero() {
			health["last_fetch_at"] = last.In(time.Local).Format(time.RFC3339)
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetFeed(c *gin.Context) {
	name := c.Param("name")
	def, ok := channels[name]
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	articles, err := h.Articles.GetArticlesByFlag(c.Request.Context(), def.state)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles_by_flag", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	rss, err := h.Generator.Run(def.channel, articles)
	if err != nil {
		slog.Error("RSS generation error", "feed", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(articles)))
	c.Header("X-Feed-Name", name)
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetArticles(c *gin.Context) {
	articles, err := h.Articles.GetArticles(c.Request.Context())
	h.respondPersonalized(c, "get_articles", articles, err)
}

func (h *Handler) GetCuratedArticles(c *gin.Context) {
	articles, err := h.Articles.GetArticlesByFlag(c.Request.Context(), news.CurationCurated)
	h.respondPersonalized(c, "get_curated", articles, err)
}

func (h *Handler) GetTopFiveArticles(c *gin.Context) {
	articles, err := h.Articles.GetArticlesByFlag(c.Request.Context(), news.CurationTopFive)
	h.respondPersonalized(c, "get_top_five", articles, err)
}

// respondPersonalized runs articles through the user's filters. Filtering
// everything away is an empty list; only storage failures are errors.
func (h *Handler) respondPersonalized(c *gin.Context, operation string, articles []news.Article, err error) {
	if err != nil {
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	filtered, err := h.Personalizer.Run(c.Request.Context(), articles, currentUser(c))
	if err != nil {
		slog.Error("Personalization error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, filtered)
}

func (h *Handler) SearchArticles(c *gin.Context) {
	if h.Searcher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not available"})
		return
	}

	limit := search.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = n
	}

	ids, err := h.Searcher.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		slog.Error("Search error", "query", c.Query("q"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search error"})
		return
	}

	articles, err := h.Articles.GetArticlesByIDs(c.Request.Context(), ids)
	if err != nil {
		slog.Error("Database error", "operation", "get_articles_by_ids", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, nonNil(articles))
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	article, err := h.Articles.GetArticle(c.Request.Context(), id)
	respondArticle(c, "get_article", article, err)
}

func (h *Handler) ViewArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	article, err := h.Articles.IncrementViews(c.Request.Context(), id)
	respondArticle(c, "increment_views", article, err)
}

func (h *Handler) LikeArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	article, err := h.Articles.IncrementLikes(c.Request.Context(), id)
	respondArticle(c, "increment_likes", article, err)
}

func respondArticle(c *gin.Context, operation string, article *news.Article, err error) {
	if err != nil {
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *Handler) GetSavedArticles(c *gin.Context) {
	articles, err := h.Saved.GetSavedArticles(c.Request.Context(), currentUser(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_saved_articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, nonNil(articles))
}

func (h *Handler) SaveArticle(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	article, err := h.Articles.GetArticle(ctx, req.ArticleID)
	if err != nil {
		slog.Error("Database error", "operation", "get_article", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	if err := h.Saved.SaveArticle(ctx, currentUser(c), req.ArticleID); err != nil {
		slog.Error("Database error", "operation", "save_article", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "articleId": req.ArticleID})
}

func (h *Handler) UnsaveArticle(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	removed, err := h.Saved.UnsaveArticle(c.Request.Context(), currentUser(c), id)
	respondDeleted(c, "unsave_article", "Saved article not found", removed, err)
}

func (h *Handler) GetKeywords(c *gin.Context) {
	var (
		keywords []news.Keyword
		err      error
	)

	if raw := c.Query("type"); raw != "" {
		kind, parseErr := news.ParseKeywordType(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
			return
		}
		keywords, err = h.Keywords.GetKeywordsByType(c.Request.Context(), kind)
	} else {
		keywords, err = h.Keywords.GetKeywords(c.Request.Context())
	}

	if err != nil {
		slog.Error("Database error", "operation", "get_keywords", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, nonNil(keywords))
}

func (h *Handler) CreateKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	keyword, err := h.Keywords.CreateKeyword(c.Request.Context(), req.Keyword, news.KeywordType(req.Type))
	if errors.Is(err, news.ErrInvalidKeywordType) || errors.Is(err, database.ErrEmptyKeyword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "create_keyword", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, keyword)
}

func (h *Handler) DeleteKeyword(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.Keywords.DeleteKeyword(c.Request.Context(), id)
	respondDeleted(c, "delete_keyword", "Keyword not found", deleted, err)
}

func (h *Handler) GetPatterns(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusOK, []news.ReplacementPattern{})
		return
	}

	patterns, err := h.Patterns.GetReplacementPatterns(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_patterns", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, nonNil(patterns))
}

func (h *Handler) CreatePattern(c *gin.Context) {
	var req patternRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	pattern, err := h.Patterns.CreateReplacementPattern(c.Request.Context(), news.ReplacementPattern{
		FindText:      req.FindText,
		ReplaceText:   req.ReplaceText,
		CaseSensitive: req.CaseSensitive,
		UserID:        currentUser(c),
	})
	if errors.Is(err, news.ErrEmptyFindText) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "create_pattern", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusCreated, pattern)
}

func (h *Handler) DeletePattern(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	deleted, err := h.Patterns.DeleteReplacementPattern(c.Request.Context(), currentUser(c), id)
	respondDeleted(c, "delete_pattern", "Pattern not found", deleted, err)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	userID := currentUser(c)
	if userID == "" {
		c.JSON(http.StatusOK, news.DefaultPreferences())
		return
	}

	prefs, err := h.Preferences.GetUserPreferences(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_preferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if prefs == nil {
		defaults := news.DefaultPreferences()
		defaults.UserID = userID
		c.JSON(http.StatusOK, defaults)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := currentUser(c)

	prefs := news.DefaultPreferences()
	stored, err := h.Preferences.GetUserPreferences(ctx, userID)
	if err != nil {
		slog.Error("Database error", "operation", "get_preferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if stored != nil {
		prefs = *stored
	}
	prefs.UserID = userID

	if req.SentimentThreshold != nil {
		if *req.SentimentThreshold < 0 || *req.SentimentThreshold > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sentimentThreshold must be between 0 and 1"})
			return
		}
		prefs.SentimentThreshold = *req.SentimentThreshold
	}
	if req.RealTimeFiltering != nil {
		prefs.RealTimeFiltering = *req.RealTimeFiltering
	}

	updated, err := h.Preferences.UpsertUserPreferences(ctx, prefs)
	if err != nil {
		slog.Error("Database error", "operation", "upsert_preferences", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetPodcasts(c *gin.Context) {
	podcasts, err := h.PodcastStore.GetPodcasts(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "get_podcasts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, nonNil(podcasts))
}

func (h *Handler) GetPodcast(c *gin.Context) {
	p, err := h.PodcastStore.GetPodcast(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("Database error", "operation", "get_podcast", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePodcast(c *gin.Context) {
	if h.Podcasts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Podcast generation is not available"})
		return
	}

	p, err := h.Podcasts.Generate(c.Request.Context(), currentUser(c))
	respondPodcast(c, "generate_podcast", http.StatusCreated, p, err)
}

func (h *Handler) RegeneratePodcast(c *gin.Context) {
	if h.Podcasts == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Podcast generation is not available"})
		return
	}

	p, err := h.Podcasts.Regenerate(c.Request.Context(), c.Param("id"), currentUser(c))
	respondPodcast(c, "regenerate_podcast", http.StatusOK, p, err)
}

func respondPodcast(c *gin.Context, operation string, status int, p *news.Podcast, err error) {
	if errors.Is(err, podcast.ErrNoArticles) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Podcast error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Podcast generation failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}
	c.JSON(status, p)
}

func (h *Handler) APIRefresh(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))
	h.enqueue(c, tasks.NewFetchNewsTask(h.News, force))
}

func (h *Handler) APICurate(c *gin.Context) {
	h.enqueue(c, tasks.NewCurateTask(h.Curator))
}

func (h *Handler) enqueue(c *gin.Context, task tasks.TaskInterface) {
	if err := h.Scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing task", "type", string(task.GetType()), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}

func respondDeleted(c *gin.Context, operation, notFound string, deleted bool, err error) {
	if err != nil {
		slog.Error("Database error", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound})
		return
	}
	c.Status(http.StatusNoContent)
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return id, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
