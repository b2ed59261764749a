package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader = "X-User-ID"
	userIDKey    = "userID"
)

// NewServer creates the HTTP engine with all routes configured. Admin
// routes are only mounted when apiAccessKey is set.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key, "+userIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.Use(userMiddleware())

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/feeds/:name", handler.GetFeed)
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/articles", handler.GetArticles)
		api.GET("/articles/curated", handler.GetCuratedArticles)
		api.GET("/articles/top-five", handler.GetTopFiveArticles)
		api.GET("/articles/search", handler.SearchArticles)
		api.GET("/articles/:id", handler.GetArticle)
		api.POST("/articles/:id/view", handler.ViewArticle)
		api.POST("/articles/:id/like", handler.LikeArticle)

		api.GET("/keywords", handler.GetKeywords)
		api.POST("/keywords", handler.CreateKeyword)
		api.DELETE("/keywords/:id", handler.DeleteKeyword)

		api.GET("/patterns", handler.GetPatterns)
		api.GET("/preferences", handler.GetPreferences)

		api.GET("/podcasts", handler.GetPodcasts)
		api.GET("/podcasts/:id", handler.GetPodcast)
		api.POST("/podcasts", handler.CreatePodcast)
		api.POST("/podcasts/:id/regenerate", handler.RegeneratePodcast)
	}

	user := api.Group("")
	user.Use(requireUser())
	{
		user.GET("/saved", handler.GetSavedArticles)
		user.POST("/saved", handler.SaveArticle)
		user.DELETE("/saved/:id", handler.UnsaveArticle)

		user.POST("/patterns", handler.CreatePattern)
		user.DELETE("/patterns/:id", handler.DeletePattern)

		user.PUT("/preferences", handler.UpdatePreferences)
	}

	if apiAccessKey != "" {
		admin := api.Group("/admin")
		admin.Use(authMiddleware(apiAccessKey))
		{
			admin.POST("/refresh", handler.APIRefresh)
			admin.POST("/curate", handler.APICurate)
		}
		slog.Debug("Admin API endpoints enabled with authentication")
	} else {
		slog.Debug("Admin API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"articles":   "/api/articles",
			"curated":    "/api/articles/curated",
			"top_five":   "/api/articles/top-five",
			"search":     "/api/articles/search?q=<query>",
			"podcasts":   "/api/podcasts",
			"feed":       "/feeds/<curated|top-five>",
			"health":     "/health",
			"user_scope": userIDHeader + " header",
		}

		if apiAccessKey != "" {
			endpoints["refresh"] = "/api/admin/refresh?force=<bool> (POST, requires X-API-Key header)"
			endpoints["curate"] = "/api/admin/curate (POST, requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "BrightBuzz",
			"version":     handler.Version,
			"description": "Positive news aggregation with curation and personalized filtering",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"admin_enabled": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// userMiddleware reads the optional caller identity. Verifying it is the
// job of whatever fronts this service.
func userMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(userIDHeader)); userID != "" {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "User required",
				"message": "Provide the user id in the " + userIDHeader + " header",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
