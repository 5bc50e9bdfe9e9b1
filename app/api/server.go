package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, internalAPIKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
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
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-Client-Platform")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, internalAPIKey)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, internalAPIKey string) {
	// Read-facing endpoints
	r.GET("/posts", handler.GetPosts)
	r.GET("/posts/feed", handler.GetPosts)
	r.GET("/image_proxy", handler.ImageProxy)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	// Internal endpoints (conditionally enabled with authentication)
	if internalAPIKey != "" {
		internal := r.Group("/internal")
		internal.Use(bearerAuthMiddleware(internalAPIKey))
		{
			internal.POST("/poll", handler.TriggerPoll)
		}
		slog.Info("Internal endpoints enabled with authentication")
	} else {
		slog.Info("Internal endpoints disabled (INTERNAL_API_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"posts":       "/posts?before=<rfc3339>&limit=<n>&filter=youtube,forum,patreon",
			"feed":        "/posts/feed (Accept: application/atom+xml)",
			"image_proxy": "/image_proxy?url=<encoded>",
			"health":      "/health",
		}

		if internalAPIKey != "" {
			endpoints["poll"] = "/internal/poll (POST, requires bearer token)"
		}

		c.JSON(200, gin.H{
			"service":     "Posthub",
			"description": "Aggregated posts feed from YouTube, forum and Patreon sources",
			"endpoints":   endpoints,
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// bearerAuthMiddleware gates the internal endpoints behind a shared token.
func bearerAuthMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid auth header"})
			return
		}

		if strings.TrimPrefix(header, "Bearer ") != key {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized caller"})
			return
		}

		c.Next()
	}
}
