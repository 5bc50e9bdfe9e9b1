package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tehpwnage/posthub/app/cfg"
	"github.com/tehpwnage/posthub/app/database"
	"github.com/tehpwnage/posthub/app/feed"
	"github.com/tehpwnage/posthub/app/poller"
	"github.com/tehpwnage/posthub/app/post"
)

const (
	defaultLimit = 10
	maxLimit     = 30
)

func NewHandler(postRepo database.PostRepository, p *poller.Poller, httpClient *http.Client) *Handler {
	return &Handler{
		postRepo:   postRepo,
		generator:  feed.NewGenerator(),
		poller:     p,
		httpClient: httpClient,
	}
}

// GetPosts serves one page of the aggregated feed, JSON or Atom depending
// on the Accept header. Bad query parameters never error; they fall back
// to the documented defaults.
func (h *Handler) GetPosts(c *gin.Context) {
	before := parseBefore(c)
	limit := parseLimit(c)
	tags := parseFilter(c)

	// One extra row decides hasMore without a second query.
	posts, err := h.postRepo.QueryBefore(c.Request.Context(), before, limit+1, tags)
	if err != nil {
		slog.Error("Database error", "operation", "query_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query posts"})
		return
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	if c.GetHeader("X-Client-Platform") != "" {
		// Rewrite into a fresh slice; the repository may hand out a slice
		// aliasing its own storage.
		base := serverBaseURL()
		proxied := make([]post.Post, len(posts))
		for i := range posts {
			proxied[i] = feed.ProxyPostImages(posts[i], base)
		}
		posts = proxied
	}

	if strings.Contains(c.GetHeader("Accept"), "application/atom+xml") {
		atom, err := h.generator.Run(posts, time.Now())
		if err != nil {
			slog.Error("Atom generation error", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Type", "application/atom+xml; charset=utf-8")
		c.String(http.StatusOK, atom)
		return
	}

	c.JSON(http.StatusOK, PostsResponse{Posts: posts, HasMore: hasMore})
}

// ImageProxy fetches an external image server-side and streams it back
// from this origin, for clients that cannot make cross-origin requests.
func (h *Handler) ImageProxy(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, target, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid url parameter"})
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		slog.Error("Image proxy fetch failed", "url", target, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch image"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Error("Image proxy upstream error", "url", target, "status", resp.StatusCode)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream returned an error"})
		return
	}

	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Content-Type", resp.Header.Get("Content-Type"))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		slog.Warn("Image proxy stream interrupted", "url", target, "error", err)
	}
}

// TriggerPoll runs one poll cycle synchronously. Per-source failures are
// tolerated inside the poller; only a store failure reaches here.
func (h *Handler) TriggerPoll(c *gin.Context) {
	if err := h.poller.Run(c.Request.Context()); err != nil {
		slog.Error("Poll failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store posts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.postRepo.GetPostCount(c.Request.Context()); err == nil {
		health["posts"] = count
	}

	c.JSON(http.StatusOK, health)
}

func parseBefore(c *gin.Context) time.Time {
	raw := c.Query("before")
	if raw == "" {
		raw = c.Query("from")
	}
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	return time.Now()
}

func parseLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n >= maxLimit {
		return defaultLimit
	}
	return n
}

var filterTags = map[string]string{
	"youtube": post.TagYoutubeVideo,
	"forum":   post.TagForumThread,
	"patreon": post.TagPatreonPost,
}

func parseFilter(c *gin.Context) []string {
	raw := c.Query("filter")
	if raw == "" {
		return nil
	}

	var tags []string
	for _, token := range strings.Split(raw, ",") {
		if tag, ok := filterTags[strings.TrimSpace(token)]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

func serverBaseURL() string {
	if cfg.Get().BaseUrl != "" {
		return cfg.Get().BaseUrl
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}
