package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tehpwnage/posthub/app/database"
	"github.com/tehpwnage/posthub/app/post"
	"github.com/tehpwnage/posthub/app/sources"
)

// Adapter interfaces are declared here, on the consumer side, so tests can
// substitute fakes for the network-backed implementations.

type YoutubeSource interface {
	FetchRecent(ctx context.Context, limit int) ([]sources.Video, error)
}

type ForumSource interface {
	FetchRecent(ctx context.Context, limit int) ([]sources.Thread, error)
}

type PatreonSource interface {
	FetchRecent(ctx context.Context, limit int) ([]sources.CampaignPost, error)
}

// Poller triggers all source adapters, normalizes their output and performs
// exactly one batch upsert. A nil adapter is treated as a disabled source.
type Poller struct {
	youtube    YoutubeSource
	forum      ForumSource
	patreon    PatreonSource
	repo       database.PostRepository
	fetchLimit int
}

func New(youtube YoutubeSource, forum ForumSource, patreon PatreonSource,
	repo database.PostRepository, fetchLimit int) *Poller {
	return &Poller{
		youtube:    youtube,
		forum:      forum,
		patreon:    patreon,
		repo:       repo,
		fetchLimit: fetchLimit,
	}
}

// Run fetches from all sources concurrently. Each adapter writes only its
// own result slot; results are combined after every fetch has returned.
// A failed source is logged and excluded; only a store-write failure makes
// the whole poll fail.
func (p *Poller) Run(ctx context.Context) error {
	var (
		wg     sync.WaitGroup
		videos []sources.Video
		ytErr  error

		threads  []sources.Thread
		forumErr error

		campaignPosts []sources.CampaignPost
		patreonErr    error
	)

	if p.youtube != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			videos, ytErr = p.youtube.FetchRecent(ctx, p.fetchLimit)
		}()
	}
	if p.forum != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			threads, forumErr = p.forum.FetchRecent(ctx, p.fetchLimit)
		}()
	}
	if p.patreon != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			campaignPosts, patreonErr = p.patreon.FetchRecent(ctx, p.fetchLimit)
		}()
	}
	wg.Wait()

	if ytErr != nil {
		slog.Error("Youtube poll failed", "error", ytErr)
	}
	if forumErr != nil {
		slog.Error("Forum poll failed", "error", forumErr)
	}
	if patreonErr != nil {
		slog.Error("Patreon poll failed", "error", patreonErr)
	}

	posts := make([]post.Post, 0, len(videos)+len(threads)+len(campaignPosts))
	for _, v := range videos {
		posts = append(posts, post.FromYoutube(v))
	}
	for _, t := range threads {
		posts = append(posts, post.FromForum(t))
	}
	for _, cp := range campaignPosts {
		posts = append(posts, post.FromPatreon(cp))
	}

	if err := p.repo.UpsertBatch(ctx, posts); err != nil {
		return fmt.Errorf("failed to store polled posts: %w", err)
	}

	slog.Info("Poll completed",
		"videos", len(videos),
		"threads", len(threads),
		"campaign_posts", len(campaignPosts),
		"stored", len(posts))

	return nil
}
