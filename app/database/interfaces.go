package database

import (
	"context"
	"time"

	"github.com/tehpwnage/posthub/app/post"
)

// PostRepository is the feed store gateway: idempotent batch upserts on the
// write path, reverse-chronological filtered queries on the read path.
type PostRepository interface {
	// UpsertBatch writes all posts atomically. Each write merges into the
	// stored document: publishedAt is never overwritten, updatedAt never
	// decreases, everything else takes the new value.
	UpsertBatch(ctx context.Context, posts []post.Post) error

	// QueryBefore returns up to limit posts with publishedAt strictly
	// before the given time, newest first, restricted to the given source
	// tags (all tags when empty). Corrupt rows are skipped, never surfaced
	// as an error.
	QueryBefore(ctx context.Context, before time.Time, limit int, tags []string) ([]post.Post, error)

	GetPostCount(ctx context.Context) (int, error)
}
