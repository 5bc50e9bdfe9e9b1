package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tehpwnage/posthub/app/post"
)

var _ PostRepository = (*SqlitePostRepository)(nil)

// SqlitePostRepository persists one row per Post keyed by its short id.
type SqlitePostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *SqlitePostRepository {
	return &SqlitePostRepository{db: db}
}

// UpsertBatch writes the whole batch in one transaction, so either every
// post commits or none does. publishedAt is immutable once set and
// updatedAt only ever moves forward.
func (r *SqlitePostRepository) UpsertBatch(ctx context.Context, posts []post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (
			id, source_tag, url, published_at, updated_at,
			author_name, author_avatar_url, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source_tag = excluded.source_tag,
			url = excluded.url,
			updated_at = MAX(posts.updated_at, excluded.updated_at),
			author_name = excluded.author_name,
			author_avatar_url = excluded.author_avatar_url,
			data = excluded.data
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		data, err := post.MarshalData(p.Data)
		if err != nil {
			return fmt.Errorf("failed to encode post %s: %w", p.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			p.ID, p.Data.Tag(), p.URL,
			p.PublishedAt.UTC().UnixMilli(), p.UpdatedAt.UTC().UnixMilli(),
			p.Author.Name, p.Author.AvatarURL, string(data))
		if err != nil {
			return fmt.Errorf("failed to upsert post %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	return nil
}

// QueryBefore returns up to limit posts published strictly before the given
// time, newest first. Rows that fail decoding or validation are logged and
// dropped so one corrupt document can never fail the whole query.
func (r *SqlitePostRepository) QueryBefore(ctx context.Context, before time.Time, limit int, tags []string) ([]post.Post, error) {
	query := `
		SELECT id, url, published_at, updated_at, author_name, author_avatar_url, data
		FROM posts
		WHERE published_at < ?`
	args := []interface{}{before.UTC().UnixMilli()}

	if len(tags) > 0 {
		query += fmt.Sprintf(" AND source_tag IN (%s)", placeholders(len(tags)))
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	query += " ORDER BY published_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]post.Post, 0, limit)
	for rows.Next() {
		var (
			p                      post.Post
			publishedMs, updatedMs int64
			rawData                string
		)
		err := rows.Scan(&p.ID, &p.URL, &publishedMs, &updatedMs,
			&p.Author.Name, &p.Author.AvatarURL, &rawData)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}

		p.PublishedAt = time.UnixMilli(publishedMs).UTC()
		p.UpdatedAt = time.UnixMilli(updatedMs).UTC()

		p.Data, err = post.UnmarshalData([]byte(rawData))
		if err != nil {
			slog.Warn("Skipping corrupt post document", "id", p.ID, "error", err)
			continue
		}

		if errs := post.Validate(p); len(errs) > 0 {
			slog.Warn("Skipping invalid post document", "id", p.ID, "errors", errs)
			continue
		}

		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// GetPostCount returns the total number of stored posts.
func (r *SqlitePostRepository) GetPostCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
