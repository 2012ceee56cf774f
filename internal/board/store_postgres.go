package board

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS post (
    id         UUID PRIMARY KEY,
    std_no     VARCHAR(10) NOT NULL,
    content    VARCHAR(500) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    is_admin   BOOLEAN NOT NULL DEFAULT false,
    likes      INTEGER NOT NULL DEFAULT 0 CHECK (likes <= 10000)
);
CREATE INDEX IF NOT EXISTS post_created_at_id_idx ON post (created_at DESC, id DESC);
`

// PostgresStore persists posts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies the schema. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate board schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, post *Post) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO post (id, std_no, content, is_admin)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		post.ID, post.StdNo, post.Content, post.IsAdmin,
	).Scan(&post.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// Like increments at the database level so concurrent likes never lose
// updates: UPDATE post SET likes = likes + 1 WHERE id = $1 AND likes < cap.
func (s *PostgresStore) Like(ctx context.Context, id string) (int, error) {
	var likes int
	err := s.db.QueryRowContext(ctx,
		`UPDATE post SET likes = likes + 1 WHERE id = $1 AND likes < $2 RETURNING likes`,
		id, MaxLikes,
	).Scan(&likes)
	if err == nil {
		return likes, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("like post: %w", err)
	}

	// No row updated: either the post is missing or the cap was hit.
	var exists bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM post WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("like post: %w", err)
	}
	if !exists {
		return 0, ErrNotFound
	}
	return 0, ErrLikesCapped
}

func (s *PostgresStore) List(ctx context.Context, after *Page, limit int) ([]Post, bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if after != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, std_no, content, created_at, is_admin, likes
			 FROM post
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			after.CreatedAt, after.ID, limit+1)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, std_no, content, created_at, is_admin, likes
			 FROM post
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1)
	}
	if err != nil {
		return nil, false, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.StdNo, &p.Content, &p.CreatedAt, &p.IsAdmin, &p.Likes); err != nil {
			return nil, false, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("list posts: %w", err)
	}

	hasNext := len(posts) > limit
	if hasNext {
		posts = posts[:limit]
	}
	return posts, hasNext, nil
}
