package board

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store errors. The service maps these onto domain error codes.
var (
	ErrNotFound    = errors.New("post not found")
	ErrLikesCapped = errors.New("like limit reached")
	ErrInvalidPage = errors.New("invalid cursor")
)

// Page addresses a position in the newest-first listing: strictly before
// (CreatedAt, ID) in descending order.
type Page struct {
	CreatedAt time.Time
	ID        string
}

// Store persists posts. Implementations: postgres for production, memory
// for tests.
type Store interface {
	Create(ctx context.Context, post *Post) error
	// Like increments the counter atomically and returns the new value.
	// ErrNotFound if the post does not exist, ErrLikesCapped at MaxLikes.
	Like(ctx context.Context, id string) (int, error)
	// List returns up to limit posts strictly after the page position,
	// newest first, plus whether more remain.
	List(ctx context.Context, after *Page, limit int) ([]Post, bool, error)
}

// EncodeCursor serializes a page position for the client.
func EncodeCursor(p Page) string {
	raw := p.CreatedAt.UTC().Format(time.RFC3339Nano) + "," + p.ID
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a client-supplied cursor.
func DecodeCursor(cursor string) (*Page, error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	ts, id, ok := strings.Cut(string(raw), ",")
	if !ok || id == "" {
		return nil, ErrInvalidPage
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	return &Page{CreatedAt: createdAt, ID: id}, nil
}
