package board

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	dErrors "trinity/pkg/domain-errors"
)

const (
	maxStdNoLen   = 10
	maxContentLen = 500

	defaultListLimit = 20
	maxListLimit     = 100
)

// Service implements the board operations over a Store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) CreatePost(ctx context.Context, stdNo, content string, isAdmin bool) (*Post, error) {
	stdNo = strings.TrimSpace(stdNo)
	content = strings.TrimSpace(content)
	if stdNo == "" || len(stdNo) > maxStdNoLen {
		return nil, dErrors.New(dErrors.CodeBadRequest, "stdNo must be 1 to 10 characters")
	}
	if content == "" || len([]rune(content)) > maxContentLen {
		return nil, dErrors.New(dErrors.CodeBadRequest, "content must be 1 to 500 characters")
	}

	post := &Post{
		ID:      uuid.NewString(),
		StdNo:   stdNo,
		Content: content,
		IsAdmin: isAdmin,
	}
	if err := s.store.Create(ctx, post); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create post", err)
	}
	s.logger.InfoContext(ctx, "post created", "post_id", post.ID, "admin", isAdmin)
	return post, nil
}

func (s *Service) LikePost(ctx context.Context, id string) (int, error) {
	if id == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, "post id is required")
	}
	likes, err := s.store.Like(ctx, id)
	switch {
	case err == nil:
		return likes, nil
	case errors.Is(err, ErrNotFound):
		return 0, dErrors.New(dErrors.CodeNotFound, "post not found")
	case errors.Is(err, ErrLikesCapped):
		return 0, dErrors.New(dErrors.CodeBadRequest, "like limit reached")
	default:
		return 0, dErrors.Wrap(dErrors.CodeInternal, "failed to like post", err)
	}
}

// ListPosts pages newest-first. An empty cursor starts from the top; the
// returned cursor addresses the last post of the page.
func (s *Service) ListPosts(ctx context.Context, cursor string, limit int) (*ListPostsResult, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var after *Page
	if cursor != "" {
		page, err := DecodeCursor(cursor)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid cursor")
		}
		after = page
	}

	posts, hasNext, err := s.store.List(ctx, after, limit)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list posts", err)
	}

	result := &ListPostsResult{
		Data: posts,
		Meta: ListMeta{HasNextPage: hasNext},
	}
	if result.Data == nil {
		result.Data = []Post{}
	}
	if hasNext && len(posts) > 0 {
		last := posts[len(posts)-1]
		next := EncodeCursor(Page{CreatedAt: last.CreatedAt, ID: last.ID})
		result.Meta.NextCursor = &next
	}
	return result, nil
}
