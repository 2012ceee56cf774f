package board

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trinity/pkg/domain-errors"
)

func newTestService() *Service {
	return NewService(NewMemoryStore(), slog.New(slog.DiscardHandler))
}

func TestCreatePost(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "20230001", "hello board", false)
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Zero(t, post.Likes)
}

func TestCreatePost_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "", "content", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = svc.CreatePost(ctx, "20230001234", "content", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "stdNo over 10 characters")

	_, err = svc.CreatePost(ctx, "20230001", "", false)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = svc.CreatePost(ctx, "20230001", strings.Repeat("a", 501), false)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "content over 500 characters")

	_, err = svc.CreatePost(ctx, "20230001", strings.Repeat("a", 500), false)
	assert.NoError(t, err, "content at exactly 500 characters")
}

func TestLikePost(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "20230001", "like me", false)
	require.NoError(t, err)

	likes, err := svc.LikePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	likes, err = svc.LikePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)
}

func TestLikePost_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.LikePost(context.Background(), "missing")
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestLikePost_Cap(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, "20230001", "popular", false)
	require.NoError(t, err)
	store.posts[post.ID].Likes = MaxLikes - 1

	likes, err := svc.LikePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxLikes, likes)

	_, err = svc.LikePost(ctx, post.ID)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest), "likes past the cap must be rejected")
}

func TestListPosts_Pagination(t *testing.T) {
	store := NewMemoryStore()
	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	svc := NewService(store, slog.New(slog.DiscardHandler))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreatePost(ctx, "20230001", "post", false)
		require.NoError(t, err)
	}

	first, err := svc.ListPosts(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Data, 2)
	assert.True(t, first.Meta.HasNextPage)
	require.NotNil(t, first.Meta.NextCursor)
	assert.True(t, first.Data[0].CreatedAt.After(first.Data[1].CreatedAt), "newest first")

	second, err := svc.ListPosts(ctx, *first.Meta.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Data, 2)
	assert.True(t, second.Meta.HasNextPage)
	assert.True(t, first.Data[1].CreatedAt.After(second.Data[0].CreatedAt), "pages do not overlap")

	third, err := svc.ListPosts(ctx, *second.Meta.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, third.Data, 1)
	assert.False(t, third.Meta.HasNextPage)
	assert.Nil(t, third.Meta.NextCursor)
}

func TestListPosts_Empty(t *testing.T) {
	svc := newTestService()

	result, err := svc.ListPosts(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
	assert.False(t, result.Meta.HasNextPage)
}

func TestListPosts_InvalidCursor(t *testing.T) {
	svc := newTestService()

	_, err := svc.ListPosts(context.Background(), "not-base64!!", 10)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))
}

func TestCursorRoundTrip(t *testing.T) {
	page := Page{CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 123456789, time.UTC), ID: "abc"}

	decoded, err := DecodeCursor(EncodeCursor(page))
	require.NoError(t, err)
	assert.True(t, page.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, page.ID, decoded.ID)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	for _, cursor := range []string{
		"",
		"bm90LWEtY3Vyc29y", // valid base64, no separator
		"MjAyNi0wMy0wMQ==", // date only
	} {
		_, err := DecodeCursor(cursor)
		assert.Error(t, err, "cursor %q", cursor)
	}
}
