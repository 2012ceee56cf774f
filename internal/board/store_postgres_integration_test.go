//go:build integration

package board_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	"trinity/internal/board"
	"trinity/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *board.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = board.NewPostgresStore(s.pg.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(context.Background(), `TRUNCATE post`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) createPost(content string) *board.Post {
	post := &board.Post{ID: uuid.NewString(), StdNo: "20230001", Content: content}
	s.Require().NoError(s.store.Create(context.Background(), post))
	return post
}

func (s *PostgresStoreSuite) TestCreateAndList() {
	ctx := context.Background()

	first := s.createPost("first")
	s.False(first.CreatedAt.IsZero(), "Create fills CreatedAt from the database")
	second := s.createPost("second")

	posts, hasNext, err := s.store.List(ctx, nil, 10)
	s.Require().NoError(err)
	s.Require().Len(posts, 2)
	s.False(hasNext)
	s.Equal(second.ID, posts[0].ID, "newest first")
	s.Equal(first.ID, posts[1].ID)
}

func (s *PostgresStoreSuite) TestListPagination() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.createPost("post")
		time.Sleep(5 * time.Millisecond)
	}

	page1, hasNext, err := s.store.List(ctx, nil, 2)
	s.Require().NoError(err)
	s.Require().Len(page1, 2)
	s.True(hasNext)

	last := page1[len(page1)-1]
	page2, hasNext, err := s.store.List(ctx, &board.Page{CreatedAt: last.CreatedAt, ID: last.ID}, 2)
	s.Require().NoError(err)
	s.Require().Len(page2, 2)
	s.True(hasNext)
	s.NotEqual(page1[0].ID, page2[0].ID)
	s.NotEqual(page1[1].ID, page2[0].ID)
}

func (s *PostgresStoreSuite) TestLike_Concurrent() {
	ctx := context.Background()
	post := s.createPost("liked")

	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			_, err := s.store.Like(ctx, post.ID)
			return err
		})
	}
	s.Require().NoError(g.Wait())

	var likes int
	s.Require().NoError(s.pg.DB.QueryRowContext(ctx,
		`SELECT likes FROM post WHERE id = $1`, post.ID).Scan(&likes))
	s.Equal(20, likes, "no lost updates under concurrency")
}

func (s *PostgresStoreSuite) TestLike_NotFound() {
	_, err := s.store.Like(context.Background(), uuid.NewString())
	s.ErrorIs(err, board.ErrNotFound)
}

func (s *PostgresStoreSuite) TestLike_Cap() {
	ctx := context.Background()
	post := s.createPost("capped")

	_, err := s.pg.DB.ExecContext(ctx,
		`UPDATE post SET likes = $1 WHERE id = $2`, board.MaxLikes, post.ID)
	s.Require().NoError(err)

	_, err = s.store.Like(ctx, post.ID)
	s.ErrorIs(err, board.ErrLikesCapped)
}
