//go:build integration

package management_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"trinity/internal/management"
	"trinity/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *management.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = management.NewRedisStore(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.Client.FlushAll(context.Background()).Err())
}

func (s *RedisStoreSuite) TestLoginCounter() {
	ctx := context.Background()

	count, err := s.store.LoginCount(ctx)
	s.Require().NoError(err)
	s.Zero(count)

	count, err = s.store.IncrementLoginCount(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, count)

	count, err = s.store.LoginCount(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func (s *RedisStoreSuite) TestSessionLifecycle() {
	ctx := context.Background()

	s.Require().NoError(s.store.SaveSession(ctx, "sess-1", time.Minute))

	exists, err := s.store.SessionExists(ctx, "sess-1")
	s.Require().NoError(err)
	s.True(exists)

	s.Require().NoError(s.store.DeleteSession(ctx, "sess-1"))

	exists, err = s.store.SessionExists(ctx, "sess-1")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RedisStoreSuite) TestSessionTTLExpiry() {
	ctx := context.Background()

	s.Require().NoError(s.store.SaveSession(ctx, "sess-ttl", 100*time.Millisecond))
	time.Sleep(200 * time.Millisecond)

	exists, err := s.store.SessionExists(ctx, "sess-ttl")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RedisStoreSuite) TestTerm() {
	ctx := context.Background()

	term, err := s.store.Term(ctx)
	s.Require().NoError(err)
	s.Empty(term.Shtm)

	s.Require().NoError(s.store.SetTerm(ctx, management.Term{Shtm: "10", Yyyy: "2026"}))

	term, err = s.store.Term(ctx)
	s.Require().NoError(err)
	s.Equal(management.Term{Shtm: "10", Yyyy: "2026"}, term)
}
