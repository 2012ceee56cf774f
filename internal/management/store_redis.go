package management

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginCountKey    = "stats:login:count"
	sessionKeyPrefix = "mng:session:"
	termKey          = "mng:term"
)

// RedisStore is the production Store. All operations are single round trips;
// admin sessions expire server-side through key TTLs.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IncrementLoginCount(ctx context.Context) (int64, error) {
	count, err := s.client.Incr(ctx, loginCountKey).Result()
	if err != nil {
		return 0, fmt.Errorf("increment login count: %w", err)
	}
	return count, nil
}

func (s *RedisStore) LoginCount(ctx context.Context) (int64, error) {
	count, err := s.client.Get(ctx, loginCountKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get login count: %w", err)
	}
	return count, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return true, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) Term(ctx context.Context) (Term, error) {
	fields, err := s.client.HGetAll(ctx, termKey).Result()
	if err != nil {
		return Term{}, fmt.Errorf("get term: %w", err)
	}
	return Term{Shtm: fields["shtm"], Yyyy: fields["yyyy"]}, nil
}

func (s *RedisStore) SetTerm(ctx context.Context, term Term) error {
	err := s.client.HSet(ctx, termKey, "shtm", term.Shtm, "yyyy", term.Yyyy).Err()
	if err != nil {
		return fmt.Errorf("set term: %w", err)
	}
	return nil
}
