package board

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	posts map[string]*Post
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts: make(map[string]*Post),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, post *Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *MemoryStore) Like(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Likes >= MaxLikes {
		return 0, ErrLikesCapped
	}
	p.Likes++
	return p.Likes, nil
}

func (s *MemoryStore) List(_ context.Context, after *Page, limit int) ([]Post, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	if after != nil {
		idx := 0
		for idx < len(all) {
			p := all[idx]
			if p.CreatedAt.Before(after.CreatedAt) ||
				(p.CreatedAt.Equal(after.CreatedAt) && p.ID < after.ID) {
				break
			}
			idx++
		}
		all = all[idx:]
	}

	hasNext := len(all) > limit
	if hasNext {
		all = all[:limit]
	}
	return all, hasNext, nil
}
