package certificates

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Certificate
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Certificate)}
}

func (r *MemoryRepo) Create(ctx context.Context, c Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok || c.UserID != userID {
		return Certificate{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
	r.mu.RLock()
	var out []Certificate
	for _, c := range r.items {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].IssueDate, out[j].IssueDate
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Certificate{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[c.ID]
	if !ok || cur.UserID != c.UserID {
		return ErrNotFound
	}
	c.FileKey = cur.FileKey
	c.CreatedAt = cur.CreatedAt
	r.items[c.ID] = c
	return nil
}

func (r *MemoryRepo) SetFile(ctx context.Context, userID, id, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	c.FileKey = key
	c.UpdatedAt = at
	r.items[id] = c
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.items {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}
