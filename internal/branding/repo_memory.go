package branding

import (
	"context"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Branding
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Branding)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Branding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[userID]
	if !ok {
		return Branding{}, ErrNotFound
	}
	return b, nil
}

func (r *MemoryRepo) Save(ctx context.Context, b Branding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.UserID] = b
	return nil
}
