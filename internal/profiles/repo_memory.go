package profiles

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Profile)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Save(ctx context.Context, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, other := range r.items {
		if id != p.UserID && other.Username == p.Username {
			return ErrUsernameTaken
		}
	}
	if cur, ok := r.items[p.UserID]; ok {
		p.CreatedAt = cur.CreatedAt
		p.AvatarKey = cur.AvatarKey
	}
	r.items[p.UserID] = p
	return nil
}

func (r *MemoryRepo) UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, p := range r.items {
		if id != exceptUserID && p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) SetAvatar(ctx context.Context, userID, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[userID]
	if !ok {
		return ErrNotFound
	}
	p.AvatarKey = key
	p.UpdatedAt = at
	r.items[userID] = p
	return nil
}
