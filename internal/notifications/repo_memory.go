package notifications

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string][]Notification
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string][]Notification)}
}

func (r *MemoryRepo) Create(ctx context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[n.UserID] = append(r.items[n.UserID], n)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, f ListFilter) ([]Notification, error) {
	r.mu.RLock()
	var out []Notification
	for _, n := range r.items[userID] {
		if f.UnreadOnly && n.Read() {
			continue
		}
		out = append(out, n)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset >= len(out) {
		return []Notification{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[f.Offset:end], nil
}

func (r *MemoryRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[userID]
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if items[i].ReadAt == nil {
			t := at
			items[i].ReadAt = &t
		}
		return nil
	}
	return ErrNotFound
}

func (r *MemoryRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	items := r.items[userID]
	for i := range items {
		if items[i].ReadAt == nil {
			t := at
			items[i].ReadAt = &t
			changed++
		}
	}
	return changed, nil
}

func (r *MemoryRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, item := range r.items[userID] {
		if !item.Read() {
			n++
		}
	}
	return n, nil
}
