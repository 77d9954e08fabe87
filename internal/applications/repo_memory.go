package applications

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	items map[string]Application
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: make(map[string]Application)}
}

func (r *MemoryRepo) Create(ctx context.Context, a Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = a
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, f ListFilter) ([]Application, error) {
	r.mu.RLock()
	var out []Application
	for _, a := range r.items {
		if a.UserID != userID || (f.Status != "" && a.Status != f.Status) {
			continue
		}
		out = append(out, a)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Offset >= len(out) {
		return []Application{}, nil
	}
	end := f.Offset + f.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[f.Offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[a.ID]
	if !ok || cur.UserID != a.UserID {
		return ErrNotFound
	}
	r.items[a.ID] = a
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, a := range r.items {
		if a.UserID == userID {
			out[a.Status]++
		}
	}
	return out, nil
}
