package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Resume // userID -> id -> resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[res.UserID] == nil {
		r.data[res.UserID] = make(map[string]Resume)
	}
	r.data[res.UserID][res.ID] = res
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[userID][id]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Resume, 0, len(r.data[userID]))
	for _, res := range r.data[userID] {
		out = append(out, res)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []Resume{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, res Resume, unmodifiedSince *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[res.UserID][res.ID]
	if !ok {
		return ErrNotFound
	}
	if unmodifiedSince != nil && cur.UpdatedAt.After(*unmodifiedSince) {
		return ErrConflict
	}
	cur.Title = res.Title
	cur.Template = res.Template
	cur.Data = res.Data
	cur.UpdatedAt = res.UpdatedAt
	r.data[res.UserID][res.ID] = cur
	return nil
}

func (r *MemoryRepo) SetDefault(ctx context.Context, userID, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.data[userID]
	if _, ok := owned[id]; !ok {
		return ErrNotFound
	}
	for key, res := range owned {
		res.IsDefault = key == id
		if key == id {
			res.UpdatedAt = at
		}
		owned[key] = res
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[userID][id]; !ok {
		return ErrNotFound
	}
	delete(r.data[userID], id)
	return nil
}

func (r *MemoryRepo) Count(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data[userID]), nil
}

var _ Repo = (*MemoryRepo)(nil)
