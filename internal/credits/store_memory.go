package credits

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu           sync.Mutex
	balances     map[string]Balance
	transactions map[string][]Transaction
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		balances:     make(map[string]Balance),
		transactions: make(map[string][]Transaction),
	}
}

func (s *memoryStore) Get(ctx context.Context, userID string, now time.Time) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, now), nil
}

func (s *memoryStore) Apply(ctx context.Context, userID string, amount int, reason string, now time.Time) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.ensureLocked(userID, now)
	if b.Balance+amount < 0 {
		return Balance{}, ErrInsufficientCredits
	}
	b.Balance += amount
	b.UpdatedAt = now
	s.balances[userID] = b
	s.transactions[userID] = append(s.transactions[userID], Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: now,
	})
	return b, nil
}

func (s *memoryStore) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	all := append([]Transaction(nil), s.transactions[userID]...)
	s.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return []Transaction{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memoryStore) ensureLocked(userID string, now time.Time) Balance {
	b, ok := s.balances[userID]
	if !ok {
		b = defaultBalance(userID, now)
		s.balances[userID] = b
	}
	return b
}
