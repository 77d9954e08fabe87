package credits

import (
	"context"
	"fmt"
	"time"

	"resume-builder/internal/shared/telemetry"
)

type store interface {
	Get(ctx context.Context, userID string, now time.Time) (Balance, error)
	Apply(ctx context.Context, userID string, amount int, reason string, now time.Time) (Balance, error)
	Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
}

// Notifier receives low-balance alerts.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body string) error
}

// Service manages credit balances via an underlying store.
type Service struct {
	store    store
	notifier Notifier
	now      func() time.Time
}

// NewService constructs a Service with in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore(), now: time.Now}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore, now: time.Now}
}

// SetNotifier registers the receiver of low-balance alerts.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Get returns the user's balance, initializing the plan default if absent.
func (s *Service) Get(ctx context.Context, userID string) (Balance, error) {
	return s.store.Get(ctx, userID, s.timestamp())
}

// Consume deducts n credits atomically. ErrInsufficientCredits leaves the
// balance untouched.
func (s *Service) Consume(ctx context.Context, userID string, n int, reason string) (Balance, error) {
	if n <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	b, err := s.store.Apply(ctx, userID, -n, reason, s.timestamp())
	if err != nil {
		return Balance{}, err
	}
	before := b.Balance + n
	if before > LowBalanceThreshold && b.Balance <= LowBalanceThreshold {
		s.notifyLow(ctx, userID, b.Balance)
	}
	return b, nil
}

// Grant adds n credits.
func (s *Service) Grant(ctx context.Context, userID string, n int, reason string) (Balance, error) {
	if n <= 0 {
		return Balance{}, ErrInvalidAmount
	}
	return s.store.Apply(ctx, userID, n, reason, s.timestamp())
}

// Transactions lists ledger entries, newest first.
func (s *Service) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	return s.store.Transactions(ctx, userID, limit, offset)
}

func (s *Service) notifyLow(ctx context.Context, userID string, balance int) {
	if s.notifier == nil {
		return
	}
	body := fmt.Sprintf("You have %d AI credits left.", balance)
	if err := s.notifier.Notify(ctx, userID, "low_credits", "Running low on credits", body); err != nil {
		telemetry.Warn("credits.notify.failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
