package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service creates and reads notifications.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Notify stores a new unread notification. It satisfies credits.Notifier.
func (s *Service) Notify(ctx context.Context, userID, kind, title, body string) error {
	return s.Repo.Create(ctx, Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.timestamp(),
	})
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Notification, error) {
	return s.Repo.List(ctx, userID, f)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.MarkRead(ctx, userID, id, s.timestamp())
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.Repo.MarkAllRead(ctx, userID, s.timestamp())
}

func (s *Service) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.Repo.CountUnread(ctx, userID)
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
