package notifications

import (
	"context"
	"time"
)

// Repo stores notifications.
type Repo interface {
	Create(ctx context.Context, n Notification) error
	List(ctx context.Context, userID string, f ListFilter) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}
