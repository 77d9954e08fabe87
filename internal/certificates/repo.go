package certificates

import (
	"context"
	"time"
)

// Repo defines persistence operations for certificates.
type Repo interface {
	Create(ctx context.Context, c Certificate) error
	Get(ctx context.Context, userID, id string) (Certificate, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Certificate, error)
	Update(ctx context.Context, c Certificate) error
	SetFile(ctx context.Context, userID, id, key string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int, error)
}
