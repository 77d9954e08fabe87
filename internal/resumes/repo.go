package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for résumés.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	Get(ctx context.Context, userID, id string) (Resume, error)
	List(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	// Update writes r when the stored updated_at is not after unmodifiedSince (if given).
	// It returns ErrConflict when the row changed and ErrNotFound when it does not exist.
	Update(ctx context.Context, r Resume, unmodifiedSince *time.Time) error
	SetDefault(ctx context.Context, userID, id string, at time.Time) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int, error)
}
