package branding

import "context"

type Repo interface {
	Get(ctx context.Context, userID string) (Branding, error)
	Save(ctx context.Context, b Branding) error
}
