package profiles

import (
	"context"
	"time"
)

type Repo interface {
	Get(ctx context.Context, userID string) (Profile, error)
	// Save inserts or updates the profile; a username held by another user
	// yields ErrUsernameTaken.
	Save(ctx context.Context, p Profile) error
	UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error)
	SetAvatar(ctx context.Context, userID, key string, at time.Time) error
}
