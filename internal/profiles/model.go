package profiles

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidInput wraps username and field validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedImage is returned for avatar uploads that are not PNG, JPEG or WebP.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// Profile is the public identity of a user.
type Profile struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Headline  string    `json:"headline"`
	AvatarKey string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
