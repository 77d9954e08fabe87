package notifications

import (
	"errors"
	"time"
)

// ErrNotFound indicates the notification does not exist for the user.
var ErrNotFound = errors.New("notification not found")

// Notification is an in-app message shown in the bell menu.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"-"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Read reports whether the notification has been marked read.
func (n Notification) Read() bool {
	return n.ReadAt != nil
}

// ListFilter narrows List results.
type ListFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}
