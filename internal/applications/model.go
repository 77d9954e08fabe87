package applications

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("application not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Status is the pipeline stage of a job application.
type Status string

const (
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

// Statuses lists every valid status in pipeline order.
var Statuses = []Status{StatusApplied, StatusInterviewing, StatusOffer, StatusRejected, StatusWithdrawn}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Application tracks one job a user applied to.
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Status    Status    `json:"status"`
	JobURL    string    `json:"jobUrl"`
	Notes     string    `json:"notes"`
	ResumeID  string    `json:"resumeId,omitempty"`
	AppliedAt time.Time `json:"appliedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListFilter narrows List results. An empty Status matches all.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}
