package certificates

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("certificate not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedFile is returned for scans that are not PDF, PNG or JPEG.
	ErrUnsupportedFile = errors.New("unsupported file type")
	// ErrPresignUnavailable is returned when the object store cannot presign.
	ErrPresignUnavailable = errors.New("direct uploads are not available")
)

// DateLayout is the wire format of issue and expiry dates.
const DateLayout = "2006-01-02"

// Certificate is a professional certification owned by a user.
type Certificate struct {
	ID            string
	UserID        string
	Name          string
	Issuer        string
	IssueDate     *time.Time
	ExpiryDate    *time.Time
	CredentialID  string
	CredentialURL string
	FileKey       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Expired reports whether the certificate has an expiry date before now.
func (c Certificate) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}
