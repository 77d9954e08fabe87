package certificates

import (
	"fmt"
	"strings"
	"time"
)

type certificateRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Issuer        string `json:"issuer" binding:"max=200"`
	IssueDate     string `json:"issueDate"`
	ExpiryDate    string `json:"expiryDate"`
	CredentialID  string `json:"credentialId" binding:"max=200"`
	CredentialURL string `json:"credentialUrl" binding:"omitempty,url,max=2000"`
}

func (r certificateRequest) input() (Input, error) {
	issue, err := parseDate(r.IssueDate, "issueDate")
	if err != nil {
		return Input{}, err
	}
	expiry, err := parseDate(r.ExpiryDate, "expiryDate")
	if err != nil {
		return Input{}, err
	}
	return Input{
		Name:          r.Name,
		Issuer:        r.Issuer,
		IssueDate:     issue,
		ExpiryDate:    expiry,
		CredentialID:  r.CredentialID,
		CredentialURL: r.CredentialURL,
	}, nil
}

func parseDate(raw, field string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return &t, nil
}

type confirmRequest struct {
	FileKey string `json:"fileKey" binding:"required"`
}

type presignRequest struct {
	FileName string `json:"fileName" binding:"required,max=255"`
}

// CertificateResponse is the outward-facing representation of a certificate.
type CertificateResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Issuer        string    `json:"issuer"`
	IssueDate     string    `json:"issueDate,omitempty"`
	ExpiryDate    string    `json:"expiryDate,omitempty"`
	Expired       bool      `json:"expired"`
	CredentialID  string    `json:"credentialId"`
	CredentialURL string    `json:"credentialUrl"`
	FileURL       string    `json:"fileUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func toResponse(c Certificate, fileURL string, now time.Time) CertificateResponse {
	return CertificateResponse{
		ID:            c.ID,
		Name:          c.Name,
		Issuer:        c.Issuer,
		IssueDate:     formatDate(c.IssueDate),
		ExpiryDate:    formatDate(c.ExpiryDate),
		Expired:       c.Expired(now),
		CredentialID:  c.CredentialID,
		CredentialURL: c.CredentialURL,
		FileURL:       fileURL,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
