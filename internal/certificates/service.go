package certificates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
)

const (
	fileURLTTL   = 15 * time.Minute
	uploadURLTTL = 15 * time.Minute
)

var fileTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
}

// Service contains business logic for certificates.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
	now   func() time.Time
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, now: time.Now}
}

// Input holds the editable certificate fields.
type Input struct {
	Name          string
	Issuer        string
	IssueDate     *time.Time
	ExpiryDate    *time.Time
	CredentialID  string
	CredentialURL string
}

// UploadTicket is a presigned direct-upload target.
type UploadTicket struct {
	UploadURL        string `json:"uploadUrl"`
	FileKey          string `json:"fileKey"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func clean(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Issuer = strings.TrimSpace(in.Issuer)
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	in.CredentialURL = strings.TrimSpace(in.CredentialURL)
	if in.Name == "" {
		return Input{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.IssueDate != nil && in.ExpiryDate != nil && in.ExpiryDate.Before(*in.IssueDate) {
		return Input{}, fmt.Errorf("%w: expiry date precedes issue date", ErrInvalidInput)
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Certificate, error) {
	in, err := clean(in)
	if err != nil {
		return Certificate{}, err
	}
	now := s.timestamp()
	c := Certificate{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          in.Name,
		Issuer:        in.Issuer,
		IssueDate:     in.IssueDate,
		ExpiryDate:    in.ExpiryDate,
		CredentialID:  in.CredentialID,
		CredentialURL: in.CredentialURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Certificate{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Certificate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Certificate{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
	return s.Repo.List(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.Count(ctx, userID)
}

// Update replaces the editable fields.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Certificate, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Certificate{}, err
	}
	in, err = clean(in)
	if err != nil {
		return Certificate{}, err
	}
	cur.Name = in.Name
	cur.Issuer = in.Issuer
	cur.IssueDate = in.IssueDate
	cur.ExpiryDate = in.ExpiryDate
	cur.CredentialID = in.CredentialID
	cur.CredentialURL = in.CredentialURL
	cur.UpdatedAt = s.timestamp()
	if err := s.Repo.Update(ctx, cur); err != nil {
		return Certificate{}, err
	}
	return cur, nil
}

// Delete removes the certificate and, best effort, its stored file.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.removeFile(ctx, userID, cur.FileKey)
	return nil
}

// AttachFile stores a PDF, PNG or JPEG scan for the certificate.
func (s *Service) AttachFile(ctx context.Context, userID, id, fileName string, r io.Reader) (Certificate, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Certificate{}, err
	}
	mime, body, err := object.Sniff(r)
	if err != nil {
		return Certificate{}, err
	}
	if _, ok := fileTypes[mime]; !ok {
		return Certificate{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, mime)
	}
	key, _, _, err := s.Store.Save(ctx, userID, fileName, body)
	if err != nil {
		return Certificate{}, fmt.Errorf("save certificate file: %w", err)
	}
	return s.replaceFile(ctx, cur, key)
}

// PresignUpload hands out a direct upload URL. The client confirms the upload
// with ConfirmUpload once the PUT succeeds.
func (s *Service) PresignUpload(ctx context.Context, userID, id, fileName string) (UploadTicket, error) {
	ps, ok := s.Store.(object.Presigner)
	if !ok {
		return UploadTicket{}, ErrPresignUnavailable
	}
	if _, err := s.Get(ctx, userID, id); err != nil {
		return UploadTicket{}, err
	}
	key, err := object.NewKey(userID, fileName)
	if err != nil {
		return UploadTicket{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	url, err := ps.PresignPut(ctx, key, uploadURLTTL)
	if err != nil {
		return UploadTicket{}, err
	}
	return UploadTicket{UploadURL: url, FileKey: key, ExpiresInSeconds: int64(uploadURLTTL.Seconds())}, nil
}

// ConfirmUpload links a presigned upload to the certificate. Keys outside the
// caller's namespace are rejected.
func (s *Service) ConfirmUpload(ctx context.Context, userID, id, key string) (Certificate, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Certificate{}, err
	}
	if path.Clean(key) != key || !strings.HasPrefix(key, util.HashUserKey(userID)+"/") {
		return Certificate{}, fmt.Errorf("%w: file key does not belong to caller", ErrInvalidInput)
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Certificate{}, fmt.Errorf("%w: upload not found", ErrInvalidInput)
		}
		return Certificate{}, err
	}
	mime, _, err := object.Sniff(rc)
	rc.Close()
	if err != nil {
		return Certificate{}, err
	}
	if _, ok := fileTypes[mime]; !ok {
		_ = s.Store.Delete(ctx, key)
		return Certificate{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, mime)
	}
	return s.replaceFile(ctx, cur, key)
}

// OpenFile streams the stored scan.
func (s *Service) OpenFile(ctx context.Context, userID, id string) (io.ReadCloser, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if cur.FileKey == "" {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, cur.FileKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// FileURL returns a presigned download URL when available, else the API path.
func (s *Service) FileURL(ctx context.Context, c Certificate) string {
	if c.FileKey == "" {
		return ""
	}
	if ps, ok := s.Store.(object.Presigner); ok {
		if url, err := ps.PresignGet(ctx, c.FileKey, fileURLTTL); err == nil {
			return url
		}
	}
	return "/api/v1/certificates/" + c.ID + "/file"
}

func (s *Service) replaceFile(ctx context.Context, cur Certificate, key string) (Certificate, error) {
	now := s.timestamp()
	if err := s.Repo.SetFile(ctx, cur.UserID, cur.ID, key, now); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Certificate{}, err
	}
	if cur.FileKey != "" && cur.FileKey != key {
		s.removeFile(ctx, cur.UserID, cur.FileKey)
	}
	cur.FileKey = key
	cur.UpdatedAt = now
	return cur, nil
}

func (s *Service) removeFile(ctx context.Context, userID, key string) {
	if key == "" {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("certificates.file.cleanup_failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
