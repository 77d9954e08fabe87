package resumes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxTitleLen = 200

// Service contains business logic for résumés.
type Service struct {
	Repo Repo
	now  func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// CreateInput holds the fields accepted when creating a résumé.
type CreateInput struct {
	Title    string
	Template string
	Data     ResumeData
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title    *string
	Template *string
	Data     *ResumeData
}

// ExportDocument is the portable JSON form of a résumé, accepted back by Import.
type ExportDocument struct {
	Title    string     `json:"title"`
	Template string     `json:"template"`
	Data     ResumeData `json:"data"`
}

// timestamps are truncated to the database's microsecond precision so values
// echoed back by clients compare equal to stored ones.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create stores a new résumé. The user's first résumé becomes the default.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Resume, error) {
	title, template, err := cleanMeta(in.Title, in.Template)
	if err != nil {
		return Resume{}, err
	}
	count, err := s.Repo.Count(ctx, userID)
	if err != nil {
		return Resume{}, err
	}

	now := s.timestamp()
	in.Data.Normalize()
	res := Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Template:  template,
		Data:      in.Data,
		IsDefault: count == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, res); err != nil {
		return Resume{}, err
	}
	return res, nil
}

// Get returns one résumé.
func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Resume{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

// List returns a page of résumés.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	return s.Repo.List(ctx, userID, limit, offset)
}

// Update applies in to the résumé. When unmodifiedSince is set and the stored
// copy changed after it, ErrConflict is returned and nothing is written.
func (s *Service) Update(ctx context.Context, userID, id string, in UpdateInput, unmodifiedSince *time.Time) (Resume, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}

	title, template := cur.Title, cur.Template
	if in.Title != nil {
		title = *in.Title
	}
	if in.Template != nil {
		template = *in.Template
	}
	title, template, err = cleanMeta(title, template)
	if err != nil {
		return Resume{}, err
	}
	cur.Title = title
	cur.Template = template
	if in.Data != nil {
		cur.Data = *in.Data
		cur.Data.Normalize()
	}
	cur.UpdatedAt = s.timestamp()

	if err := s.Repo.Update(ctx, cur, unmodifiedSince); err != nil {
		return Resume{}, err
	}
	return cur, nil
}

// Duplicate copies a résumé under a new id. The copy is never the default.
func (s *Service) Duplicate(ctx context.Context, userID, id string) (Resume, error) {
	src, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, err
	}
	title := src.Title + " (Copy)"
	if len([]rune(title)) > maxTitleLen {
		title = string([]rune(title)[:maxTitleLen])
	}

	now := s.timestamp()
	dup := Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Template:  src.Template,
		Data:      src.Data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, dup); err != nil {
		return Resume{}, err
	}
	return dup, nil
}

// SetDefault makes id the user's default résumé.
func (s *Service) SetDefault(ctx context.Context, userID, id string) (Resume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Resume{}, ErrNotFound
	}
	if err := s.Repo.SetDefault(ctx, userID, id, s.timestamp()); err != nil {
		return Resume{}, err
	}
	return s.Repo.Get(ctx, userID, id)
}

// Delete removes a résumé.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, userID, id)
}

// Count returns the number of résumés a user owns.
func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.Repo.Count(ctx, userID)
}

// Export returns the portable form of a résumé.
func (s *Service) Export(ctx context.Context, userID, id string) (ExportDocument, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return ExportDocument{}, err
	}
	return ExportDocument{Title: res.Title, Template: res.Template, Data: res.Data}, nil
}

// Import validates raw against the export schema and stores it as a new résumé.
func (s *Service) Import(ctx context.Context, userID string, raw []byte) (Resume, error) {
	if err := validateImport(raw); err != nil {
		return Resume{}, err
	}
	var doc ExportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.Create(ctx, userID, CreateInput{Title: doc.Title, Template: doc.Template, Data: doc.Data})
}

func cleanMeta(title, template string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	if len([]rune(title)) > maxTitleLen {
		return "", "", fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, maxTitleLen)
	}
	template = strings.ToLower(strings.TrimSpace(template))
	if template == "" {
		template = DefaultTemplate
	}
	if !IsValidTemplate(template) {
		return "", "", fmt.Errorf("%w: unknown template %q", ErrInvalidInput, template)
	}
	return title, template, nil
}
