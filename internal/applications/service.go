package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/resumes"
)

// ResumeLookup resolves a resume owned by the user.
type ResumeLookup interface {
	Get(ctx context.Context, userID, id string) (resumes.Resume, error)
}

// Service contains business logic for job applications.
type Service struct {
	Repo    Repo
	Resumes ResumeLookup
	now     func() time.Time
}

func NewService(repo Repo, lookup ResumeLookup) *Service {
	return &Service{Repo: repo, Resumes: lookup, now: time.Now}
}

// Input holds the editable application fields. A zero AppliedAt defaults to now
// on create and keeps the stored value on update.
type Input struct {
	Company   string
	Position  string
	Status    Status
	JobURL    string
	Notes     string
	ResumeID  string
	AppliedAt time.Time
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Service) clean(ctx context.Context, userID string, in Input) (Input, error) {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.JobURL = strings.TrimSpace(in.JobURL)
	in.ResumeID = strings.TrimSpace(in.ResumeID)
	if in.Company == "" || in.Position == "" {
		return Input{}, fmt.Errorf("%w: company and position are required", ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = StatusApplied
	}
	if !in.Status.Valid() {
		return Input{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	if in.ResumeID != "" && s.Resumes != nil {
		if _, err := s.Resumes.Get(ctx, userID, in.ResumeID); err != nil {
			if errors.Is(err, resumes.ErrNotFound) {
				return Input{}, fmt.Errorf("%w: resume not found", ErrInvalidInput)
			}
			return Input{}, err
		}
	}
	return in, nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (Application, error) {
	in, err := s.clean(ctx, userID, in)
	if err != nil {
		return Application{}, err
	}
	now := s.timestamp()
	applied := in.AppliedAt
	if applied.IsZero() {
		applied = now
	}
	a := Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		Company:   in.Company,
		Position:  in.Position,
		Status:    in.Status,
		JobURL:    in.JobURL,
		Notes:     in.Notes,
		ResumeID:  in.ResumeID,
		AppliedAt: applied.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Application{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID string, f ListFilter) ([]Application, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	return s.Repo.List(ctx, userID, f)
}

func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Application, error) {
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	in, err = s.clean(ctx, userID, in)
	if err != nil {
		return Application{}, err
	}
	cur.Company = in.Company
	cur.Position = in.Position
	cur.Status = in.Status
	cur.JobURL = in.JobURL
	cur.Notes = in.Notes
	cur.ResumeID = in.ResumeID
	if !in.AppliedAt.IsZero() {
		cur.AppliedAt = in.AppliedAt.UTC()
	}
	cur.UpdatedAt = s.timestamp()
	if err := s.Repo.Update(ctx, cur); err != nil {
		return Application{}, err
	}
	return cur, nil
}

// SetStatus moves an application to another pipeline stage.
func (s *Service) SetStatus(ctx context.Context, userID, id string, status Status) (Application, error) {
	if !status.Valid() {
		return Application{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	cur, err := s.Get(ctx, userID, id)
	if err != nil {
		return Application{}, err
	}
	cur.Status = status
	cur.UpdatedAt = s.timestamp()
	if err := s.Repo.Update(ctx, cur); err != nil {
		return Application{}, err
	}
	return cur, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, userID, id)
}

// CountByStatus reports how many applications sit in each stage. Every status
// is present in the result.
func (s *Service) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	return s.Repo.CountByStatus(ctx, userID)
}
