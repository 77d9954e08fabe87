package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const (
	maxNameLen     = 200
	avatarURLTTL   = 15 * time.Minute
	avatarFallback = "/api/v1/profile/avatar"
)

var avatarTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
}

type Service struct {
	Repo  Repo
	Store object.ObjectStore
	now   func() time.Time
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, now: time.Now}
}

// SaveInput is the editable part of a profile.
type SaveInput struct {
	Username string
	FullName string
	Headline string
}

// Availability answers a username check.
type Availability struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID)
}

// Save creates or updates the caller's profile.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (Profile, error) {
	username := NormalizeUsername(in.Username)
	if err := ValidateUsername(username); err != nil {
		return Profile{}, err
	}
	fullName := strings.TrimSpace(in.FullName)
	headline := strings.TrimSpace(in.Headline)
	if len([]rune(fullName)) > maxNameLen || len([]rune(headline)) > maxNameLen {
		return Profile{}, fmt.Errorf("%w: name and headline are limited to %d characters", ErrInvalidInput, maxNameLen)
	}

	taken, err := s.Repo.UsernameTaken(ctx, username, userID)
	if err != nil {
		return Profile{}, err
	}
	if taken {
		return Profile{}, ErrUsernameTaken
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	p := Profile{
		UserID:    userID,
		Username:  username,
		FullName:  fullName,
		Headline:  headline,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if cur, err := s.Repo.Get(ctx, userID); err == nil {
		p.CreatedAt = cur.CreatedAt
		p.AvatarKey = cur.AvatarKey
	} else if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// CheckUsername reports whether raw could be claimed by userID.
func (s *Service) CheckUsername(ctx context.Context, userID, raw string) (Availability, error) {
	username := NormalizeUsername(raw)
	out := Availability{Username: username}
	if err := ValidateUsername(username); err != nil {
		out.Reason = strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
		return out, nil
	}
	taken, err := s.Repo.UsernameTaken(ctx, username, userID)
	if err != nil {
		return Availability{}, err
	}
	if taken {
		out.Reason = ErrUsernameTaken.Error()
		return out, nil
	}
	out.Available = true
	return out, nil
}

// UploadAvatar stores a PNG, JPEG or WebP image and replaces the previous avatar.
func (s *Service) UploadAvatar(ctx context.Context, userID, fileName string, r io.Reader) (Profile, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	mime, body, err := object.Sniff(r)
	if err != nil {
		return Profile{}, err
	}
	if _, ok := avatarTypes[mime]; !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}

	key, _, _, err := s.Store.Save(ctx, userID, fileName, body)
	if err != nil {
		return Profile{}, fmt.Errorf("save avatar: %w", err)
	}
	now := s.now().UTC().Truncate(time.Microsecond)
	if err := s.Repo.SetAvatar(ctx, userID, key, now); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Profile{}, err
	}

	if old := p.AvatarKey; old != "" && old != key {
		if err := s.Store.Delete(ctx, old); err != nil && !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("profiles.avatar.cleanup_failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	p.AvatarKey = key
	p.UpdatedAt = now
	return p, nil
}

// OpenAvatar streams the stored avatar.
func (s *Service) OpenAvatar(ctx context.Context, userID string) (io.ReadCloser, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.AvatarKey == "" {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, p.AvatarKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

// AvatarURL returns a presigned URL when the store supports it and the API
// path otherwise. Profiles without an avatar get "".
func (s *Service) AvatarURL(ctx context.Context, p Profile) string {
	if p.AvatarKey == "" {
		return ""
	}
	if ps, ok := s.Store.(object.Presigner); ok {
		url, err := ps.PresignGet(ctx, p.AvatarKey, avatarURLTTL)
		if err == nil {
			return url
		}
		telemetry.Warn("profiles.avatar.presign_failed", map[string]interface{}{
			"user_id": p.UserID,
			"error":   err.Error(),
		})
	}
	return avatarFallback
}
