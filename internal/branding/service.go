package branding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const logoURLTTL = 15 * time.Minute

var logoTypes = map[string]struct{}{
	"image/png":     {},
	"image/jpeg":    {},
	"image/svg+xml": {},
	"image/webp":    {},
}

var validate = validator.New()

type Service struct {
	Repo  Repo
	Store object.ObjectStore
	now   func() time.Time
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{Repo: repo, Store: store, now: time.Now}
}

// Input carries the theme fields. Empty fields keep their current value.
type Input struct {
	PrimaryColor   string `validate:"omitempty,hexcolor,len=7"`
	SecondaryColor string `validate:"omitempty,hexcolor,len=7"`
	FontFamily     string
}

// Get returns the stored branding, or the defaults when none is saved.
func (s *Service) Get(ctx context.Context, userID string) (Branding, error) {
	b, err := s.Repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return defaults(userID), nil
	}
	return b, err
}

func (s *Service) Upsert(ctx context.Context, userID string, in Input) (Branding, error) {
	in.PrimaryColor = strings.TrimSpace(in.PrimaryColor)
	in.SecondaryColor = strings.TrimSpace(in.SecondaryColor)
	in.FontFamily = strings.TrimSpace(in.FontFamily)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Branding{}, fmt.Errorf("%w: %s must be a #RRGGBB color", ErrInvalidInput, lowerFirst(verrs[0].Field()))
		}
		return Branding{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.FontFamily != "" {
		font, ok := canonicalFont(in.FontFamily)
		if !ok {
			return Branding{}, fmt.Errorf("%w: unsupported font family %q", ErrInvalidInput, in.FontFamily)
		}
		in.FontFamily = font
	}

	b, err := s.Get(ctx, userID)
	if err != nil {
		return Branding{}, err
	}
	if in.PrimaryColor != "" {
		b.PrimaryColor = strings.ToUpper(in.PrimaryColor)
	}
	if in.SecondaryColor != "" {
		b.SecondaryColor = strings.ToUpper(in.SecondaryColor)
	}
	if in.FontFamily != "" {
		b.FontFamily = in.FontFamily
	}
	return b, s.save(ctx, &b)
}

// Reset restores the default theme and drops the logo.
func (s *Service) Reset(ctx context.Context, userID string) (Branding, error) {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return Branding{}, err
	}
	b := defaults(userID)
	b.CreatedAt = cur.CreatedAt
	if err := s.save(ctx, &b); err != nil {
		return Branding{}, err
	}
	s.removeLogo(ctx, userID, cur.LogoKey)
	return b, nil
}

func (s *Service) UploadLogo(ctx context.Context, userID, fileName string, r io.Reader) (Branding, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return Branding{}, err
	}
	mime, body, err := object.Sniff(r)
	if err != nil {
		return Branding{}, err
	}
	if _, ok := logoTypes[mime]; !ok {
		return Branding{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mime)
	}
	key, _, _, err := s.Store.Save(ctx, userID, fileName, body)
	if err != nil {
		return Branding{}, fmt.Errorf("save logo: %w", err)
	}
	old := b.LogoKey
	b.LogoKey = key
	if err := s.save(ctx, &b); err != nil {
		_ = s.Store.Delete(ctx, key)
		return Branding{}, err
	}
	if old != key {
		s.removeLogo(ctx, userID, old)
	}
	return b, nil
}

func (s *Service) OpenLogo(ctx context.Context, userID string) (io.ReadCloser, error) {
	b, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b.LogoKey == "" {
		return nil, ErrNotFound
	}
	rc, err := s.Store.Open(ctx, b.LogoKey)
	if errors.Is(err, object.ErrNotFound) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (s *Service) LogoURL(ctx context.Context, b Branding) string {
	if b.LogoKey == "" {
		return ""
	}
	if ps, ok := s.Store.(object.Presigner); ok {
		if url, err := ps.PresignGet(ctx, b.LogoKey, logoURLTTL); err == nil {
			return url
		}
	}
	return "/api/v1/branding/logo"
}

func (s *Service) save(ctx context.Context, b *Branding) error {
	now := s.now().UTC().Truncate(time.Microsecond)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	return s.Repo.Save(ctx, *b)
}

func (s *Service) removeLogo(ctx context.Context, userID, key string) {
	if key == "" {
		return
	}
	if err := s.Store.Delete(ctx, key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("branding.logo.cleanup_failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func canonicalFont(name string) (string, bool) {
	for _, f := range FontFamilies {
		if strings.EqualFold(f, name) {
			return f, true
		}
	}
	return "", false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
