package branding

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-builder/internal/shared/storage/object/local"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestGetReturnsDefaults(t *testing.T) {
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()))
	b, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.PrimaryColor != DefaultPrimaryColor || b.SecondaryColor != DefaultSecondaryColor || b.FontFamily != DefaultFontFamily {
		t.Fatalf("unexpected defaults %+v", b)
	}
}

func TestUpsertValidatesAndMerges(t *testing.T) {
	svc := NewService(NewMemoryRepo(), local.New(t.TempDir()))
	ctx := context.Background()

	for _, bad := range []Input{
		{PrimaryColor: "red"},
		{PrimaryColor: "#FFF"},
		{SecondaryColor: "#12345G"},
		{FontFamily: "Comic Sans"},
	} {
		if _, err := svc.Upsert(ctx, "user-1", bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", bad, err)
		}
	}

	b, err := svc.Upsert(ctx, "user-1", Input{PrimaryColor: "#ff0000", FontFamily: "roboto"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if b.PrimaryColor != "#FF0000" || b.SecondaryColor != DefaultSecondaryColor || b.FontFamily != "Roboto" {
		t.Fatalf("unexpected merge %+v", b)
	}

	b, _ = svc.Upsert(ctx, "user-1", Input{SecondaryColor: "#00aa00"})
	if b.PrimaryColor != "#FF0000" || b.SecondaryColor != "#00AA00" {
		t.Fatalf("expected earlier values kept, got %+v", b)
	}
}

func TestLogoUploadReplaceAndReset(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(NewMemoryRepo(), store)
	ctx := context.Background()

	if _, err := svc.UploadLogo(ctx, "user-1", "logo.txt", strings.NewReader("hello")); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}

	first, err := svc.UploadLogo(ctx, "user-1", "logo.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadLogo: %v", err)
	}
	second, err := svc.UploadLogo(ctx, "user-1", "logo2.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadLogo second: %v", err)
	}
	if _, err := store.Open(ctx, first.LogoKey); err == nil {
		t.Fatalf("expected previous logo to be removed")
	}
	if got := svc.LogoURL(ctx, second); got != "/api/v1/branding/logo" {
		t.Fatalf("unexpected logo url %q", got)
	}

	rc, err := svc.OpenLogo(ctx, "user-1")
	if err != nil {
		t.Fatalf("OpenLogo: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(data, pngHeader) {
		t.Fatalf("unexpected logo bytes")
	}

	reset, err := svc.Reset(ctx, "user-1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reset.LogoKey != "" || reset.PrimaryColor != DefaultPrimaryColor {
		t.Fatalf("unexpected reset %+v", reset)
	}
	if _, err := svc.OpenLogo(ctx, "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after reset, got %v", err)
	}
}

func TestPGSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO custom_branding`)).
		WithArgs("user-1", "#000000", "#FFFFFF", "Inter", sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	err = repo.Save(context.Background(), Branding{
		UserID: "user-1", PrimaryColor: "#000000", SecondaryColor: "#FFFFFF", FontFamily: "Inter",
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
