package resumes

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService(start time.Time) (*Service, *time.Time) {
	clock := start
	svc := NewService(NewMemoryRepo())
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestCreateDefaultsAndFirstIsDefault(t *testing.T) {
	svc, _ := newTestService(time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC))
	ctx := context.Background()

	first, err := svc.Create(ctx, "user-1", CreateInput{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Title != DefaultTitle || first.Template != DefaultTemplate {
		t.Fatalf("expected defaults, got %q/%q", first.Title, first.Template)
	}
	if !first.IsDefault {
		t.Fatalf("expected first resume to be default")
	}
	if first.CreatedAt.Nanosecond()%1000 != 0 {
		t.Fatalf("expected microsecond precision, got %v", first.CreatedAt)
	}
	if first.Data.Experience == nil || first.Data.Keywords == nil {
		t.Fatalf("expected normalized empty lists")
	}

	second, err := svc.Create(ctx, "user-1", CreateInput{Title: "Backend", Template: "Technical"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.IsDefault {
		t.Fatalf("expected second resume not to be default")
	}
	if second.Template != "technical" {
		t.Fatalf("expected template lowercased, got %q", second.Template)
	}
}

func TestCreateRejectsUnknownTemplate(t *testing.T) {
	svc, _ := newTestService(time.Now())
	_, err := svc.Create(context.Background(), "user-1", CreateInput{Template: "neon"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateOptimisticConcurrency(t *testing.T) {
	svc, clock := newTestService(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res, err := svc.Create(ctx, "user-1", CreateInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seen := res.UpdatedAt

	*clock = clock.Add(time.Minute)
	title := "Saved elsewhere"
	if _, err := svc.Update(ctx, "user-1", res.ID, UpdateInput{Title: &title}, &seen); err != nil {
		t.Fatalf("first update: %v", err)
	}

	*clock = clock.Add(time.Minute)
	stale := "Stale tab"
	_, err = svc.Update(ctx, "user-1", res.ID, UpdateInput{Title: &stale}, &seen)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := svc.Get(ctx, "user-1", res.ID)
	if got.Title != "Saved elsewhere" {
		t.Fatalf("expected conflicting write to be rejected, title=%q", got.Title)
	}

	// Without a guard the write always lands.
	if _, err := svc.Update(ctx, "user-1", res.ID, UpdateInput{Title: &stale}, nil); err != nil {
		t.Fatalf("unguarded update: %v", err)
	}
}

func TestUpdateMissingResume(t *testing.T) {
	svc, _ := newTestService(time.Now())
	_, err := svc.Update(context.Background(), "user-1", "not-a-uuid", UpdateInput{}, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	src, _ := svc.Create(ctx, "user-1", CreateInput{
		Title: "Platform",
		Data:  ResumeData{Summary: "Builds platforms"},
	})

	dup, err := svc.Duplicate(ctx, "user-1", src.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == src.ID || dup.Title != "Platform (Copy)" || dup.IsDefault {
		t.Fatalf("unexpected duplicate %+v", dup)
	}
	if dup.Data.Summary != "Builds platforms" {
		t.Fatalf("expected data copied")
	}
	if n, _ := svc.Count(ctx, "user-1"); n != 2 {
		t.Fatalf("expected 2 resumes, got %d", n)
	}

	if _, err := svc.Duplicate(ctx, "user-2", src.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other users to get ErrNotFound, got %v", err)
	}
}

func TestSetDefaultMovesFlag(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1", CreateInput{Title: "A"})
	b, _ := svc.Create(ctx, "user-1", CreateInput{Title: "B"})

	if _, err := svc.SetDefault(ctx, "user-1", b.ID); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	gotA, _ := svc.Get(ctx, "user-1", a.ID)
	gotB, _ := svc.Get(ctx, "user-1", b.ID)
	if gotA.IsDefault || !gotB.IsDefault {
		t.Fatalf("expected only B default, got A=%v B=%v", gotA.IsDefault, gotB.IsDefault)
	}
}

func TestImportValidatesSchema(t *testing.T) {
	svc, _ := newTestService(time.Now())
	ctx := context.Background()

	_, err := svc.Import(ctx, "user-1", []byte(`{"title":"x","data":{"experience":[{"company":"Acme"}]}}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ValidationError to match ErrInvalidInput")
	}
	if len(verr.Errors) < 2 {
		t.Fatalf("expected missing personalInfo and position, got %+v", verr.Errors)
	}

	res, err := svc.Import(ctx, "user-1", []byte(`{
		"title": "Imported",
		"template": "elegant",
		"data": {
			"personalInfo": {"fullName": "Ada Lovelace"},
			"experience": [{"company": "Analytical Engines", "position": "Programmer"}]
		}
	}`))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.Template != "elegant" || res.Data.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("unexpected import result %+v", res)
	}

	doc, err := svc.Export(ctx, "user-1", res.ID)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if doc.Title != "Imported" || len(doc.Data.Experience) != 1 {
		t.Fatalf("unexpected export %+v", doc)
	}
}

func TestImportRejectsMalformedJSON(t *testing.T) {
	svc, _ := newTestService(time.Now())
	if _, err := svc.Import(context.Background(), "user-1", []byte(`{`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
