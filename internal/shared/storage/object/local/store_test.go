package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-builder/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mime, err := store.Save(ctx, "user-1", "logo.png", strings.NewReader("\x89PNG\r\n\x1a\nimage"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != 13 {
		t.Fatalf("expected 13 bytes, got %d", size)
	}
	if mime != "image/png" {
		t.Fatalf("expected image/png, got %q", mime)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.HasSuffix(string(data), "image") {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected error for traversal key")
	}
}
