package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := Assets{
		HTML: "<!DOCTYPE html><html><head><title>T</title></head><body><h1>hi</h1></body></html>",
		CSS:  "h1 { color: rebeccapurple; }",
		JS:   "console.log('ready');",
	}
	if err := store.Write(ctx, "art-1", in); err != nil {
		t.Fatalf("Write: %v", err)
	}

	out, err := store.Read(ctx, "art-1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: got %+v", out)
	}

	combined, err := store.ReadCombined(ctx, "art-1")
	if err != nil {
		t.Fatalf("ReadCombined: %v", err)
	}
	if !strings.Contains(combined, in.CSS) {
		t.Error("combined document missing CSS verbatim")
	}
	if !strings.Contains(combined, in.JS) {
		t.Error("combined document missing JS verbatim")
	}
}

func TestWriteRejectsExistingID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assets := Assets{HTML: "<p>a</p>", CSS: "p{}", JS: ";"}
	if err := store.Write(ctx, "dup", assets); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	err := store.Write(ctx, "dup", assets)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second Write err = %v, want ErrExists", err)
	}
}

func TestReadMissingID(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Read(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read missing err = %v, want ErrNotFound", err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Write(ctx, "gone", Assets{HTML: "x", CSS: "y", JS: "z"}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Read(ctx, "gone"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Read after delete err = %v, want ErrNotFound", err)
	}
	// Deleting an absent id is not an error.
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestInvalidArtifactID(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"", "../escape", "a/b", `a\b`} {
		if err := store.Write(context.Background(), id, Assets{}); err == nil {
			t.Errorf("Write(%q) accepted invalid id", id)
		}
	}
}
