package files

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirResolver_TopLevelMatch(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "abc123_report.xlsx")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewDirResolver(dir)
	got, ok := r.Resolve("abc123")
	if !ok {
		t.Fatalf("expected resolve to succeed")
	}
	if got != want {
		t.Fatalf("resolved %q, want %q", got, want)
	}
}

func TestDirResolver_NestedMatch(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "user-7")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	want := filepath.Join(sub, "def456_notes.txt")
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewDirResolver(dir)
	got, ok := r.Resolve("def456")
	if !ok {
		t.Fatalf("expected nested resolve to succeed")
	}
	if got != want {
		t.Fatalf("resolved %q, want %q", got, want)
	}
}

func TestDirResolver_Missing(t *testing.T) {
	r := NewDirResolver(t.TempDir())
	if _, ok := r.Resolve("nope"); ok {
		t.Fatalf("expected missing file to resolve false")
	}
}

func TestDirResolver_EmptyID(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "anything.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := NewDirResolver(dir)
	if _, ok := r.Resolve("  "); ok {
		t.Fatalf("blank id must never match")
	}
}
