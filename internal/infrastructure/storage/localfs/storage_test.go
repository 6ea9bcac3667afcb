package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWriterWritesRelativeAndAbsolute(t *testing.T) {
	base := t.TempDir()
	w, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := w.Write(context.Background(), "out/resume_data.csv", []byte("a,b")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(base, "out", "resume_data.csv"))
	if err != nil || string(raw) != "a,b" {
		t.Fatalf("unexpected file content %q, err = %v", raw, err)
	}

	abs := filepath.Join(t.TempDir(), "x.json")
	if err := w.Write(context.Background(), abs, []byte("{}")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write(context.Background(), abs, []byte("[]")); err != nil {
		t.Fatalf("overwrite Write() error = %v", err)
	}
	raw, _ = os.ReadFile(abs)
	if string(raw) != "[]" {
		t.Fatalf("expected overwritten content, got %q", raw)
	}
	entries, _ := os.ReadDir(filepath.Dir(abs))
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left, got %d entries", len(entries))
	}
}
