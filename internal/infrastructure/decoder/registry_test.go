package decoder

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

type namedDecoder string

func (n namedDecoder) Decode(context.Context, string, io.ReaderAt, int64) (string, error) {
	return string(n), nil
}

func newTestRegistry() *Registry {
	return NewRegistry(namedDecoder("pdf"), namedDecoder("html"), namedDecoder("text"))
}

func TestRegistryRoutesByExtension(t *testing.T) {
	r := newTestRegistry()
	tests := map[string]string{
		"cv.PDF":    "pdf",
		"cv.htm":    "html",
		"notes.txt": "text",
		"cv.md":     "text",
	}
	for name, want := range tests {
		got, err := r.Decode(context.Background(), name, bytes.NewReader([]byte("x")), 1)
		if err != nil {
			t.Fatalf("Decode(%s) error = %v", name, err)
		}
		if got != want {
			t.Fatalf("Decode(%s) used %s, want %s", name, got, want)
		}
	}
}

func TestRegistrySniffsUnknownExtensions(t *testing.T) {
	r := newTestRegistry()
	tests := []struct {
		content []byte
		want    string
	}{
		{content: []byte("%PDF-1.7\n..."), want: "pdf"},
		{content: []byte("<!DOCTYPE html><html><body>x</body></html>"), want: "html"},
		{content: []byte("Jane Roe\nPune"), want: "text"},
	}
	for _, tt := range tests {
		got, err := r.Decode(context.Background(), "upload", bytes.NewReader(tt.content), int64(len(tt.content)))
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != tt.want {
			t.Fatalf("sniffed %s, want %s", got, tt.want)
		}
	}

	png := []byte("\x89PNG\r\n\x1a\n0000")
	if _, err := r.Decode(context.Background(), "photo", bytes.NewReader(png), int64(len(png))); !domain.IsKind(err, domain.ErrUnreadableDocument) {
		t.Fatalf("expected unreadable document for png, got %v", err)
	}
}

func TestRegistrySupported(t *testing.T) {
	r := newTestRegistry()
	if !r.Supported("a.pdf") || r.Supported("a.docx") {
		t.Fatalf("unexpected Supported() result")
	}
}

func TestRegistryExtensionsSorted(t *testing.T) {
	got := newTestRegistry().Extensions()
	want := []string{".htm", ".html", ".md", ".pdf", ".text", ".txt"}
	if len(got) != len(want) {
		t.Fatalf("Extensions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Extensions() = %v, want %v", got, want)
		}
	}
}
