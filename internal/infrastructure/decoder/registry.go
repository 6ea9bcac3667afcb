// Package decoder selects a text decoder for a document by extension, falling
// back to content sniffing for unknown extensions.
package decoder

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

const sniffLen = 512

type Registry struct {
	byExt map[string]ports.TextDecoder
	pdf   ports.TextDecoder
	html  ports.TextDecoder
	text  ports.TextDecoder
}

func NewRegistry(pdf, html, text ports.TextDecoder) *Registry {
	return &Registry{
		byExt: map[string]ports.TextDecoder{
			".pdf":  pdf,
			".html": html,
			".htm":  html,
			".txt":  text,
			".text": text,
			".md":   text,
		},
		pdf:  pdf,
		html: html,
		text: text,
	}
}

// Supported reports whether filename has an extension with a dedicated decoder.
func (r *Registry) Supported(filename string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Extensions lists the recognised extensions, sorted.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) Decode(ctx context.Context, filename string, reader io.ReaderAt, size int64) (string, error) {
	if dec, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]; ok {
		return dec.Decode(ctx, filename, reader, size)
	}

	dec, err := r.sniff(reader, size)
	if err != nil {
		return "", err
	}
	return dec.Decode(ctx, filename, reader, size)
}

func (r *Registry) sniff(reader io.ReaderAt, size int64) (ports.TextDecoder, error) {
	head := make([]byte, min(size, sniffLen))
	n, err := reader.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, domain.WrapError(domain.ErrUnreadableDocument, "sniff document", err)
	}
	contentType := http.DetectContentType(head[:n])
	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return r.pdf, nil
	case strings.HasPrefix(contentType, "text/html"):
		return r.html, nil
	case strings.HasPrefix(contentType, "text/plain"):
		return r.text, nil
	default:
		return nil, domain.WrapError(
			domain.ErrUnreadableDocument,
			"sniff document",
			fmt.Errorf("unsupported content type %s", contentType),
		)
	}
}
