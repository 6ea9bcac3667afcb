package fsdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Loader reads every supported file directly under a directory.
type Loader struct {
	supported   func(filename string) bool
	concurrency int
	// maxBytes caps the summed size of the listed files; zero disables the check.
	maxBytes int64
	readFile func(name string) ([]byte, error)
}

func New(supported func(filename string) bool, concurrency int, maxBytes int64) *Loader {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Loader{
		supported:   supported,
		concurrency: concurrency,
		maxBytes:    maxBytes,
		readFile:    os.ReadFile,
	}
}

// Load stats every supported file first and refuses the directory when the
// summed size is over the ceiling, before any content is read. A file that
// cannot be stat'ed or read comes back with Err set; only directory level
// failures and cancellation fail the whole load.
func (l *Loader) Load(ctx context.Context, location string) ([]domain.RawDocument, error) {
	dir := strings.TrimSpace(location)
	if dir == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "load directory", errors.New("directory is required"))
	}

	entries, err := l.scan(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.RawDocument, len(entries))
	var total int64
	for i, entry := range entries {
		docs[i].Filename = entry.Name()
		info, err := entry.Info()
		if err != nil {
			docs[i].Err = fmt.Errorf("stat %s: %w", entry.Name(), err)
			continue
		}
		docs[i].Size = info.Size()
		total += info.Size()
	}
	if l.maxBytes > 0 && total > l.maxBytes {
		return nil, domain.WrapError(
			domain.ErrSizeLimitExceeded,
			"load directory",
			fmt.Errorf("%s holds %d bytes, limit is %d", dir, total, l.maxBytes),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := range docs {
		if docs[i].Err != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := l.readFile(filepath.Join(dir, docs[i].Filename))
			if err != nil {
				docs[i].Err = fmt.Errorf("read %s: %w", docs[i].Filename, err)
				return nil
			}
			docs[i].Content = content
			docs[i].Size = int64(len(content))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// scan returns the supported regular files in dir sorted by name. Hidden files are skipped.
func (l *Loader) scan(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load directory", err)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	out := make([]fs.DirEntry, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		if l.supported != nil && !l.supported(name) {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}
