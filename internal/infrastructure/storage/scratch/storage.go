// Package scratch spools documents to local files for the duration of one
// decode so that decoders can seek instead of holding everything in memory.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

type Storage struct {
	basePath string
	owned    bool
}

// New uses basePath, or a fresh temporary directory that Close removes when
// basePath is empty.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		dir, err := os.MkdirTemp("", "resume-scratch-*")
		if err != nil {
			return nil, fmt.Errorf("create scratch dir: %w", err)
		}
		return &Storage{basePath: dir, owned: true}, nil
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

func (s *Storage) Path() string { return s.basePath }

func (s *Storage) Save(ctx context.Context, key string, data io.Reader) (int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("write file: %w", err)
	}
	return n, nil
}

func (s *Storage) Open(_ context.Context, key string) (ports.ReadAtCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Remove is idempotent; a missing artifact is not an error.
func (s *Storage) Remove(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Close deletes the directory when New created it.
func (s *Storage) Close() error {
	if !s.owned {
		return nil
	}
	return os.RemoveAll(s.basePath)
}

func (s *Storage) resolve(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve scratch key", fmt.Errorf("invalid key %q", key))
	}
	return filepath.Join(s.basePath, key), nil
}
