package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

// IngestDirectoryUseCase parses every supported file of a directory. It backs
// the worker and the CLI.
type IngestDirectoryUseCase struct {
	source ports.DocumentSource
	parser ports.BatchParser
}

func NewIngestDirectoryUseCase(source ports.DocumentSource, parser ports.BatchParser) *IngestDirectoryUseCase {
	return &IngestDirectoryUseCase{
		source: source,
		parser: parser,
	}
}

func (uc *IngestDirectoryUseCase) Ingest(
	ctx context.Context,
	req domain.BatchRequest,
	observer ports.ProgressObserver,
) (*domain.ParseResult, error) {
	if strings.TrimSpace(req.SourceDir) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest directory", errors.New("source directory is required"))
	}
	fields, err := domain.ParseFields(req.Fields)
	if err != nil {
		return nil, err
	}

	docs, err := uc.source.Load(ctx, req.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("load documents from %s: %w", req.SourceDir, err)
	}

	return uc.parser.Parse(ctx, docs, domain.ExportOptions{
		Format:  req.Format,
		Fields:  fields,
		BatchID: req.BatchID,
		Output:  req.OutputPath,
	}, observer)
}

// maxSafeNameLen keeps scratch file names well under common 255 byte limits.
const maxSafeNameLen = 96

// sanitizeFilename reduces name to a short ASCII base name. Long names keep
// their tail so the extension survives.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "/" {
		return "document.bin"
	}
	if len(base) > maxSafeNameLen {
		base = base[len(base)-maxSafeNameLen:]
	}
	return base
}
