// Package export resolves tabular exporters by format name.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/core/ports"
)

type Registry struct {
	exporters map[string]ports.Exporter
}

func NewRegistry() *Registry {
	return &Registry{exporters: map[string]ports.Exporter{}}
}

// Register adds exp under format, replacing any previous registration.
func (r *Registry) Register(format string, exp ports.Exporter) *Registry {
	r.exporters[strings.ToLower(format)] = exp
	return r
}

func (r *Registry) Exporter(format string) (ports.Exporter, error) {
	exp, ok := r.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"resolve exporter",
			fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(r.Formats(), ", ")),
		)
	}
	return exp, nil
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Columns returns fields, or every field when fields is empty.
func Columns(fields []domain.Field) ([]domain.Field, error) {
	if len(fields) == 0 {
		return domain.AllFields, nil
	}
	seen := make(map[domain.Field]struct{}, len(fields))
	for _, f := range fields {
		if !isKnown(f) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "select columns", fmt.Errorf("unknown field %q", f))
		}
		if _, dup := seen[f]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "select columns", errors.New("duplicate field "+string(f)))
		}
		seen[f] = struct{}{}
	}
	return fields, nil
}

func isKnown(f domain.Field) bool {
	for _, known := range domain.AllFields {
		if f == known {
			return true
		}
	}
	return false
}
