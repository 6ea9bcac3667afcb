package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

// PageObserver receives the page count of every PDF that passes preflight.
type PageObserver interface {
	ObservePages(pages int)
}

var disableConfigDir sync.Once

type Decoder struct {
	logger *slog.Logger
	pages  PageObserver
	conf   *model.Configuration
}

func NewDecoder(logger *slog.Logger, pages PageObserver) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Decoder{logger: logger, pages: pages, conf: conf}
}

// Decode concatenates the plain text of every readable page. Pages that have
// no content or fail to render are skipped; a document whose structure cannot
// be read at all is reported as unreadable.
func (d *Decoder) Decode(ctx context.Context, filename string, r io.ReaderAt, size int64) (string, error) {
	if size <= 0 {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "decode pdf", errors.New("empty document"))
	}
	d.preflight(filename, r, size)
	return d.extract(ctx, filename, r, size)
}

// preflight counts pages with pdfcpu. It only feeds metrics and logs; the text
// reader below is more tolerant of damaged files, so failure here is not fatal.
func (d *Decoder) preflight(filename string, r io.ReaderAt, size int64) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Warn("pdf_preflight_panicked", "filename", filename, "panic", fmt.Sprint(rec))
		}
	}()
	pages, err := api.PageCount(io.NewSectionReader(r, 0, size), d.conf)
	if err != nil {
		d.logger.Warn("pdf_preflight_failed", "filename", filename, "error", err)
		return
	}
	if d.pages != nil {
		d.pages.ObservePages(pages)
	}
	d.logger.Debug("pdf_preflight", "filename", filename, "pages", pages)
}

func (d *Decoder) extract(ctx context.Context, filename string, r io.ReaderAt, size int64) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = domain.WrapError(domain.ErrUnreadableDocument, "decode pdf", fmt.Errorf("pdf reader panic: %v", rec))
		}
	}()

	reader, err := pdfreader.NewReader(r, size)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "open pdf", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			d.logger.Debug("pdf_page_skipped", "filename", filename, "page", i, "error", err)
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
