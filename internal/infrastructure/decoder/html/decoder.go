package html

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

// Elements that start a new line in rendered text.
const blockSelector = "p, div, li, tr, h1, h2, h3, h4, h5, h6, section, article, header, footer, ul, ol, table"

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode renders an HTML resume to text, one block element per line.
func (d *Decoder) Decode(_ context.Context, _ string, r io.ReaderAt, size int64) (string, error) {
	doc, err := goquery.NewDocumentFromReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "parse html", err)
	}

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.PrependHtml("\n")
		s.AppendHtml("\n")
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	lines := strings.Split(root.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}
