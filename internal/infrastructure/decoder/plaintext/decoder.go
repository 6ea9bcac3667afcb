package plaintext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

var (
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// Decoder reads UTF-8 text, and UTF-16 text when it starts with a byte order
// mark, as produced by Notepad's "Unicode" save option.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(_ context.Context, filename string, r io.ReaderAt, size int64) (string, error) {
	raw, err := io.ReadAll(io.NewSectionReader(r, 0, size))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "read text document", err)
	}

	text, err := toUTF8(raw)
	if err != nil {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "decode text document", fmt.Errorf("%s: %w", filename, err))
	}
	if strings.ContainsRune(text, 0) {
		return "", domain.WrapError(domain.ErrUnreadableDocument, "decode text document", errors.New("binary content"))
	}
	return strings.TrimSpace(strings.TrimPrefix(text, "\ufeff")), nil
}

func toUTF8(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		if len(raw)%2 != 0 {
			return "", errors.New("truncated UTF-16 text")
		}
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode UTF-16: %w", err)
		}
		return string(out), nil
	}
	if !utf8.Valid(raw) {
		return "", errors.New("not valid UTF-8")
	}
	return string(raw), nil
}
