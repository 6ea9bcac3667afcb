package plaintext

import (
	"bytes"
	"context"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

func decode(t *testing.T, raw []byte) (string, error) {
	t.Helper()
	return NewDecoder().Decode(context.Background(), "cv.txt", bytes.NewReader(raw), int64(len(raw)))
}

func TestDecodeTrimsText(t *testing.T) {
	got, err := decode(t, []byte("\ufeff  Jane Roe\nPune \n"))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != "Jane Roe\nPune" {
		t.Fatalf("Decode() = %q", got)
	}
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	for _, endian := range []unicode.Endianness{unicode.LittleEndian, unicode.BigEndian} {
		raw, err := unicode.UTF16(endian, unicode.UseBOM).NewEncoder().Bytes([]byte("Ravi Kumar\nravi@example.com\n"))
		if err != nil {
			t.Fatalf("encode fixture: %v", err)
		}
		got, err := decode(t, raw)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != "Ravi Kumar\nravi@example.com" {
			t.Fatalf("Decode() = %q", got)
		}
	}
}

func TestDecodeRejectsBinary(t *testing.T) {
	tests := map[string][]byte{
		"invalid utf-8":    {0xc3, 0x28, 0x41},
		"nul bytes":        []byte("abc\x00def"),
		"odd utf-16 bytes": {0xff, 0xfe, 0x41},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := decode(t, raw); !domain.IsKind(err, domain.ErrUnreadableDocument) {
				t.Fatalf("Decode() error = %v, want unreadable document", err)
			}
		})
	}
}
