package chunking

import "github.com/kirillkom/resume-extractor/internal/core/domain"

const DefaultChunkSize = 10

type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

// Partition covers [0, n) with contiguous spans of size elements; only the
// last span may be shorter. A non-positive size falls back to DefaultChunkSize.
func (s *Splitter) Partition(n, size int) []domain.Span {
	if n <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	out := make([]domain.Span, 0, n/size+1)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, domain.Span{Start: start, End: end})
	}
	return out
}
