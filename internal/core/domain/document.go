package domain

// RawDocument is one named blob handed over by the caller.
type RawDocument struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	Size     int64  `json:"size"`
	// Err is set by a source that listed the document but could not read it.
	// The batch records such a document as unreadable and carries on.
	Err error `json:"-"`
}

// EffectiveSize is the declared size, or the content length when no size was declared.
func (d RawDocument) EffectiveSize() int64 {
	if d.Size > 0 {
		return d.Size
	}
	return int64(len(d.Content))
}

// TotalSize sums EffectiveSize over docs.
func TotalSize(docs []RawDocument) int64 {
	var total int64
	for _, doc := range docs {
		total += doc.EffectiveSize()
	}
	return total
}

// Span is a half-open index range [Start, End) over a document list.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }
