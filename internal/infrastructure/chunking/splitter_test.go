package chunking

import (
	"testing"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
)

func TestSplitterPartition(t *testing.T) {
	s := NewSplitter()

	got := s.Partition(5, 2)
	want := []domain.Span{{Start: 0, End: 2}, {Start: 2, End: 4}, {Start: 4, End: 5}}
	if len(got) != len(want) {
		t.Fatalf("Partition(5, 2) len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("span %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSplitterPartitionEdgeCases(t *testing.T) {
	s := NewSplitter()

	if got := s.Partition(0, 3); len(got) != 0 {
		t.Fatalf("Partition(0, 3) = %v, want empty", got)
	}
	if got := s.Partition(3, 10); len(got) != 1 || got[0].Len() != 3 {
		t.Fatalf("Partition(3, 10) = %v, want one span of 3", got)
	}
	if got := s.Partition(25, 0); len(got) != 3 || got[2].Len() != 5 {
		t.Fatalf("Partition(25, 0) = %v, want default size spans", got)
	}
}
