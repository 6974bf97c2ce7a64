package workspace

import (
	"context"
	"testing"
)

func newTestIndex(t *testing.T) *DocIndex {
	t.Helper()
	idx, err := NewDocIndex()
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	return idx
}

func TestDocIndexRoundTripMetadata(t *testing.T) {
	idx := newTestIndex(t)
	chunks := []Chunk{
		{Text: "the capital of france is paris", ChunkIndex: 0, Meta: ChunkMetadata{Source: "geo.txt", FilePath: "/tmp/geo.txt"}},
		{Text: "go is a statically typed language", ChunkIndex: 1, Meta: ChunkMetadata{Source: "go.md", FilePath: "/tmp/go.md"}},
	}
	if err := idx.Add(chunks, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 chunks, got %d", idx.Len())
	}

	hits, err := idx.Retrieve(context.Background(), "capital of france", nil, 2)
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one hit")
	}
	if hits[0].Source != "geo.txt" || hits[0].FilePath != "/tmp/geo.txt" {
		t.Errorf("metadata lost on retrieval: %+v", hits[0])
	}
}

func TestFuseRRFPrefersAgreement(t *testing.T) {
	a := []Hit{{DocID: "x", Rank: 1}, {DocID: "y", Rank: 2}}
	b := []Hit{{DocID: "y", Rank: 1}, {DocID: "z", Rank: 2}}

	fused := FuseRRF(a, b, 3)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	if fused[0].DocID != "y" {
		t.Errorf("doc present in both rankings should fuse first, got %s", fused[0].DocID)
	}
	for i, h := range fused {
		if h.Rank != i+1 {
			t.Errorf("ranks not reassigned: %+v", fused)
		}
	}
}

func TestFuseRRFCapsAtK(t *testing.T) {
	a := []Hit{{DocID: "a", Rank: 1}, {DocID: "b", Rank: 2}, {DocID: "c", Rank: 3}}
	fused := FuseRRF(a, nil, 2)
	if len(fused) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(fused))
	}
}

func TestRerankDeterministicAndBounded(t *testing.T) {
	idx := newTestIndex(t)
	chunks := []Chunk{
		{DocID: "a", Text: "alpha"},
		{DocID: "b", Text: "beta"},
		{DocID: "c", Text: "gamma"},
	}
	vecs := [][]float32{{1, 0}, {0, 1}, {0.9, 0.1}}
	if err := idx.Add(chunks, vecs); err != nil {
		t.Fatalf("add: %v", err)
	}

	hits := []Hit{{DocID: "b", Rank: 1}, {DocID: "a", Rank: 2}, {DocID: "c", Rank: 3}}
	qvec := []float32{1, 0}

	first := idx.Rerank(qvec, hits, 2)
	second := idx.Rerank(qvec, hits, 2)
	if len(first) != 2 {
		t.Fatalf("expected rerank bounded at 2, got %d", len(first))
	}
	if first[0].DocID != "a" {
		t.Errorf("expected closest vector first, got %s", first[0].DocID)
	}
	for i := range first {
		if first[i].DocID != second[i].DocID {
			t.Errorf("rerank not deterministic: %v vs %v", first, second)
		}
	}

	// Without a query vector the input order is preserved.
	plain := idx.Rerank(nil, hits, 2)
	if plain[0].DocID != "b" || plain[1].DocID != "a" {
		t.Errorf("orderless rerank should keep input order, got %v", plain)
	}

	if got := idx.Rerank(qvec, nil, 3); len(got) != 0 {
		t.Errorf("empty input should stay empty, got %v", got)
	}
}
