package rag

import (
	"errors"
	"testing"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/chunk"
)

func unit(vals ...float32) []float32 {
	v := make([]float32, len(vals))
	copy(v, vals)
	Normalize(v)
	return v
}

func testIndex(t *testing.T) *Index {
	t.Helper()

	chunks := []chunk.Chunk{
		{Text: "alpha", Ordinal: 0},
		{Text: "beta", Ordinal: 1},
		{Text: "gamma", Ordinal: 2},
	}
	records := []EmbeddingRecord{
		{Text: "alpha", Embedding: unit(1, 0, 0)},
		{Text: "beta", Embedding: unit(0, 1, 0)},
		{Text: "gamma", Embedding: unit(1, 0, 0)}, // same direction as alpha
	}

	idx, err := NewIndex("m", 3, chunks, records)
	if err != nil {
		t.Fatalf("building index: %v", err)
	}
	return idx
}

func TestIndexSearch_NearestFirst(t *testing.T) {
	idx := testIndex(t)

	hits, err := idx.Search(unit(0, 1, 0), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Chunk.Text != "beta" {
		t.Errorf("expected beta first, got %q", hits[0].Chunk.Text)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("scores not descending: %v vs %v", hits[0].Score, hits[1].Score)
	}
}

func TestIndexSearch_TiesBreakByOrdinal(t *testing.T) {
	idx := testIndex(t)

	// alpha and gamma score identically against this query.
	hits, err := idx.Search(unit(1, 0, 0), 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if hits[0].Chunk.Ordinal != 0 || hits[1].Chunk.Ordinal != 2 {
		t.Errorf("tie not broken by ordinal: got %d then %d",
			hits[0].Chunk.Ordinal, hits[1].Chunk.Ordinal)
	}
}

func TestIndexSearch_KLargerThanIndex(t *testing.T) {
	idx := testIndex(t)

	hits, err := idx.Search(unit(1, 1, 1), 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("expected all 3 chunks, got %d", len(hits))
	}
}

func TestIndexSearch_DimensionMismatch(t *testing.T) {
	idx := testIndex(t)

	_, err := idx.Search(unit(1, 0), 1)
	if !errors.Is(err, ErrDimensionWrong) {
		t.Errorf("expected ErrDimensionWrong, got %v", err)
	}
}

func TestIndexCodec_RoundTrip(t *testing.T) {
	idx := testIndex(t)

	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeIndex(data, "m", 3)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, _ := idx.Search(unit(0, 1, 0), 2)
	got, err := decoded.Search(unit(0, 1, 0), 2)
	if err != nil {
		t.Fatalf("search on decoded index: %v", err)
	}
	for i := range want {
		if want[i].Chunk != got[i].Chunk || want[i].Score != got[i].Score {
			t.Errorf("hit %d differs after round trip", i)
		}
	}
}

func TestIndexCodec_ModelMismatch(t *testing.T) {
	idx := testIndex(t)
	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if _, err := DecodeIndex(data, "other-model", 3); !errors.Is(err, ErrIndexMismatch) {
		t.Errorf("expected ErrIndexMismatch for model change, got %v", err)
	}
	if _, err := DecodeIndex(data, "m", 4); !errors.Is(err, ErrIndexMismatch) {
		t.Errorf("expected ErrIndexMismatch for dimension change, got %v", err)
	}
}

func TestIndexCodec_Corrupt(t *testing.T) {
	if _, err := DecodeIndex([]byte("not a gob stream"), "m", 3); !errors.Is(err, ErrIndexCorrupt) {
		t.Errorf("expected ErrIndexCorrupt, got %v", err)
	}
}
