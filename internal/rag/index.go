package rag

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"sort"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/chunk"
)

var (
	ErrIndexCorrupt   = errors.New("persisted index is corrupt")
	ErrIndexMismatch  = errors.New("index was built with a different embedder")
	ErrDimensionWrong = errors.New("query vector dimension does not match index")
)

// Hit is a retrieved passage with its similarity score.
type Hit struct {
	Chunk chunk.Chunk
	Score float32
}

// Index is an immutable similarity index over the chunks of one character's
// reference article. It records the embedder identity so a persisted index
// built with a different model is never silently reused. Built once, never
// mutated; safe for unsynchronized concurrent reads.
type Index struct {
	Model     string
	Dimension int
	Chunks    []chunk.Chunk
	Vectors   [][]float32
}

// NewIndex pairs chunks with their embedding records.
func NewIndex(model string, dimension int, chunks []chunk.Chunk, records []EmbeddingRecord) (*Index, error) {
	if len(chunks) != len(records) {
		return nil, fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(records))
	}

	vectors := make([][]float32, len(records))
	for i, rec := range records {
		if len(rec.Embedding) != dimension {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, want %d",
				ErrDimensionWrong, i, len(rec.Embedding), dimension)
		}
		vectors[i] = rec.Embedding
	}

	return &Index{
		Model:     model,
		Dimension: dimension,
		Chunks:    chunks,
		Vectors:   vectors,
	}, nil
}

// Search returns the k nearest chunks to the query vector, nearest first.
// Vectors are unit length, so dot product is cosine similarity. Ties break
// by ordinal ascending.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != idx.Dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionWrong, len(query), idx.Dimension)
	}
	if k <= 0 || len(idx.Chunks) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(idx.Chunks))
	for i, vec := range idx.Vectors {
		hits[i] = Hit{Chunk: idx.Chunks[i], Score: dot(query, vec)}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Chunk.Ordinal < hits[j].Chunk.Ordinal
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Encode serializes the index for persistence. gob keeps float32 vectors
// exact across the round trip.
func (idx *Index) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(idx); err != nil {
		return nil, fmt.Errorf("encoding index: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeIndex deserializes a persisted index and verifies it matches the
// configured embedder. A mismatch returns ErrIndexMismatch so the caller
// can rebuild instead of serving stale vectors.
func DecodeIndex(data []byte, model string, dimension int) (*Index, error) {
	var idx Index
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if idx.Model != model || idx.Dimension != dimension {
		return nil, fmt.Errorf("%w: index %s/%d, embedder %s/%d",
			ErrIndexMismatch, idx.Model, idx.Dimension, model, dimension)
	}
	return &idx, nil
}
