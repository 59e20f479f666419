package rag

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// MockEmbedder is a deterministic Embedder implementation for testing.
// Each text maps to a unit vector derived from its hash, so identical texts
// always embed identically and distinct texts rarely collide.
type MockEmbedder struct {
	// Dimension of produced vectors. Defaults to 8.
	Dimension int

	// Model is the reported model identifier. Defaults to "mock-embedder".
	Model string

	// Error, if set, is returned by Embed.
	Error error

	// BatchCalls counts Embed invocations, for asserting that index builds
	// embed at most once.
	BatchCalls int

	// Texts records every text embedded, in call order.
	Texts []string
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{Dimension: dimension}
}

// GetModel returns the mock model identifier.
func (m *MockEmbedder) GetModel() string {
	if m.Model != "" {
		return m.Model
	}
	return "mock-embedder"
}

// GetDimension returns the mock vector dimension.
func (m *MockEmbedder) GetDimension() int {
	if m.Dimension > 0 {
		return m.Dimension
	}
	return 8
}

// Embed produces deterministic hash-derived unit vectors.
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	m.BatchCalls++
	if m.Error != nil {
		return nil, m.Error
	}
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		m.Texts = append(m.Texts, text)
		records[i] = EmbeddingRecord{
			Text:      text,
			Embedding: m.vector(text),
			Index:     i,
			Model:     m.GetModel(),
		}
	}
	return records, nil
}

func (m *MockEmbedder) vector(text string) []float32 {
	dim := m.GetDimension()
	sum := sha256.Sum256([]byte(text))

	v := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Stretch the digest with a counter when dim exceeds it.
		chunk := sha256.Sum256(append(sum[:], byte(i/8)))
		bits := binary.BigEndian.Uint32(chunk[(i%8)*4 : (i%8)*4+4])
		v[i] = float32(bits%1000)/500.0 - 1.0
	}
	Normalize(v)
	return v
}
