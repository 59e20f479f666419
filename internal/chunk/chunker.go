// Package chunk splits raw article text into overlapping passages for
// embedding and retrieval.
package chunk

import "strings"

// Default splitting parameters, tuned for encyclopedia articles.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunk is a bounded passage of source text with positional metadata.
type Chunk struct {
	// Text is the passage content, including the leading overlap region.
	Text string `json:"text"`

	// Source labels the document this chunk came from (e.g. "Wikipedia: <name>").
	// Filled in by the index builder, not by the chunker.
	Source string `json:"source"`

	// Ordinal is the chunk's position within the source document.
	Ordinal int `json:"ordinal"`

	// Overlap is the number of leading runes shared with the previous chunk.
	Overlap int `json:"overlap"`
}

// Chunker splits text into rune-bounded passages, preferring to cut at
// paragraph breaks, then line breaks, then spaces.
type Chunker struct {
	size    int
	overlap int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithSize sets the maximum chunk length in runes.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between adjacent chunks in runes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:    DefaultSize,
		overlap: DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for forward progress.
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}

	return c
}

// separators, in priority order. Earlier entries are preferred when
// choosing a cut point.
var separators = []string{"\n\n", "\n", " "}

// Split divides text into chunks. Each chunk after the first starts with
// the trailing runes of its predecessor so that context survives the
// boundary; the Overlap field records how many. Concatenating the
// non-overlapping portions of all chunks reconstructs the input exactly.
// Splitting is deterministic.
func (c *Chunker) Split(text string) []Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	var chunks []Chunk

	start := 0
	for start < len(runes) {
		// The overlap region consumes part of the window on every chunk
		// after the first, so total chunk length stays within size.
		span := c.size
		if start > 0 {
			span = c.size - c.overlap
		}

		end := start + span
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		lo := start - c.overlap
		if lo < 0 {
			lo = 0
		}

		chunks = append(chunks, Chunk{
			Text:    string(runes[lo:end]),
			Ordinal: len(chunks),
			Overlap: start - lo,
		})

		start = end
	}

	return chunks
}

// cutPoint returns the end of the chunk beginning at start, at most limit.
// It scans backwards from limit for the highest-priority separator and cuts
// just after it, falling back to a hard cut at limit.
func cutPoint(runes []rune, start, limit int) int {
	for _, sep := range separators {
		sepRunes := []rune(sep)
		// Latest position where the separator still fits inside the window.
		for i := limit - len(sepRunes); i > start; i-- {
			if string(runes[i:i+len(sepRunes)]) == sep {
				return i + len(sepRunes)
			}
		}
	}
	return limit
}

// Reassemble concatenates the non-overlapping portions of chunks, undoing
// Split. Useful for verifying that no content was dropped.
func Reassemble(chunks []Chunk) string {
	var b strings.Builder
	for _, ch := range chunks {
		runes := []rune(ch.Text)
		b.WriteString(string(runes[ch.Overlap:]))
	}
	return b.String()
}
