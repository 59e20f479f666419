package chunk

import (
	"strings"
	"testing"
)

func TestSplit_Empty(t *testing.T) {
	c := New()
	if got := c.Split(""); got != nil {
		t.Errorf("expected no chunks for empty input, got %d", len(got))
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	c := New()
	chunks := c.Split("short paragraph")

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "short paragraph" {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].Ordinal != 0 {
		t.Errorf("expected ordinal 0, got %d", chunks[0].Ordinal)
	}
	if chunks[0].Overlap != 0 {
		t.Errorf("first chunk must have no overlap, got %d", chunks[0].Overlap)
	}
}

func TestSplit_PrefersParagraphBreaks(t *testing.T) {
	c := New(WithSize(50), WithOverlap(0))

	text := strings.Repeat("a", 20) + "\n\n" + strings.Repeat("b", 20) + " " + strings.Repeat("c", 30)
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, "\n\n") {
		t.Errorf("expected first chunk to end at the paragraph break, got %q", chunks[0].Text)
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	texts := []string{
		strings.Repeat("كان صلاح الدين الأيوبي قائداً عسكرياً.\n", 120),
		strings.Repeat("word ", 800),
		strings.Repeat("x", 3500), // no separators at all
		"para one\n\npara two\n\n" + strings.Repeat("line\n", 500),
	}

	c := New()
	for i, text := range texts {
		chunks := c.Split(text)
		if got := Reassemble(chunks); got != text {
			t.Errorf("text %d: reconstruction mismatch (got %d runes, want %d)",
				i, len([]rune(got)), len([]rune(text)))
		}
	}
}

func TestSplit_ChunkSizeBound(t *testing.T) {
	c := New(WithSize(100), WithOverlap(20))
	chunks := c.Split(strings.Repeat("م", 1000))

	for _, ch := range chunks {
		if n := len([]rune(ch.Text)); n > 100 {
			t.Errorf("chunk %d exceeds size: %d runes", ch.Ordinal, n)
		}
	}
}

func TestSplit_OverlapSharedWithPredecessor(t *testing.T) {
	c := New(WithSize(100), WithOverlap(20))
	chunks := c.Split(strings.Repeat("0123456789", 50))

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		overlap := chunks[i].Overlap

		if overlap != 20 {
			t.Errorf("chunk %d: expected overlap 20, got %d", i, overlap)
		}
		lead := string(cur[:overlap])
		tail := string(prev[len(prev)-overlap:])
		if lead != tail {
			t.Errorf("chunk %d: overlap %q does not match predecessor tail %q", i, lead, tail)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	c := New()
	text := strings.Repeat("جملة عربية قصيرة للاختبار. ", 200)

	first := c.Split(text)
	second := c.Split(text)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
