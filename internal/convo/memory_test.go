package convo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/llm"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/storage"
)

const character = "صلاح الدين الأيوبي"

func newTestMemory(t *testing.T, model llm.LLM, opts ...MemoryOption) (*Memory, *Store) {
	t.Helper()
	store, err := NewStore(storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	memory, err := NewMemory(store, model, "u1", opts...)
	if err != nil {
		t.Fatalf("creating memory: %v", err)
	}
	return memory, store
}

func TestMemory_AppendPersistsTurnPairs(t *testing.T) {
	ctx := context.Background()
	memory, store := newTestMemory(t, llm.NewMockLLM("ملخص"))

	if err := memory.Append(ctx, character, "من أنت؟", "أنا صلاح الدين."); err != nil {
		t.Fatalf("append: %v", err)
	}

	// The flush must be visible through a fresh load, not just the view.
	record, err := store.Load(ctx, "u1", character)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(record.Turns) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(record.Turns))
	}
	if record.Turns[0].Role != RoleHuman || record.Turns[1].Role != RoleAssistant {
		t.Errorf("turn roles out of order: %v, %v", record.Turns[0].Role, record.Turns[1].Role)
	}
}

func TestMemory_RenderVerbatimWithinBudget(t *testing.T) {
	ctx := context.Background()
	model := llm.NewMockLLM("ملخص")
	memory, _ := newTestMemory(t, model)

	if err := memory.Append(ctx, character, "من أنت؟", "أنا صلاح الدين."); err != nil {
		t.Fatalf("append: %v", err)
	}

	rendered, err := memory.Render(ctx, character)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(rendered, "من أنت؟") || !strings.Contains(rendered, "أنا صلاح الدين.") {
		t.Errorf("verbatim render missing turns: %q", rendered)
	}
	if model.Calls() != 0 {
		t.Errorf("no summarization expected within budget, got %d LLM calls", model.Calls())
	}
}

func TestMemory_SummarizesOnOverflow(t *testing.T) {
	ctx := context.Background()
	model := llm.NewMockLLM("ملخص المحادثة السابقة.")
	memory, _ := newTestMemory(t, model, WithBudget(50))

	long := strings.Repeat("تحدثنا عن معركة حطين وفتح القدس. ", 5)
	for i := 0; i < 6; i++ {
		q := fmt.Sprintf("سؤال %d: %s", i, long)
		if err := memory.Append(ctx, character, q, long); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	rendered, err := memory.Render(ctx, character)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if model.Calls() == 0 {
		t.Fatal("expected a summarization call past the budget")
	}
	if !strings.Contains(rendered, "ملخص المحادثة السابقة.") {
		t.Errorf("render does not include the running summary: %q", rendered)
	}
	// The most recent turn pair always stays verbatim.
	if !strings.Contains(rendered, "سؤال 5") {
		t.Errorf("most recent question was summarized away: %q", rendered)
	}
}

func TestMemory_RenderStaysBounded(t *testing.T) {
	ctx := context.Background()
	memory, _ := newTestMemory(t, llm.NewMockLLM("ملخص قصير."), WithBudget(80))

	turn := strings.Repeat("كلام طويل عن التاريخ. ", 10)
	var maxLen int
	for i := 0; i < 40; i++ {
		if err := memory.Append(ctx, character, turn, turn); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		rendered, err := memory.Render(ctx, character)
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if len(rendered) > maxLen {
			maxLen = len(rendered)
		}
	}

	// Bound: summary + the retained verbatim pair, with headroom.
	limit := 4*len(turn) + 400
	if maxLen > limit {
		t.Errorf("render grew with conversation length: %d bytes (limit %d)", maxLen, limit)
	}
}

func TestMemory_SummarizerFailurePropagates(t *testing.T) {
	ctx := context.Background()
	model := llm.NewMockLLMWithError(fmt.Errorf("%w: rate limited", llm.ErrLLMFailed))
	memory, _ := newTestMemory(t, model, WithBudget(10))

	long := strings.Repeat("نص طويل جداً. ", 20)
	for i := 0; i < 4; i++ {
		if err := memory.Append(ctx, character, long, long); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	if _, err := memory.Render(ctx, character); !errors.Is(err, llm.ErrLLMFailed) {
		t.Errorf("expected ErrLLMFailed, got %v", err)
	}
}

func TestMemory_ResetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	memory, store := newTestMemory(t, llm.NewMockLLM("ملخص"))

	if err := memory.Append(ctx, character, "سؤال", "جواب"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := memory.Reset(ctx, character); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := memory.Reset(ctx, character); err != nil {
		t.Errorf("second reset must succeed: %v", err)
	}

	record, err := store.Load(ctx, "u1", character)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(record.Turns) != 0 {
		t.Errorf("persisted record not emptied: %d turns", len(record.Turns))
	}

	turns, err := memory.History(ctx, character)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("history after reset: %d turns", len(turns))
	}
}

func TestMemory_LoadsPersistedHistoryOnFirstUse(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	seeded, err := NewMemory(store, llm.NewMockLLM("ملخص"), "u1")
	if err != nil {
		t.Fatalf("creating memory: %v", err)
	}
	if err := seeded.Append(ctx, character, "سؤال قديم", "جواب قديم"); err != nil {
		t.Fatalf("append: %v", err)
	}

	// A second memory over the same store stands in for a new session.
	restored, err := NewMemory(store, llm.NewMockLLM("ملخص"), "u1")
	if err != nil {
		t.Fatalf("creating memory: %v", err)
	}
	turns, err := restored.History(ctx, character)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 restored turns, got %d", len(turns))
	}
	if turns[0].Content != "سؤال قديم" {
		t.Errorf("unexpected restored turn: %q", turns[0].Content)
	}
}
