package convo

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/llm"
)

// DefaultBudget is the token budget for rendered memory.
const DefaultBudget = 1000

// Transcript role labels used when rendering memory into a prompt.
const (
	labelHuman     = "المستخدم"
	labelCharacter = "الشخصية"
)

// summaryPrompt folds older turns into the running summary. One LLM call
// per overflow.
const summaryPrompt = `لخص المحادثة التالية بين المستخدم وشخصية تاريخية في فقرة واحدة موجزة، مع الحفاظ على كل الحقائق والأسماء المهمة.

الملخص السابق:
%s

المحادثة:
%s

الملخص الجديد:`

// Memory is the in-process, bounded view of conversation history for one
// user session, keyed by character. Views load lazily from the Store and
// are reconstructible from it; the summarized form is lossy by design while
// the persisted record keeps every turn.
type Memory struct {
	store  *Store
	model  llm.LLM
	userID string
	budget int

	mu    sync.Mutex
	views map[string]*view
}

// view tracks how much of a record has been folded into the summary.
type view struct {
	record     *Record
	summary    string
	summarized int // leading turns already folded into summary
}

// MemoryOption configures a Memory.
type MemoryOption func(*Memory)

// WithBudget sets the rendered-memory token budget.
func WithBudget(tokens int) MemoryOption {
	return func(m *Memory) {
		if tokens > 0 {
			m.budget = tokens
		}
	}
}

// NewMemory creates a conversation memory for one user. The registry starts
// empty; persisted records outlive the process and are loaded on first use.
func NewMemory(store *Store, model llm.LLM, userID string, opts ...MemoryOption) (*Memory, error) {
	if store == nil {
		return nil, fmt.Errorf("conversation store cannot be nil")
	}
	if model == nil {
		return nil, fmt.Errorf("LLM cannot be nil")
	}

	m := &Memory{
		store:  store,
		model:  model,
		userID: userID,
		budget: DefaultBudget,
		views:  make(map[string]*view),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// get returns the character's view, loading the record on first access.
func (m *Memory) get(ctx context.Context, character string) (*view, error) {
	if v, ok := m.views[character]; ok {
		return v, nil
	}

	record, err := m.store.Load(ctx, m.userID, character)
	if err != nil {
		return nil, err
	}
	v := &view{record: record}
	m.views[character] = v
	return v, nil
}

// Append adds one question/answer turn pair and flushes the record. The
// record is only mutated once both turns are formed, so a cancelled request
// never leaves half a pair behind.
func (m *Memory) Append(ctx context.Context, character, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.get(ctx, character)
	if err != nil {
		return err
	}

	now := time.Now()
	v.record.Append(RoleHuman, question, now)
	v.record.Append(RoleAssistant, answer, now)

	return m.store.Save(ctx, v.record)
}

// Render produces the conversation context injected into the prompt.
// Within budget the verbatim transcript is returned; past it, the oldest
// turns are folded into a running summary so the output stays bounded no
// matter how long the conversation grows.
func (m *Memory) Render(ctx context.Context, character string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.get(ctx, character)
	if err != nil {
		return "", err
	}

	if m.withinBudget(v) {
		return renderVerbatim(v), nil
	}
	return m.renderSummarized(ctx, v)
}

func (m *Memory) withinBudget(v *view) bool {
	total := estimateTokens(v.summary)
	for _, turn := range v.record.Turns[v.summarized:] {
		total += estimateTokens(turn.Content)
	}
	return total <= m.budget
}

// renderVerbatim emits the summary (if any) followed by the un-summarized
// transcript.
func renderVerbatim(v *view) string {
	var b strings.Builder
	if v.summary != "" {
		b.WriteString(v.summary)
		b.WriteString("\n")
	}
	for _, turn := range v.record.Turns[v.summarized:] {
		b.WriteString(transcriptLine(turn))
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSummarized folds the oldest pending turns into the summary with a
// single LLM call, always keeping at least the most recent turn pair
// verbatim, then renders as usual.
func (m *Memory) renderSummarized(ctx context.Context, v *view) (string, error) {
	pending := v.record.Turns[v.summarized:]

	// Walk forward from the oldest pending turn until the remainder fits.
	fold := 0
	remaining := m.budget - estimateTokens(v.summary)
	total := 0
	for _, turn := range pending {
		total += estimateTokens(turn.Content)
	}
	for fold < len(pending)-2 && total > remaining {
		total -= estimateTokens(pending[fold].Content)
		fold++
	}
	if fold == 0 {
		return renderVerbatim(v), nil
	}

	var folded strings.Builder
	for _, turn := range pending[:fold] {
		folded.WriteString(transcriptLine(turn))
	}

	prompt := fmt.Sprintf(summaryPrompt, v.summary, folded.String())
	summary, err := m.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarizing conversation with %q: %w", v.record.Character, err)
	}

	log.Printf("[Memory] summarized %d turns for %q", fold, v.record.Character)
	v.summary = strings.TrimSpace(summary)
	v.summarized += fold

	return renderVerbatim(v), nil
}

// Reset discards the in-process view and persists an empty record.
// Idempotent: resetting an absent conversation succeeds.
func (m *Memory) Reset(ctx context.Context, character string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.views, character)
	return m.store.Save(ctx, NewRecord(m.userID, character))
}

// History returns the full ordered turn sequence for the character.
func (m *Memory) History(ctx context.Context, character string) ([]Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.get(ctx, character)
	if err != nil {
		return nil, err
	}
	return v.record.Turns, nil
}

func transcriptLine(turn Turn) string {
	label := labelHuman
	if turn.Role == RoleAssistant {
		label = labelCharacter
	}
	return fmt.Sprintf("%s: %s\n", label, turn.Content)
}

// estimateTokens approximates token count as runes/4. Crude but stable,
// and only the bound matters here, not the exact tokenizer.
func estimateTokens(s string) int {
	n := len([]rune(s))
	if n == 0 {
		return 0
	}
	return n/4 + 1
}
