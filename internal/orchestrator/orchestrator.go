package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/convo"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/llm"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/rag"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/wiki"
)

var (
	// ErrGeneration indicates the language model failed to produce an answer.
	ErrGeneration = errors.New("answer generation failed")

	// ErrInvalidInput indicates a blank character name or question.
	ErrInvalidInput = errors.New("invalid input")
)

// Answer is a generated reply with the source labels of the passages
// that supported it, in retrieval order.
type Answer struct {
	Text    string
	Sources []string
}

// Chat answers questions in the voice of historical characters. It borrows
// an indexer for passage retrieval, a memory for conversation state and a
// language model for generation; none of them are owned or closed here.
type Chat struct {
	indexer   rag.Indexer
	memory    *convo.Memory
	source    wiki.KnowledgeSource
	model     llm.LLM
	topK      int
	stateless bool
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithTopK sets the number of passages retrieved per question.
func WithTopK(k int) ChatOption {
	return func(c *Chat) {
		c.topK = k
	}
}

// WithStateless disables conversation memory. Prompts carry no history
// and turns are not persisted.
func WithStateless(stateless bool) ChatOption {
	return func(c *Chat) {
		c.stateless = stateless
	}
}

// NewChat assembles the question-answering pipeline.
func NewChat(indexer rag.Indexer, memory *convo.Memory, source wiki.KnowledgeSource, model llm.LLM, opts ...ChatOption) (*Chat, error) {
	if indexer == nil {
		return nil, fmt.Errorf("%w: indexer is required", ErrInvalidInput)
	}
	if source == nil {
		return nil, fmt.Errorf("%w: knowledge source is required", ErrInvalidInput)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: language model is required", ErrInvalidInput)
	}
	c := &Chat{
		indexer: indexer,
		memory:  memory,
		source:  source,
		model:   model,
		topK:    2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.topK < 1 {
		c.topK = 1
	}
	if !c.stateless && c.memory == nil {
		return nil, fmt.Errorf("%w: memory is required unless stateless", ErrInvalidInput)
	}
	return c, nil
}

// Ask answers a question as the named character. The character's knowledge
// index is built on first use; later questions reuse it. Unless the chat is
// stateless, the exchange is appended to conversation memory only after the
// answer succeeds.
func (c *Chat) Ask(ctx context.Context, character, question string) (*Answer, error) {
	character = strings.TrimSpace(character)
	question = strings.TrimSpace(question)
	if character == "" {
		return nil, fmt.Errorf("%w: character name is empty", ErrInvalidInput)
	}
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}

	log.Printf("[Chat] ensuring index for %q", character)
	if err := c.indexer.EnsureIndexed(ctx, character, c.source); err != nil {
		return nil, err
	}

	hits, err := c.indexer.Retrieve(ctx, character, question, c.topK)
	if err != nil {
		return nil, err
	}
	log.Printf("[Chat] retrieved %d passages for %q", len(hits), character)

	var memoryText string
	if !c.stateless {
		memoryText, err = c.memory.Render(ctx, character)
		if err != nil {
			return nil, err
		}
	}

	prompt := AssemblePrompt(memoryText, hits, question)
	reply, err := c.model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: model returned an empty answer", ErrGeneration)
	}

	if !c.stateless {
		if err := c.memory.Append(ctx, character, question, reply); err != nil {
			return nil, err
		}
	}

	return &Answer{Text: reply, Sources: ExtractSources(hits)}, nil
}

// Reset clears the conversation with the character. The knowledge index is
// kept; only memory is discarded.
func (c *Chat) Reset(ctx context.Context, character string) error {
	if c.stateless {
		return nil
	}
	return c.memory.Reset(ctx, character)
}

// History returns the full persisted conversation with the character,
// oldest first.
func (c *Chat) History(ctx context.Context, character string) ([]convo.Turn, error) {
	if c.stateless {
		return nil, nil
	}
	return c.memory.History(ctx, character)
}

// Rebuild discards the character's knowledge index so the next question
// rebuilds it from source.
func (c *Chat) Rebuild(ctx context.Context, character string) error {
	return c.indexer.Invalidate(ctx, character)
}
