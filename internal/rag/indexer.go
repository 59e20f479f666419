package rag

import (
	"context"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/wiki"
)

// Indexer builds and searches per-character retrieval indexes.
// Implementations own index lifecycle; callers borrow them per question.
type Indexer interface {
	// EnsureIndexed guarantees a queryable index exists for the character,
	// building and persisting one from the knowledge source if needed.
	// Returns wiki.ErrContentNotFound when the source has no article,
	// wiki.ErrSourceFetch on lookup failures, and ErrIndexBuild when
	// embedding or persistence fails mid-build.
	EnsureIndexed(ctx context.Context, character string, src wiki.KnowledgeSource) error

	// Retrieve embeds the question and returns the topK most similar
	// passages from the character's index, nearest first.
	Retrieve(ctx context.Context, character, question string, topK int) ([]Hit, error)

	// Invalidate removes the character's persisted index so the next
	// EnsureIndexed rebuilds it from source.
	Invalidate(ctx context.Context, character string) error
}
