// Package wiki provides access to reference articles about historical
// characters. The KnowledgeSource interface abstracts the provider so the
// retrieval pipeline can run against Wikipedia in production and fixtures
// in tests.
package wiki

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for knowledge source operations.
var (
	// ErrContentNotFound indicates the source has no article for the character.
	ErrContentNotFound = errors.New("no content found for character")

	// ErrSourceFetch indicates a lookup or network failure at the source.
	ErrSourceFetch = errors.New("knowledge source fetch failed")
)

// KnowledgeSource fetches reference text for a named subject.
// Implementations must be safe for concurrent use.
type KnowledgeSource interface {
	// Name identifies the source for citation labels (e.g. "Wikipedia").
	Name() string

	// Search returns candidate article titles for a subject name,
	// best match first. An empty slice means no match.
	Search(ctx context.Context, name string) ([]string, error)

	// Fetch returns the full plain text of the article with the given title.
	Fetch(ctx context.Context, title string) (string, error)
}

// Content resolves a character name to article text: search for candidate
// titles, then fetch the best match. No search results, or an empty
// article body, map to ErrContentNotFound.
func Content(ctx context.Context, src KnowledgeSource, name string) (string, error) {
	titles, err := src.Search(ctx, name)
	if err != nil {
		return "", fmt.Errorf("searching %q: %w", name, err)
	}
	if len(titles) == 0 {
		return "", fmt.Errorf("%w: %q", ErrContentNotFound, name)
	}

	text, err := src.Fetch(ctx, titles[0])
	if err != nil {
		return "", fmt.Errorf("fetching %q: %w", titles[0], err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: %q", ErrContentNotFound, name)
	}

	return text, nil
}
