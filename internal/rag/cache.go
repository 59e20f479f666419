package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/chunk"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/storage"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/wiki"
)

var (
	// ErrIndexBuild indicates an embedding or persistence failure mid-build.
	// No partial index is published when it is returned.
	ErrIndexBuild = errors.New("index build failed")

	// ErrNotIndexed indicates Retrieve was called for a character with no
	// index. Call EnsureIndexed first.
	ErrNotIndexed = errors.New("character is not indexed")
)

const (
	// indexPrefix namespaces index blobs in the shared store.
	indexPrefix = "index/"

	// embedBatchSize caps chunks per embedding API call.
	embedBatchSize = 10
)

// CacheKey derives the stable storage key for a character name. Truncated
// sha256 keeps paths short; the collision risk is treated as negligible.
func CacheKey(character string) string {
	sum := sha256.Sum256([]byte(character))
	return hex.EncodeToString(sum[:])[:16]
}

// IndexCache implements Indexer over a durable blob store. Indexes are
// built at most once per character: persisted blobs are loaded instead of
// re-embedding, and an in-process registry with per-key locks serializes
// concurrent first builds.
type IndexCache struct {
	store    storage.BlobStore
	embedder Embedder
	chunker  *chunk.Chunker

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// cacheEntry holds one character's loaded index and its build lock.
type cacheEntry struct {
	mu    sync.Mutex
	index *Index
}

// NewIndexCache creates an index cache. The registry starts empty;
// persisted index blobs outlive the process and are picked up lazily.
func NewIndexCache(store storage.BlobStore, embedder Embedder, chunker *chunk.Chunker) (*IndexCache, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store cannot be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if chunker == nil {
		chunker = chunk.New()
	}

	return &IndexCache{
		store:    store,
		embedder: embedder,
		chunker:  chunker,
		entries:  make(map[string]*cacheEntry),
	}, nil
}

func (c *IndexCache) entry(key string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &cacheEntry{}
		c.entries[key] = e
	}
	return e
}

// EnsureIndexed guarantees a queryable index exists for the character.
func (c *IndexCache) EnsureIndexed(ctx context.Context, character string, src wiki.KnowledgeSource) error {
	e := c.entry(CacheKey(character))
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.index != nil {
		return nil
	}

	idx, err := c.load(ctx, character)
	if err == nil {
		e.index = idx
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		// Corrupt or stale blob: log and fall through to a rebuild.
		log.Printf("[Index Cache] discarding persisted index for %q: %v", character, err)
	}

	idx, err = c.build(ctx, character, src)
	if err != nil {
		return err
	}
	e.index = idx
	return nil
}

// Retrieve embeds the question and searches the character's index.
func (c *IndexCache) Retrieve(ctx context.Context, character, question string, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	e := c.entry(CacheKey(character))
	e.mu.Lock()
	if e.index == nil {
		idx, err := c.load(ctx, character)
		if err != nil {
			e.mu.Unlock()
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%w: %q", ErrNotIndexed, character)
			}
			return nil, err
		}
		e.index = idx
	}
	idx := e.index
	e.mu.Unlock()

	records, err := c.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no embedding generated for question")
	}

	return idx.Search(records[0].Embedding, topK)
}

// Invalidate removes the character's index from the registry and storage.
func (c *IndexCache) Invalidate(ctx context.Context, character string) error {
	key := CacheKey(character)
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.index = nil
	return c.store.Delete(ctx, indexPrefix+key)
}

// load reads and validates a persisted index.
func (c *IndexCache) load(ctx context.Context, character string) (*Index, error) {
	data, err := c.store.ReadAll(ctx, indexPrefix+CacheKey(character))
	if err != nil {
		return nil, err
	}
	return DecodeIndex(data, c.embedder.GetModel(), c.embedder.GetDimension())
}

// build fetches the article, chunks it, embeds every chunk, and publishes
// the finished index atomically. Nothing is written until the index is
// complete, so a cancelled or failed build leaves no artifact behind.
func (c *IndexCache) build(ctx context.Context, character string, src wiki.KnowledgeSource) (*Index, error) {
	log.Printf("[Index Cache] building index for %q", character)

	text, err := wiki.Content(ctx, src, character)
	if err != nil {
		return nil, err
	}

	chunks := c.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %q", wiki.ErrContentNotFound, character)
	}

	label := fmt.Sprintf("%s: %s", src.Name(), character)
	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Source = label
		texts[i] = chunks[i].Text
	}

	records := make([]EmbeddingRecord, 0, len(chunks))
	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch, err := c.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: embedding batch at %d: %w", ErrIndexBuild, start, err)
		}
		records = append(records, batch...)
	}

	idx, err := NewIndex(c.embedder.GetModel(), c.embedder.GetDimension(), chunks, records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}

	data, err := idx.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexBuild, err)
	}
	if err := c.store.WriteAll(ctx, indexPrefix+CacheKey(character), data); err != nil {
		return nil, fmt.Errorf("%w: persisting: %w", ErrIndexBuild, err)
	}

	log.Printf("[Index Cache] indexed %q: %d chunks", character, len(chunks))
	return idx, nil
}
