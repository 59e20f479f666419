package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/chunk"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/wiki"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "character_chunks"
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      1536,
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusIndexer implements Indexer against a Milvus server. All characters
// share one collection; rows carry the character's cache key so retrieval
// filters per character. Concurrent first builds for the same character are
// serialized per key in-process, the same guarantee IndexCache gives.
type MilvusIndexer struct {
	client   client.Client
	embedder Embedder
	chunker  *chunk.Chunker
	config   MilvusConfig

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMilvusIndexer connects to Milvus and ensures the collection exists.
func NewMilvusIndexer(ctx context.Context, config MilvusConfig, embedder Embedder, chunker *chunk.Chunker) (*MilvusIndexer, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if config.Dimension <= 0 {
		config.Dimension = embedder.GetDimension()
	}
	if config.Dimension != embedder.GetDimension() {
		return nil, fmt.Errorf("%w: collection %d, embedder %d",
			ErrInvalidDimension, config.Dimension, embedder.GetDimension())
	}
	if chunker == nil {
		chunker = chunk.New()
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	m := &MilvusIndexer{
		client:   c,
		embedder: embedder,
		chunker:  chunker,
		config:   config,
		locks:    make(map[string]*sync.Mutex),
	}

	if err := m.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return m, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusIndexer) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if has {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "character_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "ordinal",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}
	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

func (m *MilvusIndexer) lock(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// EnsureIndexed builds the character's rows if the collection has none.
func (m *MilvusIndexer) EnsureIndexed(ctx context.Context, character string, src wiki.KnowledgeSource) error {
	key := CacheKey(character)
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()

	exists, err := m.hasCharacter(ctx, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Printf("[Milvus Indexer] building index for %q", character)

	text, err := wiki.Content(ctx, src, character)
	if err != nil {
		return err
	}

	chunks := m.chunker.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %q", wiki.ErrContentNotFound, character)
	}

	label := fmt.Sprintf("%s: %s", src.Name(), character)
	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Source = label
		texts[i] = chunks[i].Text
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		records, err := m.embedder.Embed(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("%w: embedding batch at %d: %w", ErrIndexBuild, start, err)
		}
		if err := m.insert(ctx, key, chunks[start:end], records); err != nil {
			return fmt.Errorf("%w: %w", ErrIndexBuild, err)
		}
	}

	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("%w: flushing: %w", ErrIndexBuild, err)
	}

	log.Printf("[Milvus Indexer] indexed %q: %d chunks", character, len(chunks))
	return nil
}

func (m *MilvusIndexer) insert(ctx context.Context, key string, chunks []chunk.Chunk, records []EmbeddingRecord) error {
	characterIDs := make([]string, len(chunks))
	ordinals := make([]int64, len(chunks))
	sources := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))

	for i, ch := range chunks {
		characterIDs[i] = key
		ordinals[i] = int64(ch.Ordinal)
		sources[i] = ch.Source
		texts[i] = ch.Text
		embeddings[i] = records[i].Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("character_id", characterIDs),
		entity.NewColumnInt64("ordinal", ordinals),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}
	return nil
}

// hasCharacter checks whether any rows exist for the character key.
func (m *MilvusIndexer) hasCharacter(ctx context.Context, key string) (bool, error) {
	expr := fmt.Sprintf(`character_id == "%s"`, key)
	results, err := m.client.Query(ctx, m.config.CollectionName, nil, expr, []string{"character_id"})
	if err != nil {
		return false, fmt.Errorf("failed to query character rows: %w", err)
	}

	for _, column := range results {
		if column.Name() == "character_id" {
			if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
				return len(varcharCol.Data()) > 0, nil
			}
		}
	}
	return false, nil
}

// Retrieve embeds the question and runs a filtered top-K search.
func (m *MilvusIndexer) Retrieve(ctx context.Context, character, question string, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	records, err := m.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no embedding generated for question")
	}
	queryVector := records[0].Embedding

	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	expr := fmt.Sprintf(`character_id == "%s"`, CacheKey(character))
	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{"ordinal", "source", "text"}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []Hit{}, nil
	}

	hits := make([]Hit, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		hit := Hit{Score: results[0].Scores[i]}

		for _, field := range results[0].Fields {
			switch field.Name() {
			case "ordinal":
				hit.Chunk.Ordinal = int(field.(*entity.ColumnInt64).Data()[i])
			case "source":
				hit.Chunk.Source = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				hit.Chunk.Text = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		hits = append(hits, hit)
	}

	return hits, nil
}

// Invalidate deletes the character's rows so the next EnsureIndexed
// rebuilds them.
func (m *MilvusIndexer) Invalidate(ctx context.Context, character string) error {
	expr := fmt.Sprintf(`character_id == "%s"`, CacheKey(character))
	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete character rows: %w", err)
	}
	return nil
}

// Close releases the Milvus connection.
func (m *MilvusIndexer) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
