package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/chunk"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/convo"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/llm"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/orchestrator"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/rag"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/storage"
	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/wiki"
)

var userID string

var rootCmd = &cobra.Command{
	Use:   "hakawati",
	Short: "Hakawati - converse with historical characters",
	Long: `Hakawati lets you hold conversations with historical characters.

Each character's knowledge is built from their Wikipedia article, indexed
for retrieval, and used to ground answers given in the character's own
voice. Conversations are remembered per user and character.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&userID, "user", "default", "User identity owning the conversations")
}

// openBlobStore opens the configured persistence backend.
func openBlobStore(cfg orchestrator.Config) (storage.BlobStore, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.SQLitePath)
	case "file", "":
		return storage.NewFileStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want file or sqlite)", cfg.StorageBackend)
	}
}

// pipeline bundles everything a conversation command needs, plus the
// resources to release when done.
type pipeline struct {
	chat  *orchestrator.Chat
	store storage.BlobStore
	extra func()
}

func (p *pipeline) Close() {
	if p.extra != nil {
		p.extra()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}

// buildPipeline wires the full question-answering stack from configuration.
func buildPipeline(ctx context.Context, cfg orchestrator.Config, opts ...orchestrator.ChatOption) (*pipeline, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	store, err := openBlobStore(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := rag.NewOpenAIEmbedder(cfg.EmbedderModel, cfg.EmbedderDimension)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	chunker := chunk.New()

	var (
		indexer rag.Indexer
		extra   func()
	)
	switch cfg.VectorBackend {
	case "milvus":
		milvusCfg := rag.DefaultMilvusConfig()
		milvusCfg.Dimension = cfg.EmbedderDimension
		mi, err := rag.NewMilvusIndexer(ctx, milvusCfg, embedder, chunker)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
		}
		indexer = mi
		extra = func() { _ = mi.Close() }
	case "local", "":
		cache, err := rag.NewIndexCache(store, embedder, chunker)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		indexer = cache
	default:
		_ = store.Close()
		return nil, fmt.Errorf("unknown vector backend %q (want local or milvus)", cfg.VectorBackend)
	}

	llmCfg := cfg.LLMConfig()
	llmCfg.APIKey = apiKey
	model, err := llm.NewOpenAILLM(llmCfg)
	if err != nil {
		if extra != nil {
			extra()
		}
		_ = store.Close()
		return nil, fmt.Errorf("failed to create LLM: %w", err)
	}

	convoStore, err := convo.NewStore(store)
	if err != nil {
		if extra != nil {
			extra()
		}
		_ = store.Close()
		return nil, err
	}
	memory, err := convo.NewMemory(convoStore, model, userID, convo.WithBudget(cfg.MemoryBudget))
	if err != nil {
		if extra != nil {
			extra()
		}
		_ = store.Close()
		return nil, err
	}

	source := wiki.NewWikipedia(wiki.WikipediaConfig{Language: cfg.WikiLanguage})

	opts = append([]orchestrator.ChatOption{
		orchestrator.WithTopK(cfg.TopK),
		orchestrator.WithStateless(cfg.Stateless),
	}, opts...)
	chat, err := orchestrator.NewChat(indexer, memory, source, model, opts...)
	if err != nil {
		if extra != nil {
			extra()
		}
		_ = store.Close()
		return nil, err
	}

	return &pipeline{chat: chat, store: store, extra: extra}, nil
}
