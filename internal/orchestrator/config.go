package orchestrator

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/llm"
)

// Config holds configuration for the question-answering pipeline.
// Values load from the environment (after godotenv has run) so the CLI and
// any embedding server share one configuration surface.
type Config struct {
	// TopK is the number of passages retrieved as evidence per question.
	TopK int `env:"CHAT_TOPK" envDefault:"2"`

	// MemoryBudget is the token budget for rendered conversation memory.
	MemoryBudget int `env:"CHAT_MEMORY_BUDGET" envDefault:"1000"`

	// Stateless disables conversation memory entirely: prompts carry no
	// history and turns are not persisted.
	Stateless bool `env:"CHAT_STATELESS" envDefault:"false"`

	// EmbedderModel is the embedding model identifier.
	EmbedderModel string `env:"CHAT_EMBEDDER_MODEL" envDefault:"text-embedding-3-small"`

	// EmbedderDimension is the embedding vector dimension.
	EmbedderDimension int `env:"CHAT_EMBEDDER_DIMENSION" envDefault:"1536"`

	// LLMModel is the chat model used for answers and summaries.
	LLMModel string `env:"CHAT_LLM_MODEL" envDefault:"gpt-4o"`

	// Temperature controls answer randomness.
	Temperature float32 `env:"CHAT_TEMPERATURE" envDefault:"0.3"`

	// WikiLanguage selects the Wikipedia edition.
	WikiLanguage string `env:"CHAT_WIKI_LANGUAGE" envDefault:"ar"`

	// DataDir is the root for file-backed persistence.
	DataDir string `env:"CHAT_DATA_DIR" envDefault:"data"`

	// StorageBackend selects blob persistence: "file" or "sqlite".
	StorageBackend string `env:"CHAT_STORAGE_BACKEND" envDefault:"file"`

	// SQLitePath is the database path for the sqlite backend.
	SQLitePath string `env:"CHAT_SQLITE_PATH" envDefault:"data/chat.db"`

	// VectorBackend selects retrieval: "local" (persisted flat index) or
	// "milvus" (shared server collection).
	VectorBackend string `env:"CHAT_VECTOR_BACKEND" envDefault:"local"`
}

// LoadConfig parses configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when the environment is
// empty. Mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		TopK:              2,
		MemoryBudget:      1000,
		EmbedderModel:     "text-embedding-3-small",
		EmbedderDimension: 1536,
		LLMModel:          "gpt-4o",
		Temperature:       0.3,
		WikiLanguage:      "ar",
		DataDir:           "data",
		StorageBackend:    "file",
		SQLitePath:        "data/chat.db",
		VectorBackend:     "local",
	}
}

// LLMConfig derives the language-model configuration.
func (c Config) LLMConfig() llm.Config {
	return llm.Config{
		Model:       c.LLMModel,
		Temperature: c.Temperature,
		MaxTokens:   1024,
	}
}
