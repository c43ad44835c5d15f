package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the vector store implementation.
type VectorBackend string

// Available vector store backends.
const (
	// VectorBackendMemory keeps vectors in process memory. Lost on exit.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendSQLite persists vectors in a local SQLite database.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendQdrant stores vectors in a Qdrant collection.
	VectorBackendQdrant VectorBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendMemory, VectorBackendSQLite, VectorBackendQdrant:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendMemory:
		return "In-memory (not persisted)"
	case VectorBackendSQLite:
		return "SQLite (local file)"
	case VectorBackendQdrant:
		return "Qdrant (remote collection)"
	default:
		return unknownDescription
	}
}

// Default pipeline values.
const (
	DefaultChunkSize         = 750
	DefaultChunkOverlap      = 150
	DefaultMaxContextLength  = 6000
	DefaultAnswerTemperature = 0.3
	DefaultAnswerMaxTokens   = 500
	DefaultIngestWorkers     = 4
	DefaultEmbedBatchSize    = 100
	DefaultIngestTimeout     = 5 * time.Minute
	DefaultCollection        = "document_chunks"
	DefaultServerAddr        = "0.0.0.0:8000"
)

// ChunkingSettings controls how page text is split.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// Validate checks 0 <= overlap < size and size > 0.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 {
		return NewConfigurationError("chunking.size", "must be positive, got %d", c.Size)
	}
	if c.Overlap < 0 {
		return NewConfigurationError("chunking.overlap", "must not be negative, got %d", c.Overlap)
	}
	if c.Overlap >= c.Size {
		return NewConfigurationError("chunking.overlap",
			"must be smaller than chunking.size (%d), got %d", c.Size, c.Overlap)
	}
	return nil
}

// RetrievalSettings controls similarity search.
type RetrievalSettings struct {
	// TopK is the default number of candidates per query.
	TopK int

	// MinScore discards hits scoring below it. Nil disables the filter.
	MinScore *float64
}

// AnswerSettings controls context assembly and generation.
type AnswerSettings struct {
	// MaxContextLength bounds the context in characters. Zero means unlimited.
	MaxContextLength int

	// Temperature is the sampling temperature passed to the LLM.
	Temperature float64

	// MaxTokens bounds the generated answer.
	MaxTokens int
}

// IngestionSettings controls the ingestion worker pool.
type IngestionSettings struct {
	// Workers is the number of files ingested concurrently.
	Workers int

	// EmbedBatchSize is the maximum number of texts per embedding request.
	EmbedBatchSize int

	// Timeout bounds the ingestion of a single file.
	Timeout time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size. Zero uses the known model size.
	Dimensions int

	// RequestsPerSecond throttles embedding calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorStoreSettings selects and configures the vector store.
type VectorStoreSettings struct {
	// Backend is the store implementation.
	Backend VectorBackend

	// Path is the directory holding the SQLite database. Empty uses ~/.docqa/data.
	Path string

	// URL is the Qdrant base URL.
	URL string

	// APIKey is the Qdrant API key, if any.
	APIKey string

	// Collection is the Qdrant collection name.
	Collection string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking    ChunkingSettings
	Retrieval   RetrievalSettings
	Answer      AnswerSettings
	Ingestion   IngestionSettings
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Server      ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// Providers default to OpenAI; the API key must come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Answer: AnswerSettings{
			MaxContextLength: DefaultMaxContextLength,
			Temperature:      DefaultAnswerTemperature,
			MaxTokens:        DefaultAnswerMaxTokens,
		},
		Ingestion: IngestionSettings{
			Workers:        DefaultIngestWorkers,
			EmbedBatchSize: DefaultEmbedBatchSize,
			Timeout:        DefaultIngestTimeout,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultEmbeddingModels()[AIProviderOpenAI],
		},
		LLM: LLMSettings{
			Provider: AIProviderOpenAI,
			Model:    DefaultLLMModels()[AIProviderOpenAI],
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendSQLite,
			Collection: DefaultCollection,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// Validate checks the settings that must hold before any pipeline is built.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Retrieval.TopK <= 0 {
		return NewConfigurationError("retrieval.top_k", "must be positive, got %d", s.Retrieval.TopK)
	}
	if s.Answer.MaxContextLength < 0 {
		return NewConfigurationError("answer.max_context_length",
			"must not be negative, got %d", s.Answer.MaxContextLength)
	}
	if s.Ingestion.Workers <= 0 {
		return NewConfigurationError("ingestion.workers", "must be positive, got %d", s.Ingestion.Workers)
	}
	if s.Ingestion.EmbedBatchSize <= 0 {
		return NewConfigurationError("ingestion.embed_batch_size",
			"must be positive, got %d", s.Ingestion.EmbedBatchSize)
	}
	if !s.VectorStore.Backend.IsValid() {
		return NewConfigurationError("vectorstore.backend", "unknown backend %q", s.VectorStore.Backend)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns all vector store backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendMemory,
		VectorBackendSQLite,
		VectorBackendQdrant,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-ada-002",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
