package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyTopK             = "retrieval.top_k"
	keyMinScore         = "retrieval.min_score"
	keyMaxContext       = "answer.max_context_length"
	keyTemperature      = "answer.temperature"
	keyMaxTokens        = "answer.max_tokens"
	keyWorkers          = "ingestion.workers"
	keyEmbedBatchSize   = "ingestion.embed_batch_size"
	keyIngestTimeout    = "ingestion.timeout_seconds"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyEmbedRPS         = "embedding.requests_per_second"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyVectorBackend    = "vectorstore.backend"
	keyVectorPath       = "vectorstore.path"
	keyVectorURL        = "vectorstore.url"
	keyVectorAPIKey     = "vectorstore.api_key"
	keyVectorCollection = "vectorstore.collection"
	keyServerAddr       = "server.addr"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
)

// settingField binds a config key to its place in AppSettings.
type settingField struct {
	kind fieldKind
	get  func(s *domain.AppSettings) any
	set  func(s *domain.AppSettings, v any)
}

//nolint:gochecknoglobals // static key table
var settingFields = map[string]settingField{
	keyChunkSize: {kindInt,
		func(s *domain.AppSettings) any { return s.Chunking.Size },
		func(s *domain.AppSettings, v any) { s.Chunking.Size = v.(int) }},
	keyChunkOverlap: {kindInt,
		func(s *domain.AppSettings) any { return s.Chunking.Overlap },
		func(s *domain.AppSettings, v any) { s.Chunking.Overlap = v.(int) }},
	keyTopK: {kindInt,
		func(s *domain.AppSettings) any { return s.Retrieval.TopK },
		func(s *domain.AppSettings, v any) { s.Retrieval.TopK = v.(int) }},
	keyMinScore: {kindFloat,
		func(s *domain.AppSettings) any {
			if s.Retrieval.MinScore == nil {
				return nil
			}
			return *s.Retrieval.MinScore
		},
		func(s *domain.AppSettings, v any) {
			score := v.(float64)
			s.Retrieval.MinScore = &score
		}},
	keyMaxContext: {kindInt,
		func(s *domain.AppSettings) any { return s.Answer.MaxContextLength },
		func(s *domain.AppSettings, v any) { s.Answer.MaxContextLength = v.(int) }},
	keyTemperature: {kindFloat,
		func(s *domain.AppSettings) any { return s.Answer.Temperature },
		func(s *domain.AppSettings, v any) { s.Answer.Temperature = v.(float64) }},
	keyMaxTokens: {kindInt,
		func(s *domain.AppSettings) any { return s.Answer.MaxTokens },
		func(s *domain.AppSettings, v any) { s.Answer.MaxTokens = v.(int) }},
	keyWorkers: {kindInt,
		func(s *domain.AppSettings) any { return s.Ingestion.Workers },
		func(s *domain.AppSettings, v any) { s.Ingestion.Workers = v.(int) }},
	keyEmbedBatchSize: {kindInt,
		func(s *domain.AppSettings) any { return s.Ingestion.EmbedBatchSize },
		func(s *domain.AppSettings, v any) { s.Ingestion.EmbedBatchSize = v.(int) }},
	keyIngestTimeout: {kindInt,
		func(s *domain.AppSettings) any { return int(s.Ingestion.Timeout / time.Second) },
		func(s *domain.AppSettings, v any) { s.Ingestion.Timeout = time.Duration(v.(int)) * time.Second }},
	keyEmbedProvider: {kindString,
		func(s *domain.AppSettings) any { return s.Embedding.Provider.String() },
		func(s *domain.AppSettings, v any) {
			if p := domain.AIProvider(v.(string)); p.IsValid() {
				s.Embedding.Provider = p
			}
		}},
	keyEmbedModel: {kindString,
		func(s *domain.AppSettings) any { return s.Embedding.Model },
		func(s *domain.AppSettings, v any) { s.Embedding.Model = v.(string) }},
	keyEmbedBaseURL: {kindString,
		func(s *domain.AppSettings) any { return s.Embedding.BaseURL },
		func(s *domain.AppSettings, v any) { s.Embedding.BaseURL = v.(string) }},
	keyEmbedAPIKey: {kindString,
		func(s *domain.AppSettings) any { return s.Embedding.APIKey },
		func(s *domain.AppSettings, v any) { s.Embedding.APIKey = v.(string) }},
	keyEmbedDimensions: {kindInt,
		func(s *domain.AppSettings) any { return s.Embedding.Dimensions },
		func(s *domain.AppSettings, v any) { s.Embedding.Dimensions = v.(int) }},
	keyEmbedRPS: {kindFloat,
		func(s *domain.AppSettings) any { return s.Embedding.RequestsPerSecond },
		func(s *domain.AppSettings, v any) { s.Embedding.RequestsPerSecond = v.(float64) }},
	keyLLMProvider: {kindString,
		func(s *domain.AppSettings) any { return s.LLM.Provider.String() },
		func(s *domain.AppSettings, v any) {
			if p := domain.AIProvider(v.(string)); p.IsValid() {
				s.LLM.Provider = p
			}
		}},
	keyLLMModel: {kindString,
		func(s *domain.AppSettings) any { return s.LLM.Model },
		func(s *domain.AppSettings, v any) { s.LLM.Model = v.(string) }},
	keyLLMBaseURL: {kindString,
		func(s *domain.AppSettings) any { return s.LLM.BaseURL },
		func(s *domain.AppSettings, v any) { s.LLM.BaseURL = v.(string) }},
	keyLLMAPIKey: {kindString,
		func(s *domain.AppSettings) any { return s.LLM.APIKey },
		func(s *domain.AppSettings, v any) { s.LLM.APIKey = v.(string) }},
	keyVectorBackend: {kindString,
		func(s *domain.AppSettings) any { return string(s.VectorStore.Backend) },
		func(s *domain.AppSettings, v any) {
			if b := domain.VectorBackend(v.(string)); b.IsValid() {
				s.VectorStore.Backend = b
			}
		}},
	keyVectorPath: {kindString,
		func(s *domain.AppSettings) any { return s.VectorStore.Path },
		func(s *domain.AppSettings, v any) { s.VectorStore.Path = v.(string) }},
	keyVectorURL: {kindString,
		func(s *domain.AppSettings) any { return s.VectorStore.URL },
		func(s *domain.AppSettings, v any) { s.VectorStore.URL = v.(string) }},
	keyVectorAPIKey: {kindString,
		func(s *domain.AppSettings) any { return s.VectorStore.APIKey },
		func(s *domain.AppSettings, v any) { s.VectorStore.APIKey = v.(string) }},
	keyVectorCollection: {kindString,
		func(s *domain.AppSettings) any { return s.VectorStore.Collection },
		func(s *domain.AppSettings, v any) { s.VectorStore.Collection = v.(string) }},
	keyServerAddr: {kindString,
		func(s *domain.AppSettings) any { return s.Server.Addr },
		func(s *domain.AppSettings, v any) { s.Server.Addr = v.(string) }},
}

// SettingsService manages application settings.
// Values come from defaults, then the config store, then the environment.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// Keys returns all known settings keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(settingFields))
	for key := range settingFields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves current application settings.
// Invalid stored provider or backend names fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	for key, field := range settingFields {
		if _, ok := s.configStore.Get(key); !ok {
			continue
		}
		switch field.kind {
		case kindString:
			field.set(&settings, s.configStore.GetString(key))
		case kindInt:
			field.set(&settings, s.configStore.GetInt(key))
		case kindFloat:
			field.set(&settings, s.configStore.GetFloat(key))
		}
	}

	if err := s.applyEnv(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	for _, key := range Keys() {
		value := settingFields[key].get(settings)
		if value == nil || value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set parses and stores a single setting. The resulting settings must validate.
func (s *SettingsService) Set(key, value string) error {
	field, ok := settingFields[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	parsed, err := parseValue(key, field.kind, value)
	if err != nil {
		return err
	}

	switch key {
	case keyEmbedProvider, keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return domain.NewConfigurationError(key, "unknown provider %q", value)
		}
	case keyVectorBackend:
		if !domain.VectorBackend(value).IsValid() {
			return domain.NewConfigurationError(key, "unknown backend %q", value)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	field.set(settings, parsed)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func parseValue(key string, kind fieldKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, domain.NewConfigurationError(key, "expected an integer, got %q", value)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, domain.NewConfigurationError(key, "expected a number, got %q", value)
		}
		return f, nil
	default:
		return value, nil
	}
}

// envOverrides maps environment variables to settings keys.
//
//nolint:gochecknoglobals // static key table
var envOverrides = []struct {
	env string
	key string
}{
	{"EMBEDDING_MODEL", keyEmbedModel},
	{"LLM_MODEL", keyLLMModel},
	{"COLLECTION_NAME", keyVectorCollection},
	{"VECTOR_SIZE", keyEmbedDimensions},
	{"CHUNK_SIZE", keyChunkSize},
	{"CHUNK_OVERLAP", keyChunkOverlap},
	{"DOCQA_VECTOR_BACKEND", keyVectorBackend},
	{"DOCQA_TOP_K", keyTopK},
	{"DOCQA_MIN_SCORE", keyMinScore},
}

// applyEnv applies environment overrides. API keys from the environment only
// fill keys the config file leaves empty.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) error {
	for _, o := range envOverrides {
		raw, ok := s.lookupEnv(o.env)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		field := settingFields[o.key]
		v, err := parseValue(o.key, field.kind, raw)
		if err != nil {
			return fmt.Errorf("environment %s: %w", o.env, err)
		}
		field.set(settings, v)
	}

	if key, ok := s.lookupEnv("OPENAI_API_KEY"); ok {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.LLM.Provider == domain.AIProviderOpenAI && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}
	if key, ok := s.lookupEnv("ANTHROPIC_API_KEY"); ok {
		if settings.LLM.Provider == domain.AIProviderAnthropic && settings.LLM.APIKey == "" {
			settings.LLM.APIKey = key
		}
	}

	if host, ok := s.lookupEnv("QDRANT_HOST"); ok && host != "" {
		port := "6333"
		if p, ok := s.lookupEnv("QDRANT_PORT"); ok && p != "" {
			port = p
		}
		settings.VectorStore.URL = "http://" + host + ":" + port
	}

	host, hostSet := s.lookupEnv("API_HOST")
	port, portSet := s.lookupEnv("API_PORT")
	if hostSet || portSet {
		defHost, defPort := splitAddr(settings.Server.Addr)
		if !hostSet || host == "" {
			host = defHost
		}
		if !portSet || port == "" {
			port = defPort
		}
		settings.Server.Addr = host + ":" + port
	}

	return nil
}

func splitAddr(addr string) (string, string) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, "8000"
	}
	return addr[:i], addr[i+1:]
}
