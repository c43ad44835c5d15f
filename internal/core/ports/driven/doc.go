// Package driven declares what the core needs from the outside world.
// Services hold these interfaces; adapters under internal/adapters/driven
// satisfy them.
//
// Ingestion uses Extractor, PostProcessorPipeline, EmbeddingService,
// VectorStore and DocumentStore. Answering uses EmbeddingService,
// VectorStore and LLMService. ConfigStore backs the settings service.
//
// PromptStore is optional: an LLM adapter that implements
// PromptStoreAware loads its prompts from it and otherwise uses the
// built-in ones.
//
// This package imports domain and nothing else from internal/.
package driven
