// Command docqa answers questions about PDF documents.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/extractor/pdf"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	loadEnvFiles()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	svcs := cli.Services{
		Settings:  settingsService,
		Validator: ai.NewConfigValidator(),
	}
	cli.SetSettingKeys(services.Keys())

	stores, err := wire(settingsService, &svcs)
	if err != nil {
		cli.SetSetupError(err)
	}
	if stores != nil {
		defer func() {
			if err := stores.Close(); err != nil {
				logger.Warn("closing stores: %v", err)
			}
		}()
	}

	cli.SetServices(svcs)
	return cli.Execute()
}

// wire builds every service the settings allow. It fills svcs as far as it
// gets, so commands that need less (settings, document) keep working when
// a provider is not configured.
func wire(settingsService *services.SettingsService, svcs *cli.Services) (*vectorstore.Stores, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	stores, err := vectorstore.Open(settings.VectorStore, ai.EmbeddingDimensions(settings.Embedding))
	if err != nil {
		return nil, err
	}
	svcs.Document = services.NewDocumentService(stores.Documents)

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return stores, err
	}

	pipeline, err := postprocessors.NewIngestPipeline(settings.Chunking)
	if err != nil {
		return stores, err
	}
	ingest, err := services.NewIngestService(
		pdf.New(), pipeline, embedder, stores.Vectors, stores.Documents, settings.Ingestion,
	)
	if err != nil {
		return stores, err
	}
	svcs.Ingest = ingest

	llm, err := ai.CreateLLMService(&settings.LLM, settings.Answer)
	if err != nil {
		return stores, err
	}
	usePromptStore(llm)

	retrieval, err := services.NewRetrievalService(embedder, stores.Vectors, settings.Retrieval)
	if err != nil {
		return stores, err
	}
	svcs.Query = services.NewQueryService(retrieval, services.NewAnswerAssembler(llm, settings.Answer))

	logger.Debug("wired %s embeddings, %s answers, %s vector store",
		settings.Embedding.Provider, settings.LLM.Provider, backendName(settings.VectorStore.Backend))
	return stores, nil
}

// usePromptStore lets the LLM load prompts from ~/.docqa/prompts.
func usePromptStore(llm driven.LLMService) {
	aware, ok := llm.(driven.PromptStoreAware)
	if !ok {
		return
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		logger.Warn("prompt overrides disabled: %v", err)
		return
	}
	aware.SetPromptStore(prompts)
}

// loadEnvFiles reads .env from the working directory and ~/.docqa.
// Variables already set in the environment win.
func loadEnvFiles() {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".docqa", ".env"))
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("reading %s: %v", path, err)
		}
	}
}

func backendName(b domain.VectorBackend) string {
	if b == "" {
		return string(domain.VectorBackendSQLite)
	}
	return string(b)
}
