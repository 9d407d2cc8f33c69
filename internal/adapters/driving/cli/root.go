// Package cli implements the PrescribeWise command-line interface.
//
// Commands are thin adapters: they parse flags, call driving ports, and
// render results. All pipeline behaviour lives in internal/core/services.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/prescribewise/prescribewise-cli/internal/adapters/driven/config/file"
	"github.com/prescribewise/prescribewise-cli/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/prescribewise/prescribewise-cli/internal/adapters/driven/embedding/openai"
	pdfextract "github.com/prescribewise/prescribewise-cli/internal/adapters/driven/extractor/pdf"
	ollamallm "github.com/prescribewise/prescribewise-cli/internal/adapters/driven/llm/ollama"
	openaillm "github.com/prescribewise/prescribewise-cli/internal/adapters/driven/llm/openai"
	"github.com/prescribewise/prescribewise-cli/internal/adapters/driven/storage/sqlite"
	"github.com/prescribewise/prescribewise-cli/internal/adapters/driven/vector/memory"
	"github.com/prescribewise/prescribewise-cli/internal/adapters/driven/watch"
	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driving"
	"github.com/prescribewise/prescribewise-cli/internal/core/services"
	"github.com/prescribewise/prescribewise-cli/internal/logger"
)

var (
	version = "dev"
	verbose bool

	configStore      driven.ConfigStore
	settings         domain.AppSettings
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	askService       driving.AskService
)

var rootCmd = &cobra.Command{
	Use:   "prescribewise",
	Short: "Grounded Q&A over a clinical antibiotic guideline",
	Long: `PrescribeWise answers clinical questions strictly from a configured
guideline document (PDF), citing the pages each answer is grounded on.
Questions nothing in the guideline supports are declined rather than guessed.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires services from the stored configuration and runs the CLI.
func Execute(v string) error {
	version = v
	if err := wireServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// wireServices constructs the adapter graph from persisted settings.
// Unconfigured providers leave the corresponding service nil; commands
// that need them report what is missing.
func wireServices() error {
	store, err := file.NewConfigStore("")
	if err != nil {
		return err
	}
	configStore = store

	settings, err = store.Load()
	if err != nil {
		return err
	}

	embedder := buildEmbedder(settings.Embedding)
	llm := buildLLM(settings.LLM)

	if embedder == nil || settings.Document.Path == "" {
		// Retrieval cannot run; only config and version are usable.
		return nil
	}

	idxStore, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("Index persistence disabled: %v", err)
		idxStore = nil
	}

	newIndex := func() driven.VectorIndex { return memory.NewIndex() }
	ingestor := services.NewIngestor(settings, pdfextract.NewExtractor(), embedder, newIndex, idxStore)
	ingestService = ingestor

	retriever := services.NewRetriever(ingestor, embedder)
	retrievalService = retriever

	askService = services.NewAnswerer(settings, retriever, llm)
	return nil
}

// buildEmbedder constructs the embedding adapter, or nil when the provider
// is not configured.
func buildEmbedder(cfg domain.EmbeddingSettings) driven.EmbeddingService {
	if !cfg.IsConfigured() {
		return nil
	}
	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			logger.Warn("Embedding provider unavailable: %v", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}

// buildLLM constructs the generation adapter, or nil when the provider is
// not configured. A nil LLM still allows index builds and `search`.
func buildLLM(cfg domain.LLMSettings) driven.LLMService {
	if !cfg.IsConfigured() {
		return nil
	}
	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			logger.Warn("LLM provider unavailable: %v", err)
			return nil
		}
		return svc
	default:
		return nil
	}
}

// startDocumentWatcher invalidates the index when the guideline file
// changes on disk. Used by long-running commands (chat, mcp serve).
// Returns a no-op cleanup when watching is not possible.
func startDocumentWatcher(ctx context.Context) func() {
	if ingestService == nil || settings.Document.Path == "" {
		return func() {}
	}

	watcher, err := watch.NewWatcher(settings.Document.Path)
	if err != nil {
		logger.Warn("Document watching disabled: %v", err)
		return func() {}
	}

	go func() {
		err := watcher.Watch(ctx, func() {
			ingestService.Invalidate()
			if err := ingestService.Build(ctx); err != nil {
				logger.Warn("Rebuild after document change failed: %v", err)
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("Document watcher stopped: %v", err)
		}
	}()

	return func() {
		_ = watcher.Close()
	}
}
