package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
)

var (
	configTitle   string
	configModel   string
	configBaseURL string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and configure the guideline document, retrieval tunables, and AI
providers. API keys are read from the environment (OPENAI_API_KEY) and are
never written to the config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configDocumentCmd = &cobra.Command{
	Use:   "document [path]",
	Short: "Set the guideline document",
	Long: `Sets the PDF the assistant answers from. The retrieval index is rebuilt
automatically the next time the document is queried.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigDocument,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Configure the embedding provider",
	Long: `Sets the embedding provider used for indexing and retrieval.

Available providers:
  ollama - local Ollama instance (default model: nomic-embed-text)
  openai - OpenAI API (default model: text-embedding-3-small)

Changing the provider or model invalidates any persisted index; vectors
from different models are not comparable.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm [provider]",
	Short: "Configure the answer generation provider",
	Long: `Sets the LLM provider used to generate answers.

Available providers:
  ollama - local Ollama instance (default model: llama3.2)
  openai - OpenAI API (default model: gpt-4o-mini)`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigLLM,
}

func init() {
	configDocumentCmd.Flags().StringVar(&configTitle, "title", "", "display title used in answers and citations")
	configEmbeddingCmd.Flags().StringVar(&configModel, "model", "", "embedding model name")
	configEmbeddingCmd.Flags().StringVar(&configBaseURL, "base-url", "", "API base URL")
	configLLMCmd.Flags().StringVar(&configModel, "model", "", "LLM model name")
	configLLMCmd.Flags().StringVar(&configBaseURL, "base-url", "", "API base URL")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configDocumentCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Document]")
	if settings.Document.Path != "" {
		cmd.Printf("  Path: %s\n", settings.Document.Path)
	} else {
		cmd.Printf("  Path: (not set)\n")
	}
	cmd.Printf("  Title: %s\n", settings.Document.Title)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk size: %d chars (overlap %d)\n", settings.Retrieval.ChunkSize, settings.Retrieval.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Relevance floor: %.2f\n", settings.Retrieval.RelevanceThreshold)
	cmd.Println()

	printProvider(cmd, "Embedding", settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	printProvider(cmd, "LLM", settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func printProvider(cmd *cobra.Command, name string, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("[%s]\n", name)
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set, export OPENAI_API_KEY)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runConfigDocument(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	settings.Document.Path = args[0]
	if configTitle != "" {
		settings.Document.Title = configTitle
	}

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Document set to %s\n", settings.Document.Path)
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	provider, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = configModel
	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = configBaseURL

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Embedding provider set to %s (model %s)\n", provider, settings.Embedding.Model)
	if provider.RequiresAPIKey() {
		cmd.Println("Export OPENAI_API_KEY to authenticate.")
	}
	return nil
}

func runConfigLLM(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	provider, err := parseProvider(args[0])
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = configModel
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = configBaseURL

	if err := configStore.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("LLM provider set to %s (model %s)\n", provider, settings.LLM.Model)
	if provider.RequiresAPIKey() {
		cmd.Println("Export OPENAI_API_KEY to authenticate.")
	}
	return nil
}

func parseProvider(raw string) (domain.AIProvider, error) {
	provider := domain.AIProvider(strings.ToLower(strings.TrimSpace(raw)))
	if !provider.IsValid() {
		return "", fmt.Errorf("unknown provider %q (available: ollama, openai)", raw)
	}
	return provider, nil
}

// maskAPIKey hides all but the last four characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}
