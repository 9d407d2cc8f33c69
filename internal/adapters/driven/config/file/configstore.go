// Package file provides TOML-backed configuration storage.
//
// Settings live in ~/.prescribewise/config.toml. API keys are never written
// to the file; they come from the environment on every load, so a shared or
// backed-up config file cannot leak credentials.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/prescribewise/prescribewise-cli/internal/core/domain"
	"github.com/prescribewise/prescribewise-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// openAIKeyEnv is the environment variable holding the OpenAI API key.
const openAIKeyEnv = "OPENAI_API_KEY"

// ConfigStore persists application settings as TOML.
type ConfigStore struct {
	filePath string
}

// fileSettings is the on-disk TOML layout. It mirrors domain.AppSettings
// without the API key fields.
type fileSettings struct {
	Document struct {
		Path  string `toml:"path,omitempty"`
		Title string `toml:"title,omitempty"`
	} `toml:"document"`
	Retrieval struct {
		ChunkSize          int     `toml:"chunk_size,omitempty"`
		ChunkOverlap       int     `toml:"chunk_overlap,omitempty"`
		MinChunkChars      int     `toml:"min_chunk_chars,omitempty"`
		TopK               int     `toml:"top_k,omitempty"`
		RelevanceThreshold float64 `toml:"relevance_threshold,omitempty"`
		EmbeddingBatchSize int     `toml:"embedding_batch_size,omitempty"`
		MaxCharsPerSource  int     `toml:"max_chars_per_source,omitempty"`
	} `toml:"retrieval"`
	Embedding struct {
		Provider string `toml:"provider,omitempty"`
		Model    string `toml:"model,omitempty"`
		BaseURL  string `toml:"base_url,omitempty"`
	} `toml:"embedding"`
	LLM struct {
		Provider string `toml:"provider,omitempty"`
		Model    string `toml:"model,omitempty"`
		BaseURL  string `toml:"base_url,omitempty"`
	} `toml:"llm"`
}

// NewConfigStore creates a TOML config store.
// If configDir is empty, defaults to ~/.prescribewise.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".prescribewise")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the TOML file. A missing file yields defaults.
// API keys are overlaid from the environment on every load.
func (s *ConfigStore) Load() (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No config yet; defaults plus environment keys.
	case err != nil:
		return domain.AppSettings{}, fmt.Errorf("reading config: %w", err)
	default:
		var fs fileSettings
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.AppSettings{}, fmt.Errorf("parsing config: %w", err)
		}
		applyFileSettings(&settings, fs)
	}

	settings.Normalise()
	settings.Embedding.APIKey = os.Getenv(openAIKeyEnv)
	settings.LLM.APIKey = os.Getenv(openAIKeyEnv)
	return settings, nil
}

// Save writes settings to the TOML file with restricted permissions.
// API key fields are dropped on the way out.
func (s *ConfigStore) Save(settings domain.AppSettings) error {
	var fs fileSettings
	fs.Document.Path = settings.Document.Path
	fs.Document.Title = settings.Document.Title
	fs.Retrieval.ChunkSize = settings.Retrieval.ChunkSize
	fs.Retrieval.ChunkOverlap = settings.Retrieval.ChunkOverlap
	fs.Retrieval.MinChunkChars = settings.Retrieval.MinChunkChars
	fs.Retrieval.TopK = settings.Retrieval.TopK
	fs.Retrieval.RelevanceThreshold = settings.Retrieval.RelevanceThreshold
	fs.Retrieval.EmbeddingBatchSize = settings.Retrieval.EmbeddingBatchSize
	fs.Retrieval.MaxCharsPerSource = settings.Retrieval.MaxCharsPerSource
	fs.Embedding.Provider = settings.Embedding.Provider.String()
	fs.Embedding.Model = settings.Embedding.Model
	fs.Embedding.BaseURL = settings.Embedding.BaseURL
	fs.LLM.Provider = settings.LLM.Provider.String()
	fs.LLM.Model = settings.LLM.Model
	fs.LLM.BaseURL = settings.LLM.BaseURL

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// applyFileSettings copies non-zero file values over the defaults.
func applyFileSettings(settings *domain.AppSettings, fs fileSettings) {
	if fs.Document.Path != "" {
		settings.Document.Path = fs.Document.Path
	}
	if fs.Document.Title != "" {
		settings.Document.Title = fs.Document.Title
	}
	if fs.Retrieval.ChunkSize > 0 {
		settings.Retrieval.ChunkSize = fs.Retrieval.ChunkSize
	}
	if fs.Retrieval.ChunkOverlap > 0 {
		settings.Retrieval.ChunkOverlap = fs.Retrieval.ChunkOverlap
	}
	if fs.Retrieval.MinChunkChars > 0 {
		settings.Retrieval.MinChunkChars = fs.Retrieval.MinChunkChars
	}
	if fs.Retrieval.TopK > 0 {
		settings.Retrieval.TopK = fs.Retrieval.TopK
	}
	if fs.Retrieval.RelevanceThreshold > 0 {
		settings.Retrieval.RelevanceThreshold = fs.Retrieval.RelevanceThreshold
	}
	if fs.Retrieval.EmbeddingBatchSize > 0 {
		settings.Retrieval.EmbeddingBatchSize = fs.Retrieval.EmbeddingBatchSize
	}
	if fs.Retrieval.MaxCharsPerSource > 0 {
		settings.Retrieval.MaxCharsPerSource = fs.Retrieval.MaxCharsPerSource
	}
	if fs.Embedding.Provider != "" {
		settings.Embedding.Provider = domain.AIProvider(fs.Embedding.Provider)
	}
	if fs.Embedding.Model != "" {
		settings.Embedding.Model = fs.Embedding.Model
	}
	if fs.Embedding.BaseURL != "" {
		settings.Embedding.BaseURL = fs.Embedding.BaseURL
	}
	if fs.LLM.Provider != "" {
		settings.LLM.Provider = domain.AIProvider(fs.LLM.Provider)
	}
	if fs.LLM.Model != "" {
		settings.LLM.Model = fs.LLM.Model
	}
	if fs.LLM.BaseURL != "" {
		settings.LLM.BaseURL = fs.LLM.BaseURL
	}
}
