package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
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
	default:
		return unknownDescription
	}
}

// DocumentSettings identifies the guideline document to serve.
type DocumentSettings struct {
	// Path is the local PDF file path.
	Path string

	// Title is the display name used in answers and citations.
	Title string
}

// RetrievalSettings holds the tunable retrieval pipeline configuration.
// The threshold and top-k defaults are empirically chosen reference values,
// not architectural constants; they are configuration on purpose.
type RetrievalSettings struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the number of characters repeated at the start of
	// the next chunk to preserve continuity across a boundary.
	ChunkOverlap int

	// MinChunkChars discards trailing or degenerate windows whose trimmed
	// text is shorter than this, as index noise.
	MinChunkChars int

	// TopK is the number of nearest neighbours to retrieve per query.
	TopK int

	// RelevanceThreshold is the minimum cosine similarity for a retrieved
	// chunk to count as grounding. Results below it are dropped before
	// context assembly.
	RelevanceThreshold float64

	// EmbeddingBatchSize is the number of texts submitted per embedding
	// call during the corpus build.
	EmbeddingBatchSize int

	// MaxCharsPerSource truncates each source block in the assembled
	// context to keep the hand-off to the generator bounded.
	MaxCharsPerSource int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI). Loaded from the environment,
	// never persisted to the config file.
	APIKey string
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

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI). Loaded from the environment,
	// never persisted to the config file.
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

// AppSettings holds all application settings.
type AppSettings struct {
	// Document identifies the guideline to ingest and serve.
	Document DocumentSettings

	// Retrieval holds the retrieval pipeline tunables.
	Retrieval RetrievalSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds generation provider settings.
	LLM LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them via `config`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Document: DocumentSettings{
			Title: "The WHO AWaRe (Access, Watch, Reserve) Antibiotic Book (2022)",
		},
		Retrieval: RetrievalSettings{
			ChunkSize:          1200,
			ChunkOverlap:       200,
			MinChunkChars:      100,
			TopK:               5,
			RelevanceThreshold: 0.7,
			EmbeddingBatchSize: 100,
			MaxCharsPerSource:  2000,
		},
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
	}
}

// Normalise fills zero-valued retrieval tunables with defaults and clamps
// the overlap below the chunk size so the chunker window always advances.
func (s *AppSettings) Normalise() {
	def := DefaultAppSettings().Retrieval
	r := &s.Retrieval
	if r.ChunkSize <= 0 {
		r.ChunkSize = def.ChunkSize
	}
	if r.ChunkOverlap < 0 {
		r.ChunkOverlap = def.ChunkOverlap
	}
	if r.ChunkOverlap >= r.ChunkSize {
		r.ChunkOverlap = r.ChunkSize / 4
	}
	if r.MinChunkChars <= 0 {
		r.MinChunkChars = def.MinChunkChars
	}
	if r.TopK <= 0 {
		r.TopK = def.TopK
	}
	if r.RelevanceThreshold == 0 {
		r.RelevanceThreshold = def.RelevanceThreshold
	}
	if r.EmbeddingBatchSize <= 0 {
		r.EmbeddingBatchSize = def.EmbeddingBatchSize
	}
	if r.MaxCharsPerSource <= 0 {
		r.MaxCharsPerSource = def.MaxCharsPerSource
	}
	if s.Document.Title == "" {
		s.Document.Title = DefaultAppSettings().Document.Title
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "gpt-4o-mini",
	}
}
