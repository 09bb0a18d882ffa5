package config

import "time"

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level deepdoc configuration, corresponding to deepdoc.yml.
// It is loaded once at startup, validated, and passed to component
// constructors; nothing reads the environment after that.
type Config struct {
	// Vector store.
	DatabasePath   string `yaml:"database_path" koanf:"database_path"`
	CollectionName string `yaml:"collection_name" koanf:"collection_name"`

	// Document registry (SQLite).
	RegistryPath string `yaml:"registry_path" koanf:"registry_path"`

	// Chunking policy.
	MaxChunkSize   int `yaml:"max_chunk_size" koanf:"max_chunk_size"`
	ChunkOverlap   int `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	MinChunkLength int `yaml:"min_chunk_length" koanf:"min_chunk_length"`

	// Retrieval.
	SimilarityThreshold float32 `yaml:"similarity_threshold" koanf:"similarity_threshold"`

	// Answer generation.
	Provider   ProviderType  `yaml:"provider" koanf:"provider"`
	Model      string        `yaml:"model" koanf:"model"`
	MaxRetries int           `yaml:"max_retries" koanf:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay" koanf:"retry_delay"`

	// Embeddings.
	EmbeddingProvider   ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel      string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimensions int          `yaml:"embedding_dimensions" koanf:"embedding_dimensions"`
	OllamaHost          string       `yaml:"ollama_host" koanf:"ollama_host"`

	// Optional answer cache (Redis). Disabled when empty.
	RedisAddr string        `yaml:"redis_addr" koanf:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`

	// HTTP server.
	Port     int    `yaml:"port" koanf:"port"`
	LogLevel string `yaml:"log_level" koanf:"log_level"`
}
