package config

import "time"

// DefaultConfig returns a Config with sensible defaults. The defaults favor a
// fully local setup: Ollama for both embeddings and generation, so the system
// works without any API key.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:   "./database",
		CollectionName: "pdf_embeddings",
		RegistryPath:   "./database/registry.db",

		MaxChunkSize:   500,
		ChunkOverlap:   50,
		MinChunkLength: 30,

		SimilarityThreshold: 0.3,

		Provider:   ProviderOllama,
		Model:      "llama3",
		MaxRetries: 3,
		RetryDelay: time.Second,

		EmbeddingProvider:   ProviderOllama,
		EmbeddingModel:      "all-minilm",
		EmbeddingDimensions: 384,
		OllamaHost:          "",

		CacheTTL: 5 * time.Minute,

		Port:     8080,
		LogLevel: "info",
	}
}
