package cmd

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/deepdoc/internal/answer"
	"github.com/ziadkadry99/deepdoc/internal/cache"
	"github.com/ziadkadry99/deepdoc/internal/chunker"
	"github.com/ziadkadry99/deepdoc/internal/config"
	"github.com/ziadkadry99/deepdoc/internal/db"
	"github.com/ziadkadry99/deepdoc/internal/embeddings"
	"github.com/ziadkadry99/deepdoc/internal/llm"
	"github.com/ziadkadry99/deepdoc/internal/logger"
	"github.com/ziadkadry99/deepdoc/internal/retriever"
	"github.com/ziadkadry99/deepdoc/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `deepdoc init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger, honoring --verbose over the config level.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logger.New(level)
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.OllamaHost), nil
	default:
		// Providers without native embeddings fall back to OpenAI.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required (used for embeddings when provider is %s)", provider)
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config settings.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(llm.Options{
		Provider:   string(cfg.Provider),
		Model:      cfg.Model,
		APIKey:     os.Getenv(config.APIKeyEnvVar(cfg.Provider)),
		OllamaHost: cfg.OllamaHost,
	})
}

// openStore opens the persistent vector store declared in the config.
func openStore(cfg *config.Config, embedder embeddings.Embedder) (vectordb.Store, error) {
	return vectordb.NewChromemStore(cfg.DatabasePath, cfg.CollectionName, embedder)
}

// openRegistry opens the SQLite document registry.
func openRegistry(cfg *config.Config) (*db.DB, error) {
	return db.Open(cfg.RegistryPath)
}

// newChunker builds a chunker from the config's chunking policy.
func newChunker(cfg *config.Config) (*chunker.Chunker, error) {
	return chunker.New(cfg.MaxChunkSize, cfg.ChunkOverlap, cfg.MinChunkLength)
}

// newRetriever builds a retriever over the given store and embedder.
func newRetriever(cfg *config.Config, embedder embeddings.Embedder, store vectordb.Store, log *zap.Logger) *retriever.Retriever {
	return retriever.New(embedder, store, cfg.SimilarityThreshold, log)
}

// newSynthesizer builds an answer synthesizer with the configured retry policy.
func newSynthesizer(cfg *config.Config, provider llm.Provider, log *zap.Logger) *answer.Synthesizer {
	return answer.NewSynthesizer(provider, cfg.Model, cfg.MaxRetries, cfg.RetryDelay, log)
}

// newCache connects the optional Redis answer cache; returns nil (a valid
// no-op cache) when no address is configured.
func newCache(cfg *config.Config, log *zap.Logger) (*cache.AnswerCache, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return cache.New(cfg.RedisAddr, ttl, log)
}
