package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// defaultModelFor returns a sensible generation model for each provider.
func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-sonnet-4-5-20250929"
	case ProviderGoogle:
		return "gemini-2.0-flash"
	default:
		return "llama3"
	}
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings are used for all cloud providers.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}

// RunWizard runs an interactive configuration wizard and saves the resulting
// config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to deepdoc! Let's configure your study assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"ollama", "openai", "anthropic", "google"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = defaultModelFor(cfg.Provider)

	modelPrompt := promptui.Prompt{
		Label:   "Generation model",
		Default: cfg.Model,
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	cfg.EmbeddingProvider = embeddingProviderFor(cfg.Provider)
	if cfg.EmbeddingProvider != ProviderOllama {
		cfg.EmbeddingModel = "text-embedding-3-small"
		cfg.EmbeddingDimensions = 1536
	}

	dbPrompt := promptui.Prompt{
		Label:   "Vector database directory",
		Default: cfg.DatabasePath,
	}
	if cfg.DatabasePath, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	chunkPrompt := promptui.Prompt{
		Label:   "Max chunk size (characters)",
		Default: strconv.Itoa(cfg.MaxChunkSize),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	chunkStr, err := chunkPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("chunk size: %w", err)
	}
	cfg.MaxChunkSize, _ = strconv.Atoi(chunkStr)

	redisPrompt := promptui.Prompt{
		Label:   "Redis address for answer caching (blank to disable)",
		Default: "",
	}
	if cfg.RedisAddr, err = redisPrompt.Run(); err != nil {
		return nil, fmt.Errorf("redis address: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before asking questions.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
