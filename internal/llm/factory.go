package llm

import "fmt"

// Options carries the provider selection made once at startup. The provider
// is never switched per request.
type Options struct {
	Provider   string
	Model      string
	APIKey     string // unused for ollama
	OllamaHost string // defaults to http://localhost:11434
}

// NewProvider creates an LLM provider from validated startup options.
// Supported providers: "openai", "anthropic", "google", "ollama".
func NewProvider(opts Options) (Provider, error) {
	switch opts.Provider {
	case "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIProvider(opts.APIKey, opts.Model), nil

	case "anthropic":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return NewAnthropicProvider(opts.APIKey, opts.Model), nil

	case "google":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("google provider requires an API key")
		}
		return NewGoogleProvider(opts.APIKey, opts.Model), nil

	case "ollama":
		host := opts.OllamaHost
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, opts.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}
}
