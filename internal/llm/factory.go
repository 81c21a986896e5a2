package llm

import (
	"fmt"
	"time"

	"rollcall/internal/config"
)

// NewCloudClient builds the ChatCompleter for the configured provider.
// cfg should already have provider defaults applied (see Config.CloudResolved).
func NewCloudClient(cfg config.CloudConfig, timeout time.Duration) (ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredential
	}

	switch cfg.Provider {
	case config.ProviderDeepSeek, config.ProviderOpenAI, "":
		name := cfg.Provider
		if name == "" {
			name = config.ProviderDeepSeek
		}
		return NewOpenAIClient(OpenAIConfig{
			Name:    name,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: timeout,
		})
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, timeout)
	case config.ProviderGemini:
		return NewGeminiClient(cfg.APIKey, cfg.BaseURL, timeout)
	default:
		return nil, fmt.Errorf("unsupported cloud provider: %s", cfg.Provider)
	}
}
