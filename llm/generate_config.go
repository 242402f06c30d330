package llm

import "github.com/quillworks/goshot/config"

// GenerationConfig carries per-call sampling parameters. It is passed by
// value, validated before the first network attempt, and forwarded into the
// outbound request unmodified.
type GenerationConfig struct {
	Temperature float64 `json:"temperature" validate:"gte=0,lte=1"`
	MaxTokens   int     `json:"max_tokens" validate:"min=1"`
	TopP        float64 `json:"top_p" validate:"gte=0,lte=1"`
}

// GenerationConfigFromConfig copies the generation defaults out of the
// runtime configuration.
func GenerationConfigFromConfig(cfg *config.Config) GenerationConfig {
	return GenerationConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
	}
}

// options renders the config as per-call provider options.
func (c GenerationConfig) options() map[string]any {
	return map[string]any{
		"temperature": c.Temperature,
		"max_tokens":  c.MaxTokens,
		"top_p":       c.TopP,
	}
}
