// Package config loads and carries the runtime configuration for goshot:
// provider selection, credentials, generation defaults, and client behavior.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// Config is parsed from the environment once at startup. AWS credentials are
// read from the standard AWS_* variables; API keys for direct providers come
// from <PROVIDER>_API_KEY variables.
type Config struct {
	Provider       string `env:"GOSHOT_PROVIDER" envDefault:"bedrock" validate:"required,provider_name"`
	Model          string `env:"GOSHOT_MODEL" envDefault:"anthropic.claude-3-sonnet-20240229-v1:0" validate:"required"`
	EmbeddingModel string `env:"GOSHOT_EMBEDDING_MODEL" envDefault:"amazon.titan-embed-text-v1"`

	Region       string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKey    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey    string `env:"AWS_SECRET_ACCESS_KEY"`
	SessionToken string `env:"AWS_SESSION_TOKEN"`
	APIKeys      map[string]string

	Temperature float64 `env:"GOSHOT_TEMPERATURE" envDefault:"0.5" validate:"gte=0,lte=1"`
	MaxTokens   int     `env:"GOSHOT_MAX_TOKENS" envDefault:"100" validate:"min=1"`
	TopP        float64 `env:"GOSHOT_TOP_P" envDefault:"0.9" validate:"gte=0,lte=1"`

	Timeout           time.Duration `env:"GOSHOT_TIMEOUT" envDefault:"30s"`
	MaxRetries        int           `env:"GOSHOT_MAX_RETRIES" envDefault:"3" validate:"min=0"`
	RetryDelay        time.Duration `env:"GOSHOT_RETRY_DELAY" envDefault:"2s"`
	RequestsPerMinute int           `env:"GOSHOT_REQUESTS_PER_MINUTE" envDefault:"0" validate:"min=0"`

	// ExampleCount is the number of few-shot examples the selector returns
	// per query. The pipeline applies only the top hit.
	ExampleCount int `env:"GOSHOT_EXAMPLE_COUNT" envDefault:"1" validate:"min=1"`

	SystemPrompt string         `env:"GOSHOT_SYSTEM_PROMPT"`
	LogLevel     utils.LogLevel `env:"GOSHOT_LOG_LEVEL" envDefault:"WARN"`

	// Examples overrides the built-in few-shot set when non-empty.
	Examples []types.Example

	// DisableSelector skips few-shot selection entirely; prompts are
	// assembled from the system instruction and user input alone.
	DisableSelector bool `env:"GOSHOT_DISABLE_SELECTOR" envDefault:"false"`

	ExtraHeaders map[string]string
}

// LoadConfig builds a Config from the process environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		APIKeys: make(map[string]string),
	}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	loadAPIKeys(cfg)
	return cfg, nil
}

func loadAPIKeys(cfg *Config) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if found && strings.HasSuffix(strings.ToUpper(key), "_API_KEY") {
			provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
			cfg.APIKeys[strings.ToLower(provider)] = value
		}
	}
}

// ConfigOption mutates a Config; options are applied in order after the
// environment is parsed, so they win over environment values.
type ConfigOption func(*Config)

// NewConfig returns a Config with library defaults, ignoring the environment.
func NewConfig() *Config {
	return &Config{
		Provider:       "bedrock",
		Model:          "anthropic.claude-3-sonnet-20240229-v1:0",
		EmbeddingModel: "amazon.titan-embed-text-v1",
		Region:         "us-east-1",
		Temperature:    0.5,
		MaxTokens:      100,
		TopP:           0.9,
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		RetryDelay:     2 * time.Second,
		ExampleCount:   1,
		APIKeys:        make(map[string]string),
		LogLevel:       utils.LogLevelWarn,
		ExtraHeaders:   make(map[string]string),
	}
}

func SetProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func SetModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

func SetEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func SetRegion(region string) ConfigOption {
	return func(c *Config) {
		c.Region = region
	}
}

func SetAPIKey(provider, apiKey string) ConfigOption {
	return func(c *Config) {
		if c.APIKeys == nil {
			c.APIKeys = make(map[string]string)
		}
		c.APIKeys[provider] = apiKey
	}
}

func SetTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

func SetMaxTokens(maxTokens int) ConfigOption {
	return func(c *Config) {
		if maxTokens < 1 {
			maxTokens = 1
		}
		c.MaxTokens = maxTokens
	}
}

func SetTopP(topP float64) ConfigOption {
	return func(c *Config) {
		c.TopP = topP
	}
}

func SetTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

func SetMaxRetries(maxRetries int) ConfigOption {
	return func(c *Config) {
		c.MaxRetries = maxRetries
	}
}

func SetRetryDelay(retryDelay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryDelay = retryDelay
	}
}

func SetRequestsPerMinute(rpm int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = rpm
	}
}

func SetSystemPrompt(prompt string) ConfigOption {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

func SetExampleCount(k int) ConfigOption {
	return func(c *Config) {
		if k < 1 {
			k = 1
		}
		c.ExampleCount = k
	}
}

func SetExamples(examples []types.Example) ConfigOption {
	return func(c *Config) {
		c.Examples = examples
	}
}

func SetDisableSelector(disable bool) ConfigOption {
	return func(c *Config) {
		c.DisableSelector = disable
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

func SetExtraHeaders(headers map[string]string) ConfigOption {
	return func(c *Config) {
		if c.ExtraHeaders == nil {
			c.ExtraHeaders = make(map[string]string)
		}
		for k, v := range headers {
			c.ExtraHeaders[k] = v
		}
	}
}

// ApplyOptions applies the given options to the Config in order.
func ApplyOptions(cfg *Config, options ...ConfigOption) {
	for _, option := range options {
		option(cfg)
	}
}
