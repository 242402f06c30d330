package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "bedrock", cfg.Provider)
		assert.Equal(t, "anthropic.claude-3-sonnet-20240229-v1:0", cfg.Model)
		assert.Equal(t, "amazon.titan-embed-text-v1", cfg.EmbeddingModel)
		assert.Equal(t, 0.5, cfg.Temperature)
		assert.Equal(t, 100, cfg.MaxTokens)
		assert.Equal(t, 0.9, cfg.TopP)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 1, cfg.ExampleCount)
		assert.False(t, cfg.DisableSelector)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("GOSHOT_PROVIDER", "anthropic")
		t.Setenv("GOSHOT_MODEL", "claude-3-haiku-20240307")
		t.Setenv("GOSHOT_TEMPERATURE", "0.2")
		t.Setenv("GOSHOT_MAX_TOKENS", "256")
		t.Setenv("GOSHOT_LOG_LEVEL", "DEBUG")
		t.Setenv("AWS_REGION", "eu-west-1")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, "claude-3-haiku-20240307", cfg.Model)
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, 256, cfg.MaxTokens)
		assert.Equal(t, utils.LogLevelDebug, cfg.LogLevel)
		assert.Equal(t, "eu-west-1", cfg.Region)
	})

	t.Run("credentials from environment", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "secret-example")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "AKIAEXAMPLE", cfg.AccessKey)
		assert.Equal(t, "secret-example", cfg.SecretKey)
		assert.Equal(t, "sk-ant-test", cfg.APIKeys["anthropic"])
	})

	t.Run("invalid log level", func(t *testing.T) {
		t.Setenv("GOSHOT_LOG_LEVEL", "SHOUTING")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestApplyOptions(t *testing.T) {
	cfg := NewConfig()

	examples := []types.Example{{Input: "hi", Output: "Respond formally:\n"}}

	ApplyOptions(cfg,
		SetProvider("anthropic"),
		SetModel("claude-3-haiku-20240307"),
		SetTemperature(0.7),
		SetMaxTokens(0), // clamped to 1
		SetTopP(0.95),
		SetTimeout(time.Minute),
		SetMaxRetries(5),
		SetRetryDelay(time.Second),
		SetRequestsPerMinute(30),
		SetSystemPrompt("Be brief."),
		SetExampleCount(0), // clamped to 1
		SetExamples(examples),
		SetDisableSelector(true),
		SetAPIKey("anthropic", "sk-ant-test"),
		SetExtraHeaders(map[string]string{"x-test": "1"}),
	)

	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, "claude-3-haiku-20240307", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 1, cfg.MaxTokens)
	assert.Equal(t, 0.95, cfg.TopP)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Equal(t, "Be brief.", cfg.SystemPrompt)
	assert.Equal(t, 1, cfg.ExampleCount)
	assert.Equal(t, examples, cfg.Examples)
	assert.True(t, cfg.DisableSelector)
	assert.Equal(t, "sk-ant-test", cfg.APIKeys["anthropic"])
	assert.Equal(t, "1", cfg.ExtraHeaders["x-test"])
}
