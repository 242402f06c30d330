// Package llm owns the transport layer: it drives a provider adapter over
// HTTP with declarative retry behavior and maps failures onto the library's
// error taxonomy. It also holds prompt assembly and templating.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/providers"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// Client invokes a chat-completion provider. One outbound network call is
// made per attempt; retry count and delay come from configuration, not from
// any internal state machine.
type Client struct {
	Provider   providers.Provider
	client     *http.Client
	logger     utils.Logger
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewClient builds a Client for the configured provider.
func NewClient(cfg *config.Config, logger utils.Logger, registry *providers.Registry) (*Client, error) {
	provider, err := registry.Get(cfg.Provider, cfg.APIKeys[cfg.Provider], cfg.Model, cfg.ExtraHeaders)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create provider", err)
	}
	provider.SetDefaultOptions(cfg)
	provider.SetLogger(logger)

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &Client{
		Provider:   provider,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Generate sends the message sequence to the provider and returns the parsed
// response. The generation config is validated once, then forwarded
// unmodified. On repeated failure the last attempt's error is returned
// untouched so callers can branch on its type.
func (c *Client) Generate(ctx context.Context, messages []types.Message, gen GenerationConfig) (*providers.Response, error) {
	if err := Validate(&gen); err != nil {
		return nil, NewLLMError(ErrorTypeInvalidInput, "invalid generation config", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		c.logger.Debug("Generating", "provider", c.Provider.Name(), "messages", len(messages), "attempt", attempt+1)

		response, err := c.attemptGenerate(ctx, messages, gen)
		if err == nil {
			return response, nil
		}
		lastErr = err

		c.logger.Warn("Generation attempt failed", "error", err, "attempt", attempt+1)

		if attempt < c.maxRetries {
			if err := c.wait(ctx); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

func (c *Client) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.retryDelay):
		return nil
	}
}

func (c *Client) attemptGenerate(ctx context.Context, messages []types.Message, gen GenerationConfig) (*providers.Response, error) {
	// Pace before building the request: the SigV4 signature carries a
	// timestamp AWS rejects once it is a few minutes old, so time spent in
	// the limiter must not sit between signing and sending.
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, NewLLMError(ErrorTypeService, "rate limiter wait aborted", err)
		}
	}

	body, err := c.Provider.PrepareRequest(messages, gen.options())
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to prepare request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Provider.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to create request", err)
	}
	for k, v := range c.Provider.Headers() {
		req.Header.Set(k, v)
	}
	if err := c.Provider.SignRequest(req, body); err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to sign request", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeService, "failed to send request", err)
	}
	defer resp.Body.Close()
	latency := time.Since(start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeService, "failed to read response body", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("Throttled by remote endpoint", "provider", c.Provider.Name())
		return nil, NewLLMError(ErrorTypeRateLimit, "API error: status code 429", nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API error", "provider", c.Provider.Name(), "status", resp.StatusCode, "body", string(respBody))
		return nil, NewLLMError(ErrorTypeService, fmt.Sprintf("API error: status code %d", resp.StatusCode), nil)
	}

	response, err := c.Provider.ParseResponse(respBody)
	if err != nil {
		return nil, NewLLMError(ErrorTypeProvider, "failed to parse response", err)
	}
	response.Latency = latency

	c.logger.Debug("Generation succeeded",
		"provider", c.Provider.Name(),
		"latency", latency,
		"input_tokens", response.Usage.InputTokens,
		"output_tokens", response.Usage.OutputTokens,
	)
	return response, nil
}
