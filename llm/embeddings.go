package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/providers"
	"github.com/quillworks/goshot/utils"
)

// EmbeddingClient computes text embeddings through a provider's embedding
// endpoint. Every failure surfaces as an embedding error; nothing is
// recovered locally.
type EmbeddingClient struct {
	provider providers.EmbeddingProvider
	client   *http.Client
	logger   utils.Logger
}

// NewEmbeddingClient wraps an embedding-capable provider.
func NewEmbeddingClient(provider providers.EmbeddingProvider, cfg *config.Config, logger utils.Logger) *EmbeddingClient {
	return &EmbeddingClient{
		provider: provider,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Embed computes the embedding vector for the given text. One outbound call
// per invocation.
func (e *EmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := e.provider.PrepareEmbeddingRequest(text)
	if err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to prepare embedding request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.provider.EmbeddingEndpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to create embedding request", err)
	}
	for k, v := range e.provider.Headers() {
		req.Header.Set(k, v)
	}
	if err := e.provider.SignRequest(req, body); err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to sign embedding request", err)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to send embedding request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to read embedding response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Error("Embedding API error", "provider", e.provider.Name(), "status", resp.StatusCode, "body", string(respBody))
		return nil, NewLLMError(ErrorTypeEmbedding, fmt.Sprintf("embedding API error: status code %d", resp.StatusCode), nil)
	}

	vector, err := e.provider.ParseEmbeddingResponse(respBody)
	if err != nil {
		return nil, NewLLMError(ErrorTypeEmbedding, "failed to parse embedding response", err)
	}

	e.logger.Debug("Embedding computed",
		"provider", e.provider.Name(),
		"dimensions", len(vector),
		"latency", time.Since(start),
	)
	return vector, nil
}
