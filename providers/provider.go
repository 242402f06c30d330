// Package providers implements chat-completion provider adapters. Each
// provider renders an ordered message sequence into its wire format, parses
// the generated text and usage metadata back out, and handles its own
// authentication scheme.
package providers

import (
	"net/http"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// Provider is the adapter contract for a hosted chat-completion endpoint.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetDefaultOptions(cfg *config.Config)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	// PrepareRequest renders the message sequence and generation options
	// into the provider's request body.
	PrepareRequest(messages []types.Message, options map[string]any) ([]byte, error)

	// ParseResponse extracts the generated text and usage metadata from a
	// successful response body.
	ParseResponse(body []byte) (*Response, error)

	// SignRequest applies authentication that depends on the request body.
	// Providers that authenticate through static Headers return nil.
	SignRequest(req *http.Request, body []byte) error
}

// EmbeddingProvider is implemented by providers that also expose a
// text-embedding endpoint.
type EmbeddingProvider interface {
	Name() string
	EmbeddingEndpoint() string
	Headers() map[string]string
	PrepareEmbeddingRequest(text string) ([]byte, error)
	ParseEmbeddingResponse(body []byte) ([]float64, error)
	SignRequest(req *http.Request, body []byte) error
}

// ProviderConstructor builds a provider instance. apiKey is ignored by
// providers that authenticate from the environment (Bedrock).
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
