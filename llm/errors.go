package llm

import (
	"errors"
	"fmt"
)

// ErrorType classifies a failure along the pipeline. None of these are
// recovered locally; callers decide how to present them.
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota

	// ErrorTypeProvider covers failures building or parsing a provider
	// request before or after the wire.
	ErrorTypeProvider

	// ErrorTypeService covers network or remote-side failures calling the
	// model endpoint.
	ErrorTypeService

	// ErrorTypeRateLimit is reported when the remote endpoint signals
	// throttling (HTTP 429).
	ErrorTypeRateLimit

	// ErrorTypeEmbedding covers failures computing an embedding vector.
	ErrorTypeEmbedding

	// ErrorTypeTemplate covers malformed prompt templates and missing
	// template variables.
	ErrorTypeTemplate

	// ErrorTypeInvalidInput covers caller mistakes caught before any
	// network call.
	ErrorTypeInvalidInput
)

// LLMError is the error type returned throughout the library. It wraps the
// underlying cause and carries the taxonomy type for callers that branch on
// failure class.
type LLMError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *LLMError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *LLMError) Unwrap() error {
	return e.Err
}

func (e *LLMError) TypeString() string {
	switch e.Type {
	case ErrorTypeProvider:
		return "ProviderError"
	case ErrorTypeService:
		return "ServiceError"
	case ErrorTypeRateLimit:
		return "RateLimitError"
	case ErrorTypeEmbedding:
		return "EmbeddingServiceError"
	case ErrorTypeTemplate:
		return "TemplateError"
	case ErrorTypeInvalidInput:
		return "InvalidInputError"
	default:
		return "UnknownError"
	}
}

// NewLLMError creates a new LLMError.
func NewLLMError(errType ErrorType, message string, err error) *LLMError {
	return &LLMError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// HasErrorType reports whether err or anything it wraps is an LLMError of
// the given type.
func HasErrorType(err error, errType ErrorType) bool {
	var llmErr *LLMError
	if errors.As(err, &llmErr) {
		return llmErr.Type == errType
	}
	return false
}
