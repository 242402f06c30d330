// This file re-exports the prompt and error types from the inner packages so
// that most callers only need to import the root package.
package goshot

import (
	"github.com/quillworks/goshot/llm"
	"github.com/quillworks/goshot/providers"
	"github.com/quillworks/goshot/types"
)

type (
	// Prompt holds the pieces of a single request before it is rendered
	// into an ordered message list.
	Prompt = llm.Prompt

	// PromptOption modifies a prompt's configuration.
	PromptOption = llm.PromptOption

	// PromptTemplate is a reusable text/template for building prompt inputs.
	PromptTemplate = llm.PromptTemplate

	// GenerationConfig carries the sampling parameters passed to the model.
	GenerationConfig = llm.GenerationConfig

	// Message is a single conversation turn.
	Message = types.Message

	// Example pairs a sample input with the instruction it should elicit.
	Example = types.Example

	// Response is the parsed output of a model call.
	Response = providers.Response

	// LLMError is the error type returned by every pipeline component.
	LLMError = llm.LLMError

	// ErrorType discriminates LLMError values.
	ErrorType = llm.ErrorType
)

const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant

	ErrorTypeProvider     = llm.ErrorTypeProvider
	ErrorTypeService      = llm.ErrorTypeService
	ErrorTypeRateLimit    = llm.ErrorTypeRateLimit
	ErrorTypeEmbedding    = llm.ErrorTypeEmbedding
	ErrorTypeTemplate     = llm.ErrorTypeTemplate
	ErrorTypeInvalidInput = llm.ErrorTypeInvalidInput
)

var (
	// NewPrompt creates a prompt for the given user input.
	NewPrompt = llm.NewPrompt

	// WithSystemPrompt sets the leading system message.
	WithSystemPrompt = llm.WithSystemPrompt

	// WithExample folds a selected example into the prompt.
	WithExample = llm.WithExample

	// WithHistory inserts prior conversation turns.
	WithHistory = llm.WithHistory

	// NewPromptTemplate creates a reusable template for prompt inputs.
	NewPromptTemplate = llm.NewPromptTemplate

	// WithPromptOptions attaches prompt options to a template.
	WithPromptOptions = llm.WithPromptOptions

	// HasErrorType reports whether any error in the chain is an LLMError
	// of the given type.
	HasErrorType = llm.HasErrorType
)
