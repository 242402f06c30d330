// Package goshot composes a persona-steered chat pipeline: each request
// selects the stored example closest to the user's input, folds it into the
// prompt as a one-shot demonstration, and sends the result to the model.
package goshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/llm"
	"github.com/quillworks/goshot/providers"
	"github.com/quillworks/goshot/selector"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// Pipeline is the interface that wraps the chat pipeline operations.
type Pipeline interface {
	// Respond assembles a prompt for userInput and returns the model's text.
	Respond(ctx context.Context, userInput string) (string, error)

	// RespondWithHistory does the same with prior conversation turns placed
	// between the selected example and the current input.
	RespondWithHistory(ctx context.Context, userInput string, history []types.Message) (string, error)

	// GetProvider returns the provider name of the pipeline.
	GetProvider() string

	// GetModel returns the model of the pipeline.
	GetModel() string
}

// Generator produces model responses from assembled messages.
type Generator interface {
	Generate(ctx context.Context, messages []types.Message, gen llm.GenerationConfig) (*providers.Response, error)
}

// ExampleSelector picks the example most similar to a query.
type ExampleSelector interface {
	SelectOne(ctx context.Context, query string) (*types.Example, error)
}

// pipelineImpl is the concrete implementation of the Pipeline interface.
// It holds no per-request state; every call runs select, assemble, generate
// from scratch.
type pipelineImpl struct {
	generator    Generator
	selector     ExampleSelector
	gen          llm.GenerationConfig
	systemPrompt string
	provider     string
	model        string
	logger       utils.Logger
}

// NewPipeline loads configuration from the environment, applies the given
// options, and wires the pipeline. When the selector is enabled the example
// set is embedded once here, so construction needs the embedding service to
// be reachable.
func NewPipeline(ctx context.Context, opts ...config.ConfigOption) (Pipeline, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyOptions(cfg, opts...)

	if err := llm.Validate(cfg); err != nil {
		return nil, llm.NewLLMError(llm.ErrorTypeInvalidInput, "invalid config", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	client, err := llm.NewClient(cfg, logger, providers.NewRegistry())
	if err != nil {
		return nil, err
	}

	var sel ExampleSelector
	if !cfg.DisableSelector {
		embeddingProvider, ok := client.Provider.(providers.EmbeddingProvider)
		if !ok {
			return nil, llm.NewLLMError(llm.ErrorTypeEmbedding,
				fmt.Sprintf("provider %s does not support embeddings; disable the selector or switch providers", cfg.Provider), nil)
		}

		examples := cfg.Examples
		if len(examples) == 0 {
			examples = selector.DefaultExamples()
		}

		embeddings := llm.NewEmbeddingClient(embeddingProvider, cfg, logger)
		sel, err = selector.NewSemantic(ctx, embeddings, examples, cfg.ExampleCount, logger)
		if err != nil {
			return nil, err
		}
	}

	return &pipelineImpl{
		generator:    client,
		selector:     sel,
		gen:          llm.GenerationConfigFromConfig(cfg),
		systemPrompt: cfg.SystemPrompt,
		provider:     cfg.Provider,
		model:        cfg.Model,
		logger:       logger,
	}, nil
}

// GetProvider returns the provider name of the pipeline.
func (p *pipelineImpl) GetProvider() string {
	return p.provider
}

// GetModel returns the model of the pipeline.
func (p *pipelineImpl) GetModel() string {
	return p.model
}

// Respond runs the full select-assemble-generate cycle for userInput.
// Errors from the selector and the model client propagate unmodified so
// callers can branch on their type.
func (p *pipelineImpl) Respond(ctx context.Context, userInput string) (string, error) {
	return p.RespondWithHistory(ctx, userInput, nil)
}

// RespondWithHistory is Respond with prior turns inserted before the
// current input.
func (p *pipelineImpl) RespondWithHistory(ctx context.Context, userInput string, history []types.Message) (string, error) {
	if userInput == "" {
		return "", llm.NewLLMError(llm.ErrorTypeInvalidInput, "user input must not be empty", nil)
	}

	requestID := uuid.NewString()
	p.logger.Debug("Handling request", "request_id", requestID, "input_length", len(userInput), "history_turns", len(history))

	var example *types.Example
	if p.selector != nil {
		var err error
		example, err = p.selector.SelectOne(ctx, userInput)
		if err != nil {
			return "", err
		}
		if example != nil {
			p.logger.Debug("Example selected", "request_id", requestID, "example_input", example.Input)
		}
	}

	prompt := llm.NewPrompt(userInput,
		llm.WithSystemPrompt(p.systemPrompt),
		llm.WithExample(example),
		llm.WithHistory(history),
	)

	response, err := p.generator.Generate(ctx, prompt.Messages(), p.gen)
	if err != nil {
		return "", err
	}

	p.logger.Info("Request completed",
		"request_id", requestID,
		"latency", response.Latency,
		"total_tokens", response.Usage.TotalTokens)
	return response.Content, nil
}
