package llm

import (
	"github.com/quillworks/goshot/types"
)

// Prompt assembles the input for one model invocation: a static system
// instruction, an optional few-shot example, optional caller-supplied
// history, and the current user input. Assembly is deterministic for
// identical inputs.
type Prompt struct {
	System  string          `json:"system,omitempty"`
	Example *types.Example  `json:"example,omitempty"`
	History []types.Message `json:"history,omitempty"`
	Input   string          `json:"input" validate:"required"`
}

// PromptOption mutates a Prompt during construction.
type PromptOption func(*Prompt)

// NewPrompt creates a Prompt for the given user input.
func NewPrompt(input string, opts ...PromptOption) *Prompt {
	p := &Prompt{Input: input}
	p.Apply(opts...)
	return p
}

// Apply applies the given options in order.
func (p *Prompt) Apply(opts ...PromptOption) {
	for _, opt := range opts {
		opt(p)
	}
}

// WithSystemPrompt sets the system instruction.
func WithSystemPrompt(system string) PromptOption {
	return func(p *Prompt) {
		p.System = system
	}
}

// WithExample attaches a few-shot example. A nil example is ignored, so the
// selector result can be passed through directly.
func WithExample(example *types.Example) PromptOption {
	return func(p *Prompt) {
		p.Example = example
	}
}

// WithHistory attaches prior conversation turns. History is inserted after
// the example pair and before the current input; the Prompt does not retain
// or mutate the slice beyond assembly.
func WithHistory(history []types.Message) PromptOption {
	return func(p *Prompt) {
		p.History = history
	}
}

// Messages renders the ordered message sequence:
//
//	system, (user example.Input, assistant example.Output)?, history..., user input
func (p *Prompt) Messages() []types.Message {
	messages := make([]types.Message, 0, len(p.History)+4)
	messages = append(messages, types.Message{Role: types.RoleSystem, Content: p.System})
	if p.Example != nil {
		messages = append(messages,
			types.Message{Role: types.RoleUser, Content: p.Example.Input},
			types.Message{Role: types.RoleAssistant, Content: p.Example.Output},
		)
	}
	messages = append(messages, p.History...)
	messages = append(messages, types.Message{Role: types.RoleUser, Content: p.Input})
	return messages
}
