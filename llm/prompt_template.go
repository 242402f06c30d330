package llm

import (
	"bytes"
	"text/template"
)

// PromptTemplate is a reusable template for generating prompts. Variables
// are filled in at execution time; a missing variable is a template error,
// not a silently empty substitution.
type PromptTemplate struct {
	Name        string
	Description string
	Template    string
	Options     []PromptOption
}

// PromptTemplateOption modifies a PromptTemplate during construction.
type PromptTemplateOption func(*PromptTemplate)

// NewPromptTemplate creates a PromptTemplate with the given name,
// description, and template text.
func NewPromptTemplate(name, description, templateText string, opts ...PromptTemplateOption) *PromptTemplate {
	pt := &PromptTemplate{
		Name:        name,
		Description: description,
		Template:    templateText,
	}
	for _, opt := range opts {
		opt(pt)
	}
	return pt
}

// WithPromptOptions adds PromptOptions applied to every prompt the template
// produces.
func WithPromptOptions(options ...PromptOption) PromptTemplateOption {
	return func(pt *PromptTemplate) {
		pt.Options = append(pt.Options, options...)
	}
}

// Execute generates a Prompt from the template with the given data. Parse
// and render failures, including missing variables, return a template error.
func (pt *PromptTemplate) Execute(data map[string]any) (*Prompt, error) {
	tmpl, err := template.New(pt.Name).Option("missingkey=error").Parse(pt.Template)
	if err != nil {
		return nil, NewLLMError(ErrorTypeTemplate, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, NewLLMError(ErrorTypeTemplate, "failed to render template", err)
	}

	return NewPrompt(buf.String(), pt.Options...), nil
}
