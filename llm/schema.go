package llm

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema reflects a JSON schema for the Prompt structure, for
// tooling that validates serialized prompts.
func (p *Prompt) GenerateJSONSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(p)
	return json.MarshalIndent(schema, "", "  ")
}
