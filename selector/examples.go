package selector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/quillworks/goshot/types"
)

// DefaultExamples returns the built-in persona example set. Each Output is a
// system-style instruction chosen by matching the user's input against the
// example Inputs, so thematically distinct inputs land on distinct personas.
func DefaultExamples() []types.Example {
	return []types.Example{
		{
			Input:  "My laptop is overheating and the fan sounds like a storm.",
			Output: "Respond as if you are a former pirate turned IT repair expert:\n",
		},
		{
			Input:  "What should I cook for dinner tonight with chicken and rice?",
			Output: "Respond as if you are a relentlessly cheerful home chef:\n",
		},
		{
			Input:  "I'm planning a weekend hiking trip in the mountains.",
			Output: "Respond as if you are a seasoned national park ranger:\n",
		},
		{
			Input:  "How much of my paycheck should go into savings versus investing?",
			Output: "Respond as if you are a plainspoken retired banker:\n",
		},
	}
}

// LoadExamples reads an example set from a file. The format is chosen by
// extension: .json holds an array of examples, .jsonl one example per line,
// .yaml/.yml a sequence of examples.
func LoadExamples(path string) ([]types.Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read example file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var examples []types.Example
		if err := json.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("failed to parse JSON examples: %w", err)
		}
		return examples, nil
	case ".jsonl":
		return parseJSONLines(data)
	case ".yaml", ".yml":
		var examples []types.Example
		if err := yaml.Unmarshal(data, &examples); err != nil {
			return nil, fmt.Errorf("failed to parse YAML examples: %w", err)
		}
		return examples, nil
	default:
		return nil, fmt.Errorf("unsupported example file extension: %s", filepath.Ext(path))
	}
}

func parseJSONLines(data []byte) ([]types.Example, error) {
	var examples []types.Example
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var example types.Example
		if err := json.Unmarshal([]byte(text), &example); err != nil {
			return nil, fmt.Errorf("failed to parse JSONL example on line %d: %w", line, err)
		}
		examples = append(examples, example)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan JSONL examples: %w", err)
	}
	return examples, nil
}
