package types

// Example is a few-shot guidance pair: a sample user input and the output
// the model should imitate for inputs like it. Examples are immutable once
// loaded and live for the lifetime of the process.
type Example struct {
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
}
