package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/goshot/utils"
)

// wordCounter counts whitespace-separated words, standing in for a real
// encoding so tests stay offline.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func TestMemoryAddAndMessages(t *testing.T) {
	memory := NewMemoryWithCounter(100, wordCounter{}, utils.NewLogger(utils.LogLevelOff))

	memory.Add("user", "Ahoy there")
	memory.Add("assistant", "Ahoy yerself matey")

	messages := memory.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Role)
	assert.Equal(t, "assistant", messages[1].Role)
	assert.Equal(t, 5, memory.TotalTokens())
}

func TestMemoryTruncates(t *testing.T) {
	memory := NewMemoryWithCounter(4, wordCounter{}, utils.NewLogger(utils.LogLevelOff))

	memory.Add("user", "one two three")
	memory.Add("assistant", "four five six")

	messages := memory.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "four five six", messages[0].Content)
	assert.Equal(t, 3, memory.TotalTokens())
}

func TestMemoryKeepsLastMessageEvenWhenOverBudget(t *testing.T) {
	memory := NewMemoryWithCounter(1, wordCounter{}, utils.NewLogger(utils.LogLevelOff))

	memory.Add("user", "this message alone exceeds the budget")

	assert.Len(t, memory.Messages(), 1)
}

func TestMemoryClear(t *testing.T) {
	memory := NewMemoryWithCounter(100, wordCounter{}, utils.NewLogger(utils.LogLevelOff))
	memory.Add("user", "hello")

	memory.Clear()

	assert.Empty(t, memory.Messages())
	assert.Zero(t, memory.TotalTokens())
}
