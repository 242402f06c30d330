package llm

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// TokenCounter counts the tokens in a piece of text for truncation purposes.
type TokenCounter interface {
	Count(text string) int
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// NewTokenCounter returns a counter for the given model, falling back to the
// cl100k_base encoding for models tiktoken does not know, Claude included.
// The fallback count is an approximation, which is fine for truncation.
func NewTokenCounter(model string) (TokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoding, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to get fallback encoding: %w", err)
		}
	}
	return &tiktokenCounter{encoding: encoding}, nil
}

// Memory is a token-bounded conversation buffer callers can use to carry
// history between pipeline calls. The pipeline itself stays stateless;
// Memory only helps the caller build the history slice. Thread-safe.
type Memory struct {
	mutex       sync.Mutex
	messages    []types.Message
	tokens      []int
	totalTokens int
	maxTokens   int
	counter     TokenCounter
	logger      utils.Logger
}

// NewMemory creates a Memory bounded to maxTokens, counting with the
// encoding for the given model.
func NewMemory(maxTokens int, model string, logger utils.Logger) (*Memory, error) {
	counter, err := NewTokenCounter(model)
	if err != nil {
		return nil, err
	}
	return NewMemoryWithCounter(maxTokens, counter, logger), nil
}

// NewMemoryWithCounter creates a Memory with an explicit token counter.
func NewMemoryWithCounter(maxTokens int, counter TokenCounter, logger utils.Logger) *Memory {
	return &Memory{
		maxTokens: maxTokens,
		counter:   counter,
		logger:    logger,
	}
}

// Add appends a message, evicting the oldest messages while the buffer
// exceeds its token budget.
func (m *Memory) Add(role, content string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tokens := m.counter.Count(content)
	m.messages = append(m.messages, types.Message{Role: role, Content: content})
	m.tokens = append(m.tokens, tokens)
	m.totalTokens += tokens

	m.truncate()
	m.logger.Debug("Added message to memory", "role", role, "tokens", tokens, "total_tokens", m.totalTokens)
}

func (m *Memory) truncate() {
	for m.totalTokens > m.maxTokens && len(m.messages) > 1 {
		m.totalTokens -= m.tokens[0]
		m.messages = m.messages[1:]
		m.tokens = m.tokens[1:]
	}
}

// Messages returns a copy of the buffered conversation, oldest first.
func (m *Memory) Messages() []types.Message {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]types.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// TotalTokens reports the current token count of the buffer.
func (m *Memory) TotalTokens() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.totalTokens
}

// Clear empties the buffer.
func (m *Memory) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.messages = nil
	m.tokens = nil
	m.totalTokens = 0
	m.logger.Debug("Memory cleared")
}
