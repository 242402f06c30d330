package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/providers"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// stubProvider is a minimal provider pointed at a test server. The request
// body is the JSON encoding of the options map; the response body is
// expected to be {"content": "..."}.
type stubProvider struct {
	endpoint string
}

func (s *stubProvider) Name() string     { return "stub" }
func (s *stubProvider) Endpoint() string { return s.endpoint }
func (s *stubProvider) Headers() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
func (s *stubProvider) SetExtraHeaders(map[string]string)       {}
func (s *stubProvider) SetDefaultOptions(*config.Config)        {}
func (s *stubProvider) SetOption(string, any)                   {}
func (s *stubProvider) SetLogger(utils.Logger)                  {}
func (s *stubProvider) SignRequest(*http.Request, []byte) error { return nil }

func (s *stubProvider) PrepareRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	return json.Marshal(map[string]any{
		"messages": messages,
		"options":  options,
	})
}

func (s *stubProvider) ParseResponse(body []byte) (*providers.Response, error) {
	var parsed struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return &providers.Response{Content: parsed.Content}, nil
}

func newTestClient(endpoint string, maxRetries int) *Client {
	return &Client{
		Provider:   &stubProvider{endpoint: endpoint},
		client:     &http.Client{Timeout: 5 * time.Second},
		logger:     utils.NewLogger(utils.LogLevelOff),
		maxRetries: maxRetries,
		retryDelay: time.Millisecond,
	}
}

func validGen() GenerationConfig {
	return GenerationConfig{Temperature: 0.5, MaxTokens: 100, TopP: 0.9}
}

func TestClientGeneratePassesConfigUnmodified(t *testing.T) {
	var captured []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = body
		_, _ = w.Write([]byte(`{"content": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	response, err := client.Generate(context.Background(), []types.Message{
		{Role: types.RoleSystem, Content: "sys"},
		{Role: types.RoleUser, Content: "Is it hot out?"},
	}, validGen())
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Content)
	assert.Greater(t, response.Latency, time.Duration(0))

	var request struct {
		Options map[string]any `json:"options"`
	}
	require.NoError(t, json.Unmarshal(captured, &request))
	assert.Equal(t, 0.5, request.Options["temperature"])
	assert.Equal(t, float64(100), request.Options["max_tokens"])
	assert.Equal(t, 0.9, request.Options["top_p"])
}

func TestClientGenerateRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.Generate(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, validGen())
	require.Error(t, err)
	assert.True(t, HasErrorType(err, ErrorTypeRateLimit))
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestClientGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Generate(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, validGen())
	require.Error(t, err)
	assert.True(t, HasErrorType(err, ErrorTypeService))
}

// countingProvider tracks how far request construction got before a call
// was abandoned.
type countingProvider struct {
	stubProvider
	prepareCalls atomic.Int32
	signCalls    atomic.Int32
}

func (c *countingProvider) PrepareRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	c.prepareCalls.Add(1)
	return c.stubProvider.PrepareRequest(messages, options)
}

func (c *countingProvider) SignRequest(req *http.Request, body []byte) error {
	c.signCalls.Add(1)
	return nil
}

func TestClientGenerateLimiterRunsBeforeSigning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": "ok"}`))
	}))
	defer server.Close()

	provider := &countingProvider{stubProvider: stubProvider{endpoint: server.URL}}
	client := newTestClient(server.URL, 0)
	client.Provider = provider
	client.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	client.limiter.Allow() // drain the burst token so the next Wait blocks

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, []types.Message{{Role: types.RoleUser, Content: "hi"}}, validGen())
	require.Error(t, err)
	assert.True(t, HasErrorType(err, ErrorTypeService))
	assert.Zero(t, provider.prepareCalls.Load(), "request must not be built while throttled")
	assert.Zero(t, provider.signCalls.Load(), "signature timestamp must not predate the limiter wait")
}

func TestClientGenerateLogsFailedAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mockLogger := &utils.MockLogger{}
	mockLogger.On("Debug", mock.Anything, mock.Anything).Return()
	mockLogger.On("Error", "API error", mock.Anything).Return()
	mockLogger.On("Warn", "Generation attempt failed", mock.Anything).Return()

	client := newTestClient(server.URL, 1)
	client.logger = mockLogger

	_, err := client.Generate(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, validGen())
	require.Error(t, err)

	mockLogger.AssertNumberOfCalls(t, "Warn", 2)
	assert.Equal(t, 2, mockLogger.ErrorCallCount, "one API error log per attempt")
	assert.Equal(t, "API error", mockLogger.LastErrorMessage)
	mockLogger.AssertExpectations(t)
}

func TestClientGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Generate(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, validGen())
	require.Error(t, err)
	assert.True(t, HasErrorType(err, ErrorTypeService))
}

func TestClientGenerateInvalidConfig(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0)
	_, err := client.Generate(context.Background(), []types.Message{{Role: types.RoleUser, Content: "hi"}}, GenerationConfig{
		Temperature: 1.5,
		MaxTokens:   100,
		TopP:        0.9,
	})
	require.Error(t, err)
	assert.True(t, HasErrorType(err, ErrorTypeInvalidInput))
	assert.Zero(t, calls.Load(), "no network call on invalid config")
}

func TestNewClient(t *testing.T) {
	t.Run("known provider", func(t *testing.T) {
		cfg := config.NewConfig()
		client, err := NewClient(cfg, utils.NewLogger(utils.LogLevelOff), providers.NewRegistry())
		require.NoError(t, err)
		assert.Equal(t, "bedrock", client.Provider.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.Provider = "nonesuch"
		_, err := NewClient(cfg, utils.NewLogger(utils.LogLevelOff), providers.NewRegistry())
		require.Error(t, err)
		assert.True(t, HasErrorType(err, ErrorTypeProvider))
	})
}
