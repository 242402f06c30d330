package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// AnthropicProvider adapts the Anthropic messages API directly, without
// going through Bedrock. Authentication is an API key header.
type AnthropicProvider struct {
	apiKey       string
	model        string
	extraHeaders map[string]string
	options      map[string]any
	logger       utils.Logger
}

func NewAnthropicProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &AnthropicProvider{
		apiKey:       apiKey,
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewLogger(utils.LogLevelWarn),
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

func (p *AnthropicProvider) Endpoint() string {
	return "https://api.anthropic.com/v1/messages"
}

func (p *AnthropicProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         p.apiKey,
		"anthropic-version": "2023-06-01",
	}
	for key, value := range p.extraHeaders {
		headers[key] = value
	}
	return headers
}

func (p *AnthropicProvider) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}

func (p *AnthropicProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *AnthropicProvider) SetOption(key string, value any) {
	p.options[key] = value
	p.logger.Debug("Option set", "provider", p.Name(), "key", key)
}

func (p *AnthropicProvider) SetDefaultOptions(cfg *config.Config) {
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("max_tokens", cfg.MaxTokens)
	p.SetOption("top_p", cfg.TopP)
}

func (p *AnthropicProvider) option(options map[string]any, key string) (any, bool) {
	if v, ok := options[key]; ok {
		return v, true
	}
	v, ok := p.options[key]
	return v, ok
}

func (p *AnthropicProvider) PrepareRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("anthropic: empty message sequence")
	}

	request := map[string]any{
		"model": p.model,
	}

	var system strings.Builder
	chat := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == types.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n")
			}
			system.WriteString(msg.Content)
			continue
		}
		chat = append(chat, map[string]any{
			"role":    msg.Role,
			"content": msg.Content,
		})
	}
	if system.Len() > 0 {
		request["system"] = system.String()
	}
	request["messages"] = chat

	if mt, ok := p.option(options, "max_tokens"); ok {
		request["max_tokens"] = mt
	} else {
		request["max_tokens"] = 4096
	}
	if temp, ok := p.option(options, "temperature"); ok {
		request["temperature"] = temp
	}
	if topP, ok := p.option(options, "top_p"); ok {
		request["top_p"] = topP
	}

	return json.Marshal(request)
}

func (p *AnthropicProvider) ParseResponse(body []byte) (*Response, error) {
	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("anthropic: error parsing response: %w", err)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("anthropic: empty response from API")
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &Response{
		Content: text.String(),
		Usage:   NewUsage(response.Usage.InputTokens, response.Usage.OutputTokens),
	}, nil
}

// SignRequest is a no-op; the API key travels in Headers.
func (p *AnthropicProvider) SignRequest(req *http.Request, body []byte) error {
	return nil
}
