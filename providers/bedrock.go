package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/quillworks/goshot/config"
	"github.com/quillworks/goshot/types"
	"github.com/quillworks/goshot/utils"
)

// BedrockProvider adapts the AWS Bedrock runtime. Chat goes through the
// configured foundation model (Anthropic Claude family by default); text
// embeddings go through a Titan embedding model on the same runtime.
//
// Authentication uses AWS credentials read from the environment at
// construction time:
//   - AWS_ACCESS_KEY_ID
//   - AWS_SECRET_ACCESS_KEY
//   - AWS_SESSION_TOKEN (optional, for temporary credentials)
//   - AWS_REGION (defaults to "us-east-1")
type BedrockProvider struct {
	model          string
	embeddingModel string
	region         string
	accessKey      string
	secretKey      string
	sessionToken   string
	extraHeaders   map[string]string
	options        map[string]any
	logger         utils.Logger
}

// NewBedrockProvider creates a Bedrock provider. apiKey is unused; AWS
// credentials come from the environment.
func NewBedrockProvider(apiKey, model string, extraHeaders map[string]string) Provider {
	_ = apiKey
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}

	return &BedrockProvider{
		model:          model,
		embeddingModel: "amazon.titan-embed-text-v1",
		region:         region,
		accessKey:      os.Getenv("AWS_ACCESS_KEY_ID"),
		secretKey:      os.Getenv("AWS_SECRET_ACCESS_KEY"),
		sessionToken:   os.Getenv("AWS_SESSION_TOKEN"),
		extraHeaders:   extraHeaders,
		options:        make(map[string]any),
		logger:         utils.NewLogger(utils.LogLevelWarn),
	}
}

func (p *BedrockProvider) Name() string {
	return "bedrock"
}

func (p *BedrockProvider) Endpoint() string {
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/model/%s/invoke", p.region, p.model)
}

// EmbeddingEndpoint returns the invoke URL of the embedding model.
func (p *BedrockProvider) EmbeddingEndpoint() string {
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/model/%s/invoke", p.region, p.embeddingModel)
}

func (p *BedrockProvider) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for key, value := range p.extraHeaders {
		headers[key] = value
	}
	return headers
}

func (p *BedrockProvider) SetExtraHeaders(extraHeaders map[string]string) {
	p.extraHeaders = extraHeaders
}

func (p *BedrockProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

// SetOption sets a request option. Recognized keys: temperature, max_tokens,
// top_p, region (AWS region override), embedding_model.
func (p *BedrockProvider) SetOption(key string, value any) {
	switch key {
	case "region":
		if region, ok := value.(string); ok && region != "" {
			p.region = region
		}
	case "embedding_model":
		if model, ok := value.(string); ok && model != "" {
			p.embeddingModel = model
		}
	default:
		p.options[key] = value
	}
	p.logger.Debug("Option set", "provider", p.Name(), "key", key)
}

func (p *BedrockProvider) SetDefaultOptions(cfg *config.Config) {
	p.SetOption("temperature", cfg.Temperature)
	p.SetOption("max_tokens", cfg.MaxTokens)
	p.SetOption("top_p", cfg.TopP)
	p.SetOption("region", cfg.Region)
	p.SetOption("embedding_model", cfg.EmbeddingModel)
	if cfg.AccessKey != "" {
		p.accessKey = cfg.AccessKey
	}
	if cfg.SecretKey != "" {
		p.secretKey = cfg.SecretKey
	}
	if cfg.SessionToken != "" {
		p.sessionToken = cfg.SessionToken
	}
}

// modelFamily drives the request and response formats, which differ across
// the foundation models hosted on Bedrock.
func (p *BedrockProvider) modelFamily() string {
	switch {
	case strings.HasPrefix(p.model, "anthropic."):
		return "anthropic"
	case strings.HasPrefix(p.model, "amazon."):
		return "amazon"
	default:
		return "unknown"
	}
}

// PrepareRequest renders the message sequence into the wire format of the
// configured model family.
func (p *BedrockProvider) PrepareRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("bedrock: empty message sequence")
	}

	switch p.modelFamily() {
	case "anthropic":
		return p.prepareAnthropicRequest(messages, options)
	case "amazon":
		return p.prepareTitanRequest(messages, options)
	default:
		return nil, fmt.Errorf("bedrock: unsupported model family for %q", p.model)
	}
}

// option reads a per-call option, falling back to the provider default.
func (p *BedrockProvider) option(options map[string]any, key string) (any, bool) {
	if v, ok := options[key]; ok {
		return v, true
	}
	v, ok := p.options[key]
	return v, ok
}

func (p *BedrockProvider) prepareAnthropicRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	request := map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
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

func (p *BedrockProvider) prepareTitanRequest(messages []types.Message, options map[string]any) ([]byte, error) {
	// Titan text models take a single flattened prompt.
	var prompt strings.Builder
	for _, msg := range messages {
		prompt.WriteString(msg.Role)
		prompt.WriteString(": ")
		prompt.WriteString(msg.Content)
		prompt.WriteString("\n")
	}

	cfg := map[string]any{}
	if temp, ok := p.option(options, "temperature"); ok {
		cfg["temperature"] = temp
	}
	if mt, ok := p.option(options, "max_tokens"); ok {
		cfg["maxTokenCount"] = mt
	}
	if topP, ok := p.option(options, "top_p"); ok {
		cfg["topP"] = topP
	}

	request := map[string]any{
		"inputText": prompt.String(),
	}
	if len(cfg) > 0 {
		request["textGenerationConfig"] = cfg
	}

	return json.Marshal(request)
}

// ParseResponse extracts the generated text and usage from a Bedrock
// response body.
func (p *BedrockProvider) ParseResponse(body []byte) (*Response, error) {
	switch p.modelFamily() {
	case "anthropic":
		return p.parseAnthropicResponse(body)
	case "amazon":
		return p.parseTitanResponse(body)
	default:
		return nil, fmt.Errorf("bedrock: unsupported model family for %q", p.model)
	}
}

func (p *BedrockProvider) parseAnthropicResponse(body []byte) (*Response, error) {
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
		return nil, fmt.Errorf("bedrock: error parsing response: %w", err)
	}
	if len(response.Content) == 0 {
		return nil, fmt.Errorf("bedrock: empty response from API")
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

func (p *BedrockProvider) parseTitanResponse(body []byte) (*Response, error) {
	var response struct {
		InputTextTokenCount int `json:"inputTextTokenCount"`
		Results             []struct {
			TokenCount int    `json:"tokenCount"`
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("bedrock: error parsing response: %w", err)
	}
	if len(response.Results) == 0 {
		return nil, fmt.Errorf("bedrock: empty response from API")
	}

	return &Response{
		Content: response.Results[0].OutputText,
		Usage:   NewUsage(response.InputTextTokenCount, response.Results[0].TokenCount),
	}, nil
}

// PrepareEmbeddingRequest renders a Titan embedding request body.
func (p *BedrockProvider) PrepareEmbeddingRequest(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("bedrock: empty embedding input")
	}
	return json.Marshal(map[string]any{"inputText": text})
}

// ParseEmbeddingResponse extracts the vector from a Titan embedding response.
func (p *BedrockProvider) ParseEmbeddingResponse(body []byte) ([]float64, error) {
	var response struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("bedrock: error parsing embedding response: %w", err)
	}
	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("bedrock: empty embedding from API")
	}
	return response.Embedding, nil
}

// SignRequest adds AWS Signature Version 4 headers to the request. It must
// be called after all other headers are set.
func (p *BedrockProvider) SignRequest(req *http.Request, body []byte) error {
	if p.accessKey == "" || p.secretKey == "" {
		return fmt.Errorf("AWS credentials not configured: set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}

	now := time.Now().UTC()
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	req.Header.Set("X-Amz-Date", amzDate)
	req.Header.Set("Host", host)
	if p.sessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", p.sessionToken)
	}

	payloadHash := sha256Hex(body)
	req.Header.Set("X-Amz-Content-Sha256", payloadHash)

	signedHeaders := []string{"content-type", "host", "x-amz-content-sha256", "x-amz-date"}
	if p.sessionToken != "" {
		signedHeaders = append(signedHeaders, "x-amz-security-token")
	}
	sort.Strings(signedHeaders)

	var canonicalHeaders strings.Builder
	for _, h := range signedHeaders {
		canonicalHeaders.WriteString(h)
		canonicalHeaders.WriteString(":")
		canonicalHeaders.WriteString(strings.TrimSpace(req.Header.Get(h)))
		canonicalHeaders.WriteString("\n")
	}
	signedHeadersStr := strings.Join(signedHeaders, ";")

	canonicalRequest := strings.Join([]string{
		req.Method,
		req.URL.Path,
		req.URL.RawQuery,
		canonicalHeaders.String(),
		signedHeadersStr,
		payloadHash,
	}, "\n")

	algorithm := "AWS4-HMAC-SHA256"
	credentialScope := fmt.Sprintf("%s/%s/bedrock/aws4_request", dateStamp, p.region)
	stringToSign := strings.Join([]string{
		algorithm,
		amzDate,
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	signingKey := signatureKey(p.secretKey, dateStamp, p.region, "bedrock")
	signature := hex.EncodeToString(hmacSHA256(signingKey, []byte(stringToSign)))

	req.Header.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		algorithm, p.accessKey, credentialScope, signedHeadersStr, signature))

	return nil
}

func sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func hmacSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

func signatureKey(secretKey, dateStamp, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), []byte(dateStamp))
	kRegion := hmacSHA256(kDate, []byte(region))
	kService := hmacSHA256(kRegion, []byte(service))
	return hmacSHA256(kService, []byte("aws4_request"))
}
