package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aesthetica/internal/logger"
)

var (
	ErrInvalidResponse = errors.New("invalid llm response")
	ErrMissingAPIKey   = errors.New("llm api key is required")
)

const (
	defaultBaseURL      = "https://api.openai.com"
	defaultChatModel    = "gpt-4o-mini"
	defaultImageModel   = "gpt-image-1"
	chatCompletionsPath = "/v1/chat/completions"
)

var tracer = otel.Tracer("aesthetica/internal/llm")

type Config struct {
	BaseURL      string
	APIKey       string
	ChatModel    string
	ImageBaseURL string
	ImageModel   string
	Timeout      time.Duration
	Logger       *logger.Logger
}

// Client talks to an OpenAI-compatible chat and image API. The API key passed to each call
// wins over Config.APIKey so a key set at runtime takes effect without rebuilding the client.
type Client struct {
	baseURL      string
	apiKey       string
	chatModel    string
	imageBaseURL string
	imageModel   string
	timeout      time.Duration
	httpClient   *http.Client
	log          *logger.Logger
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("llm base url must be http(s): %q", baseURL)
	}
	imageBaseURL := strings.TrimSpace(cfg.ImageBaseURL)
	if imageBaseURL == "" {
		imageBaseURL = baseURL
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = defaultChatModel
	}
	imageModel := strings.TrimSpace(cfg.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		chatModel:    chatModel,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
		imageModel:   imageModel,
		timeout:      cfg.Timeout,
		httpClient:   &http.Client{},
		log:          log.With("component", "llm"),
	}, nil
}

func (c *Client) resolveKey(apiKey string) (string, error) {
	if key := strings.TrimSpace(apiKey); key != "" {
		return key, nil
	}
	if c.apiKey != "" {
		return c.apiKey, nil
	}
	return "", ErrMissingAPIKey
}

// chatJSON sends one system+user exchange in JSON mode and returns the assistant text.
func (c *Client) chatJSON(ctx context.Context, apiKey string, system string, user string, temperature float64) (string, error) {
	body := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
		"response_format": map[string]any{
			"type": "json_object",
		},
	}
	raw, err := c.doJSON(ctx, c.baseURL+chatCompletionsPath, apiKey, body)
	if err != nil {
		return "", err
	}
	return extractAssistantContent(raw)
}

func (c *Client) doJSON(ctx context.Context, requestURL string, apiKey string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm request failed, status=%d body=%s", resp.StatusCode, truncateText(string(respBody), 240))
	}
	return respBody, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func extractAssistantContent(raw []byte) (string, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content any `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrInvalidResponse
	}
	content := resp.Choices[0].Message.Content
	switch v := content.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok {
				parts = append(parts, text)
			}
		}
		if len(parts) == 0 {
			return "", ErrInvalidResponse
		}
		return strings.TrimSpace(strings.Join(parts, "\n")), nil
	default:
		return "", ErrInvalidResponse
	}
}

// extractJSONPayload strips markdown fences and surrounding prose from a model reply.
func extractJSONPayload(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "{}"
	}
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end >= start {
		return trimmed[start : end+1]
	}
	return trimmed
}

func truncateText(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
