package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	imageGenerationPath = "/v1/images/generations"
	placeholderImageFmt = "https://picsum.photos/seed/%s/800/800"
)

// PlaceholderImageURL is shown when image synthesis fails; seed keeps it stable per challenge.
func PlaceholderImageURL(seed string) string {
	return fmt.Sprintf(placeholderImageFmt, url.PathEscape(seed))
}

// GenerateImage returns a data URL or a remote URL for prompt.
func (c *Client) GenerateImage(ctx context.Context, apiKey string, prompt string) (imageURL string, err error) {
	ctx, span := tracer.Start(ctx, "llm.GenerateImage", trace.WithAttributes(
		attribute.String("image.model", c.imageModel),
	))
	defer func() { endSpan(span, err) }()

	key, err := c.resolveKey(apiKey)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := map[string]any{
		"model":  c.imageModel,
		"prompt": strings.TrimSpace(prompt),
		"n":      1,
		"size":   "1024x1024",
	}
	respBody, err := c.doJSON(ctx, resolveImageGenerationRequestURL(c.imageBaseURL), key, body)
	if err != nil {
		return "", err
	}
	return parseGeneratedImageValue(respBody)
}

func resolveImageGenerationRequestURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(strings.ToLower(trimmed), imageGenerationPath) {
		return trimmed
	}
	return trimmed + imageGenerationPath
}

// parseGeneratedImageValue accepts both the OpenAI data[] shape and the output{} shape
// used by several compatible gateways.
func parseGeneratedImageValue(respBody []byte) (string, error) {
	var resp struct {
		Data []struct {
			URL     string `json:"url"`
			B64JSON string `json:"b64_json"`
		} `json:"data"`
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Output struct {
			Images  []string `json:"images"`
			Results []struct {
				URL     string `json:"url"`
				B64JSON string `json:"b64_json"`
			} `json:"results"`
		} `json:"output"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse image generation response failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("image generation failed: code=%s message=%s", strings.TrimSpace(resp.Error.Code), strings.TrimSpace(resp.Error.Message))
	}
	for _, item := range resp.Data {
		if trimmed := strings.TrimSpace(item.B64JSON); trimmed != "" {
			return "data:image/png;base64," + trimmed, nil
		}
		if trimmed := strings.TrimSpace(item.URL); trimmed != "" {
			return trimmed, nil
		}
	}
	for _, item := range resp.Output.Results {
		if trimmed := strings.TrimSpace(item.B64JSON); trimmed != "" {
			return "data:image/png;base64," + trimmed, nil
		}
		if trimmed := strings.TrimSpace(item.URL); trimmed != "" {
			return trimmed, nil
		}
	}
	for _, imageURL := range resp.Output.Images {
		if trimmed := strings.TrimSpace(imageURL); trimmed != "" {
			return trimmed, nil
		}
	}
	return "", ErrInvalidResponse
}
