package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"rollcall/internal/logging"
)

// =============================================================================
// GOOGLE GENAI CHAT CLIENT
// =============================================================================

// GeminiClient implements ChatCompleter using Google's Gemini API.
type GeminiClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// NewGeminiClient creates a new Gemini client. baseURL may be empty.
func NewGeminiClient(apiKey, baseURL string, timeout time.Duration) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GeminiClient{apiKey: apiKey, baseURL: baseURL, timeout: timeout}, nil
}

// Name returns the provider label.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// ChatComplete sends one GenerateContent request.
func (c *GeminiClient) ChatComplete(ctx context.Context, model string, messages []Message) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	httpClient := newOneShotClient(c.timeout)
	defer httpClient.CloseIdleConnections()

	cc := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	var (
		contents []*genai.Content
		config   = &genai.GenerateContentConfig{}
	)
	for _, m := range messages {
		switch m.Role {
		case "system":
			config.SystemInstruction = genai.NewContentFromText(m.Content, genai.RoleUser)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	startTime := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no text content in gemini response")
	}
	logging.API("[gemini] ChatComplete: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}
