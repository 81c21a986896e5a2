package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rollcall/internal/logging"
)

// OpenAIClient implements ChatCompleter for OpenAI-compatible
// /chat/completions APIs (DeepSeek, OpenAI).
type OpenAIClient struct {
	name    string
	apiKey  string
	baseURL string
	timeout time.Duration
}

// OpenAIConfig holds configuration for an OpenAI-compatible client.
type OpenAIConfig struct {
	Name    string // provider label used in logs
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// NewOpenAIClient creates a new OpenAI-compatible client.
func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, ErrNoCredential
	}
	if config.Name == "" {
		config.Name = "openai"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &OpenAIClient{
		name:    config.Name,
		apiKey:  config.APIKey,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		timeout: config.Timeout,
	}, nil
}

// Name returns the provider label.
func (c *OpenAIClient) Name() string {
	return c.name
}

// ChatComplete performs exactly one request; there is no retry loop.
func (c *OpenAIClient) ChatComplete(ctx context.Context, model string, messages []Message) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	startTime := time.Now()
	logging.APIDebug("[%s] ChatComplete: model=%s messages=%d", c.name, model, len(messages))

	reqBody := openAIRequest{
		Model:       model,
		Messages:    messages,
		Stream:      false,
		Temperature: 0.1,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	client := newOneShotClient(c.timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.APIWarn("[%s] ChatComplete: status %d", c.name, resp.StatusCode)
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	logging.API("[%s] ChatComplete: completed in %v response_len=%d", c.name, time.Since(startTime), len(content))
	return content, nil
}

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
