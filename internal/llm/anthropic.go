package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"rollcall/internal/logging"
)

// AnthropicClient implements ChatCompleter on the Anthropic Messages API.
type AnthropicClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// NewAnthropicClient creates a client. baseURL may be empty.
func NewAnthropicClient(apiKey, baseURL string, timeout time.Duration) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AnthropicClient{apiKey: apiKey, baseURL: baseURL, timeout: timeout}, nil
}

// Name returns the provider label.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// ChatComplete sends one Messages request with SDK retries disabled.
func (c *AnthropicClient) ChatComplete(ctx context.Context, model string, messages []Message) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	httpClient := newOneShotClient(c.timeout)
	defer httpClient.CloseIdleConnections()

	opts := []option.RequestOption{
		option.WithAPIKey(c.apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := anthropic.NewClient(opts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 2048,
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	startTime := time.Now()
	message, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in anthropic response")
	}

	logging.API("[anthropic] ChatComplete: completed in %v tokens_in=%d tokens_out=%d",
		time.Since(startTime), message.Usage.InputTokens, message.Usage.OutputTokens)
	return strings.TrimSpace(sb.String()), nil
}
