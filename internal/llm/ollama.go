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

// =============================================================================
// OLLAMA CLIENT
// =============================================================================

// DefaultOllamaEndpoint is where a local Ollama server listens.
const DefaultOllamaEndpoint = "http://localhost:11434"

// OllamaClient talks to a local Ollama server.
type OllamaClient struct {
	endpoint string
	timeout  time.Duration
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(endpoint string, timeout time.Duration) *OllamaClient {
	if endpoint == "" {
		endpoint = DefaultOllamaEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OllamaClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		timeout:  timeout,
	}
}

// Endpoint returns the server base URL.
func (c *OllamaClient) Endpoint() string {
	return c.endpoint
}

// Generate runs a single non-streaming generation.
func (c *OllamaClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryAPI, "ollama generate")
	defer timer.StopWithThreshold(c.timeout / 2)

	body, err := json.Marshal(ollamaGenerateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var result ollamaGenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate", body, &result); err != nil {
		return "", err
	}
	if result.Error != "" {
		return "", fmt.Errorf("ollama error: %s", result.Error)
	}

	logging.APIDebug("[Ollama] generate: model=%s prompt_len=%d response_len=%d", model, len(prompt), len(result.Response))
	return strings.TrimSpace(result.Response), nil
}

// ListModels returns the names of locally installed models.
func (c *OllamaClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := withDefaultTimeout(ctx, c.timeout)
	defer cancel()

	var result ollamaTagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &result); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name != "" {
			models = append(models, name)
		}
	}
	return models, nil
}

func (c *OllamaClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := newOneShotClient(c.timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logging.APIWarn("[ollama] %s %s: status %d", method, path, resp.StatusCode)
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// =============================================================================
// OLLAMA API TYPES
// =============================================================================

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}
