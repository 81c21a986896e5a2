// Package llm contains the language-model backends used for AI extraction:
// a local Ollama server and the cloud chat-completion providers.
//
// Every call builds its own transport and closes it before returning, so no
// connection outlives a single request.
package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNoCredential is returned when a cloud client is built without an API key.
var ErrNoCredential = errors.New("API key not configured")

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// ModelLister lists the models a backend can serve.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// LocalBackend is what the local tier needs from Ollama.
type LocalBackend interface {
	Generator
	ModelLister
}

// Message represents a message in the conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter sends one non-streaming chat completion.
type ChatCompleter interface {
	ChatComplete(ctx context.Context, model string, messages []Message) (string, error)
	Name() string
}

// UserMessage wraps a prompt as a single user message.
func UserMessage(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}

// newOneShotClient returns a client whose transport does not pool
// connections. Callers must call CloseIdleConnections when done.
func newOneShotClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{DisableKeepAlives: true, Proxy: http.ProxyFromEnvironment},
	}
}

// withDefaultTimeout applies timeout when ctx has no deadline.
func withDefaultTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
