package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maxvaer/extfuzz/internal/config"
)

// Completer sends a single stateless prompt and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var chatHTTPClient = &http.Client{Timeout: 60 * time.Second}

// ChatClient talks to an OpenAI-compatible chat-completions endpoint (Groq
// by default) with a fixed model.
type ChatClient struct {
	client *openai.Client
	model  string
}

// NewChatClient builds the authenticated client once at startup.
func NewChatClient(opts *config.Options) (*ChatClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key")
	}

	cfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(opts.APIBase); base != "" {
		cfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	cfg.HTTPClient = chatHTTPClient

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = config.DefaultModel
	}

	return &ChatClient{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Model returns the model identifier sent with every request.
func (c *ChatClient) Model() string { return c.model }

// Complete sends prompt as the only user message and returns the first
// choice's content.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
