package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrEmptyReply is returned when the endpoint answers with no usable text.
var ErrEmptyReply = errors.New("LLM returned an empty reply")

// thinkRegex matches the reasoning block emitted by reasoning models such as deepseek-r1.
var thinkRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Request is a single prompt sent to the generation endpoint.
type Request struct {
	Prompt      string
	System      string
	Temperature float32
	TopP        float32
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new LLM client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping checks that the endpoint is reachable and lists at least one model.
func (c *Client) Ping(ctx context.Context) error {
	models, err := c.api.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if len(models.Models) == 0 {
		return fmt.Errorf("endpoint reports no models")
	}
	return nil
}

// Complete sends one prompt and returns the reply text with any reasoning block removed.
// The caller bounds the call through ctx.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", fmt.Errorf("LLM API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	text := StripReasoning(raw)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// StripReasoning removes <think> blocks and surrounding whitespace.
func StripReasoning(s string) string {
	return strings.TrimSpace(thinkRegex.ReplaceAllString(s, ""))
}
