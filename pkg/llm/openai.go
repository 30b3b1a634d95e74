package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turnos-ai/orchestrator/pkg/schema"
)

const defaultMaxTokens = 512

// OpenAIClient talks to an OpenAI-compatible completions endpoint (vLLM,
// llama.cpp, TGI) in JSON mode and validates every reply against the schema
// registry. On a validation failure it retries once with a stricter reminder
// before surfacing ErrInvalidJSON.
type OpenAIClient struct {
	api      *openai.Client
	model    string
	registry *schema.Registry
}

// NewOpenAIClient builds a client for the given endpoint and model.
func NewOpenAIClient(baseURL, apiKey, model string, registry *schema.Registry) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{
		api:      openai.NewClientWithConfig(cfg),
		model:    model,
		registry: registry,
	}
}

// GenerateJSON implements Client.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	raw, err := c.complete(ctx, req.System, req.User, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	if verr := c.check(req.SchemaName, raw); verr != nil {
		// One repair attempt: repeat the request with the validation failure
		// spelled out. A second failure is surfaced to the caller's fallback.
		reminder := fmt.Sprintf(
			"%s\n\nYour previous reply was rejected: %v.\nReturn ONLY a JSON object that conforms to the schema. No prose, no markdown fences.",
			req.User, verr)
		raw, err = c.complete(ctx, req.System, reminder, req.MaxTokens)
		if err != nil {
			return nil, err
		}
		if verr := c.check(req.SchemaName, raw); verr != nil {
			return nil, &Error{Kind: ErrInvalidJSON, Err: verr}
		}
	}
	return raw, nil
}

func (c *OpenAIClient) complete(ctx context.Context, system, user string, maxTokens int) (json.RawMessage, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: ErrTimeout, Err: err}
		}
		return nil, &Error{Kind: ErrTransport, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: ErrTransport, Err: errors.New("empty choices in completion")}
	}

	return json.RawMessage(stripFences(resp.Choices[0].Message.Content)), nil
}

func (c *OpenAIClient) check(schemaName string, raw json.RawMessage) error {
	if schemaName == "" {
		var v any
		return json.Unmarshal(raw, &v)
	}
	return c.registry.ValidateRaw(schemaName, raw)
}

// stripFences removes a markdown code fence some models wrap around JSON
// even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

var _ Client = (*OpenAIClient)(nil)
