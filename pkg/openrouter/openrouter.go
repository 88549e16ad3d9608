// Package openrouter adapts the OpenAI SDK to the contract.ModelClient
// interface, configured for the OpenRouter chat-completions endpoint.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"supportmesh/agent/contract"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client implements contract.ModelClient over the OpenAI chat API.
type Client struct {
	api   openaisdk.Client
	model string
	cfg   Config
}

var _ contract.ModelClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openrouter: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openrouter: model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
	}
	if trimmed := strings.TrimRight(cfg.BaseURL, "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	// OpenRouter attribution headers
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	return &Client{
		api:   openaisdk.NewClient(opts...),
		model: strings.TrimSpace(cfg.Model),
		cfg:   cfg,
	}, nil
}

func (c *Client) Complete(ctx context.Context, req contract.ModelRequest) (contract.ModelResponse, error) {
	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openaisdk.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case contract.RoleAssistant:
			if raw, ok := m.Raw.(openaisdk.ChatCompletionMessageParamUnion); ok {
				messages = append(messages, raw)
				continue
			}
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		case contract.RoleTool:
			messages = append(messages, openaisdk.ToolMessage(m.Content, m.ToolCallID))
		default:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openaisdk.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxCompletionToken > 0 {
		params.MaxTokens = openaisdk.Int(int64(c.cfg.MaxCompletionToken))
	}
	if len(req.Tools) > 0 {
		params.Tools = toolParams(req.Tools)
	}

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return contract.ModelResponse{}, fmt.Errorf("%w: %v", contract.ErrModelInvoke, err)
	}
	if len(completion.Choices) == 0 {
		return contract.ModelResponse{}, fmt.Errorf("%w: empty choices", contract.ErrModelInvoke)
	}

	choice := completion.Choices[0].Message
	res := contract.ModelResponse{
		Content: choice.Content,
		Raw:     choice.ToParam(),
	}
	for _, call := range choice.ToolCalls {
		res.ToolCalls = append(res.ToolCalls, contract.ModelToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return res, nil
}

func toolParams(specs []contract.ToolSpec) []openaisdk.ChatCompletionToolUnionParam {
	out := make([]openaisdk.ChatCompletionToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		schema := map[string]any{
			"type":       "object",
			"properties": spec.Parameters,
		}
		if len(spec.Required) > 0 {
			schema["required"] = spec.Required
		}
		out = append(out, openaisdk.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        spec.Name,
			Description: openaisdk.String(spec.Description),
			Parameters:  shared.FunctionParameters(schema),
		}))
	}
	return out
}
