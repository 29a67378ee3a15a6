// Package anthropic adapts the Anthropic Messages API to model.Model.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/minhyannv/workspace-agent/pkg/model"
)

// Config configures the Anthropic client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Model calls the Messages API synchronously.
type Model struct {
	client anthropic.Client
	model  string
}

// New builds a Model. SDK retries are disabled: a failed call is returned to
// the caller as is.
func New(cfg Config) *Model {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &Model{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends req and converts the reply into provider-neutral blocks.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	params, err := m.newParams(req)
	if err != nil {
		return model.Response{}, err
	}
	msg, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return model.Response{}, err
	}
	if msg == nil {
		return model.Response{}, errors.New("empty message response")
	}
	return fromContent(msg.Content, string(msg.StopReason)), nil
}

func (m *Model) newParams(req model.Request) (anthropic.MessageNewParams, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = m.model
	}
	messages, err := toMessageParams(req.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(req.MaxTokens),
		Messages:  messages,
		Tools:     toToolParams(req.Tools),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 && req.ToolChoice == model.ToolChoiceAuto {
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
	return params, nil
}

func toMessageParams(history []model.Message) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(history))
	for i, msg := range history {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, block := range msg.Content {
			switch b := block.(type) {
			case model.TextBlock:
				// The API rejects empty text blocks.
				if b.Text == "" {
					continue
				}
				blocks = append(blocks, anthropic.NewTextBlock(b.Text))
			case model.ToolUseBlock:
				blocks = append(blocks, anthropic.NewToolUseBlock(b.ID, model.NormalizeInput(string(b.Input)), b.Name))
			case model.ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(b.ToolUseID, b.Content, false))
			default:
				return nil, fmt.Errorf("message %d: unsupported content block %T", i, block)
			}
		}
		if len(blocks) == 0 {
			continue
		}
		switch msg.Role {
		case model.RoleUser:
			out = append(out, anthropic.NewUserMessage(blocks...))
		case model.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			return nil, fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
	}
	return out, nil
}

func toToolParams(specs []model.ToolSpec) []anthropic.ToolUnionParam {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		tool := anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.String(spec.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: spec.Schema["properties"],
				Required:   spec.Required,
			},
		}
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return tools
}

func fromContent(content []anthropic.ContentBlockUnion, stopReason string) model.Response {
	resp := model.Response{StopReason: stopReason}
	for _, block := range content {
		switch block.Type {
		case "text":
			resp.Content = append(resp.Content, model.TextBlock{Text: block.Text})
		case "tool_use":
			resp.Content = append(resp.Content, model.ToolUseBlock{
				ID:    block.ID,
				Name:  block.Name,
				Input: model.NormalizeInput(string(block.Input)),
			})
		}
	}
	return resp
}
