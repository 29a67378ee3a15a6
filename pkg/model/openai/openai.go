// Package openai adapts OpenAI-compatible chat completions to model.Model.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/minhyannv/workspace-agent/pkg/model"
)

// Config configures the OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Model calls the chat completions endpoint without streaming.
type Model struct {
	client openai.Client
	model  string
}

// New builds a Model with SDK retries disabled.
func New(cfg Config) *Model {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &Model{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends req and converts the first choice into content blocks.
func (m *Model) Complete(ctx context.Context, req model.Request) (model.Response, error) {
	params, err := m.newParams(req)
	if err != nil {
		return model.Response{}, err
	}
	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return model.Response{}, err
	}
	if len(completion.Choices) == 0 {
		return model.Response{}, errors.New("empty completion choices")
	}
	return fromMessage(completion.Choices[0].Message, completion.Choices[0].FinishReason), nil
}

func (m *Model) newParams(req model.Request) (openai.ChatCompletionNewParams, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = m.model
	}
	messages, err := toMessageParams(req.System, req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: messages,
		Tools:    toToolParams(req.Tools),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if len(req.Tools) > 0 && req.ToolChoice != "" {
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
			OfAuto: openai.String(string(req.ToolChoice)),
		}
	}
	return params, nil
}

// toMessageParams flattens block messages into chat roles: tool_use blocks
// become assistant tool calls and each tool_result becomes a tool message.
func toMessageParams(system string, history []model.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for i, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			if text := msg.Text(); text != "" {
				out = append(out, openai.UserMessage(text))
			}
			for _, block := range msg.Content {
				if result, ok := block.(model.ToolResultBlock); ok {
					out = append(out, openai.ToolMessage(result.Content, result.ToolUseID))
				}
			}
		case model.RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if text := msg.Text(); text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			for _, block := range msg.Content {
				if use, ok := block.(model.ToolUseBlock); ok {
					assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
						ID: use.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      use.Name,
							Arguments: string(model.NormalizeInput(string(use.Input))),
						},
					})
				}
			}
			if msg.Text() == "" && len(assistant.ToolCalls) == 0 {
				continue
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			return nil, fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
	}
	return out, nil
}

func toToolParams(specs []model.ToolSpec) []openai.ChatCompletionToolParam {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  openai.FunctionParameters(spec.Schema),
			},
		})
	}
	return tools
}

func fromMessage(msg openai.ChatCompletionMessage, finishReason string) model.Response {
	resp := model.Response{StopReason: finishReason}
	if msg.Content != "" {
		resp.Content = append(resp.Content, model.TextBlock{Text: msg.Content})
	}
	for _, call := range msg.ToolCalls {
		resp.Content = append(resp.Content, model.ToolUseBlock{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: model.NormalizeInput(call.Function.Arguments),
		})
	}
	return resp
}
