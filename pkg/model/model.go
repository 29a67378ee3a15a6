// Package model defines the provider-neutral conversation types exchanged
// between the agent loop and a language model backend.
package model

import (
	"context"
	"encoding/json"
	"strings"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlock is one of TextBlock, ToolUseBlock or ToolResultBlock.
type ContentBlock interface {
	// Type returns the wire name of the block.
	Type() string
	contentBlock()
}

// TextBlock is plain text.
type TextBlock struct {
	Text string
}

func (TextBlock) Type() string  { return "text" }
func (TextBlock) contentBlock() {}

// ToolUseBlock is a model request to run a tool.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input json.RawMessage
}

func (ToolUseBlock) Type() string  { return "tool_use" }
func (ToolUseBlock) contentBlock() {}

// ToolResultBlock carries the output of the tool call identified by ToolUseID.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
}

func (ToolResultBlock) Type() string  { return "tool_result" }
func (ToolResultBlock) contentBlock() {}

// Message is one entry of the conversation history.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// NewTextMessage builds a message whose content is a single text block.
func NewTextMessage(role Role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{TextBlock{Text: text}}}
}

// Text concatenates the text blocks of the message.
func (m Message) Text() string {
	var sb strings.Builder
	for _, block := range m.Content {
		if tb, ok := block.(TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}

// ToolSpec describes a tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	// Schema is a JSON-schema object: {"type":"object","properties":...,"required":[...]}.
	Schema   map[string]any
	Required []string
}

// ToolChoice is the tool selection policy sent with a request.
type ToolChoice string

const (
	ToolChoiceAuto ToolChoice = "auto"
	ToolChoiceNone ToolChoice = "none"
)

// Request is one model invocation.
type Request struct {
	Model      string
	System     string
	Messages   []Message
	Tools      []ToolSpec
	ToolChoice ToolChoice
	MaxTokens  int
}

// Response is the ordered content the model returned.
type Response struct {
	Content    []ContentBlock
	StopReason string
}

// ToolUses returns the tool_use blocks of the response in order.
func (r Response) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, block := range r.Content {
		if tu, ok := block.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}

// Model is a synchronous chat backend.
type Model interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// NormalizeInput returns raw as a JSON object, substituting {} for empty input.
func NormalizeInput(raw string) json.RawMessage {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(raw)
}
