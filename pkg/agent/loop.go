// Package agent runs the conversation loop: it sends the history to the
// model, executes requested tools and feeds their results back until the
// model answers with text only.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	configpkg "github.com/minhyannv/workspace-agent/pkg/config"
	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
	"github.com/minhyannv/workspace-agent/pkg/model"
	"github.com/minhyannv/workspace-agent/pkg/tools"
)

// ErrToolLoopExceeded is returned when a turn needs more follow-up model
// calls than allowed.
var ErrToolLoopExceeded = errors.New("tool loop exceeded")

// Executor runs a named tool and describes the outcome as text.
type Executor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) string
}

// Observer is notified while a turn is processed. OnText fires per text block
// as it arrives; an observer that prints the whole reply from Send's return
// value, as the CLI printer does, can ignore it.
type Observer interface {
	OnText(text string)
	OnToolUse(name string, input json.RawMessage)
	OnToolResult(name, result string)
}

type nopObserver struct{}

func (nopObserver) OnText(string)                     {}
func (nopObserver) OnToolUse(string, json.RawMessage) {}
func (nopObserver) OnToolResult(string, string)       {}

// Conversation holds the history of one session.
type Conversation struct {
	model    model.Model
	executor Executor

	system        string
	tools         []model.ToolSpec
	modelName     string
	maxTokens     int
	maxToolRounds int

	history  []model.Message
	observer Observer
	logger   loggerpkg.Logger
}

// New builds a Conversation that sends the built-in tool registry unless
// WithTools says otherwise.
func New(m model.Model, executor Executor, opts ...Option) *Conversation {
	c := &Conversation{
		model:         m,
		executor:      executor,
		tools:         tools.Specs(),
		maxTokens:     configpkg.DefaultMaxTokens,
		maxToolRounds: configpkg.DefaultMaxToolRounds,
		observer:      nopObserver{},
		logger:        loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// History returns a copy of the conversation so far.
func (c *Conversation) History() []model.Message {
	return append([]model.Message(nil), c.history...)
}

// turn accumulates the state of one Send call.
type turn struct {
	text   strings.Builder
	rounds int
}

// Send processes one user input and returns the assistant text of the turn.
// On error the history is restored to what it was before the call.
func (c *Conversation) Send(ctx context.Context, input string) (string, error) {
	previousLen := len(c.history)
	c.history = append(c.history, model.NewTextMessage(model.RoleUser, input))

	var t turn
	err := c.respond(ctx, &t)
	if err != nil {
		c.history = c.history[:previousLen]
		c.logger.Debug("turn rolled back", map[string]any{"error": err.Error(), "rounds": t.rounds})
		return "", err
	}

	text := t.text.String()
	c.history = append(c.history, model.NewTextMessage(model.RoleAssistant, text))
	c.logger.Debug("turn complete", map[string]any{"rounds": t.rounds, "bytes": len(text)})
	return text, nil
}

// respond calls the model and processes its content blocks in order. Each
// tool_use block is answered and followed by another respond call before the
// remaining blocks are processed.
func (c *Conversation) respond(ctx context.Context, t *turn) error {
	resp, err := c.complete(ctx)
	if err != nil {
		return err
	}

	for _, block := range resp.Content {
		switch b := block.(type) {
		case model.TextBlock:
			t.text.WriteString(b.Text)
			c.observer.OnText(b.Text)
		case model.ToolUseBlock:
			if t.rounds >= c.maxToolRounds {
				return fmt.Errorf("%w: limit of %d tool rounds reached", ErrToolLoopExceeded, c.maxToolRounds)
			}
			c.runTool(ctx, b)
			t.rounds++
			if err := c.respond(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Conversation) runTool(ctx context.Context, use model.ToolUseBlock) {
	c.history = append(c.history, model.Message{
		Role:    model.RoleAssistant,
		Content: []model.ContentBlock{use},
	})
	c.observer.OnToolUse(use.Name, use.Input)

	result := c.executor.Execute(ctx, use.Name, use.Input)
	c.observer.OnToolResult(use.Name, result)

	c.history = append(c.history, model.Message{
		Role:    model.RoleUser,
		Content: []model.ContentBlock{model.ToolResultBlock{ToolUseID: use.ID, Content: result}},
	})
}

func (c *Conversation) complete(ctx context.Context) (model.Response, error) {
	c.logger.Debug("model call", map[string]any{"messages": len(c.history)})
	resp, err := c.model.Complete(ctx, model.Request{
		Model:      c.modelName,
		System:     c.system,
		Messages:   c.History(),
		Tools:      c.tools,
		ToolChoice: model.ToolChoiceAuto,
		MaxTokens:  c.maxTokens,
	})
	if err != nil {
		return model.Response{}, fmt.Errorf("model call: %w", err)
	}
	c.logger.Debug("model response", map[string]any{
		"stop_reason": resp.StopReason,
		"tool_uses":   len(resp.ToolUses()),
	})
	return resp, nil
}
