package agent

import (
	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
	"github.com/minhyannv/workspace-agent/pkg/model"
)

// Option configures optional runtime dependencies for a Conversation.
type Option func(*Conversation)

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(c *Conversation) {
		c.logger = loggerpkg.OrNop(l)
	}
}

// WithObserver receives text and tool activity as a turn progresses.
func WithObserver(o Observer) Option {
	return func(c *Conversation) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithMaxToolRounds bounds the follow-up model calls of one turn.
// Non-positive values keep the default.
func WithMaxToolRounds(n int) Option {
	return func(c *Conversation) {
		if n > 0 {
			c.maxToolRounds = n
		}
	}
}

// WithSystemPrompt sets the system instructions sent with every request.
func WithSystemPrompt(prompt string) Option {
	return func(c *Conversation) {
		c.system = prompt
	}
}

// WithTools replaces the tool specs sent with every request.
func WithTools(specs []model.ToolSpec) Option {
	return func(c *Conversation) {
		c.tools = append([]model.ToolSpec(nil), specs...)
	}
}

// WithModelName overrides the model identifier of each request.
func WithModelName(name string) Option {
	return func(c *Conversation) {
		c.modelName = name
	}
}

// WithMaxTokens caps the output tokens of each model call.
func WithMaxTokens(n int) Option {
	return func(c *Conversation) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}
