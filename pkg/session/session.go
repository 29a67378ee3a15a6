// Package session drives an interactive chat: it obtains the working
// directory and feeds user lines to the conversation until the user leaves.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minhyannv/workspace-agent/pkg/agent"
	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
)

// ErrNotDirectory is returned by CheckDir for paths that are not directories.
var ErrNotDirectory = errors.New("not a directory")

// Conversation answers one user input per call.
type Conversation interface {
	Send(ctx context.Context, input string) (string, error)
}

// Renderer displays session output.
type Renderer interface {
	UserPrompt() string
	Welcome()
	Goodbye()
	Notice(msg string)
	Response(text string)
}

// CheckDir returns the absolute form of path if it names an existing
// directory.
func CheckDir(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path: %w", ErrNotDirectory)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return abs, nil
}

// PromptWorkingDir asks for a directory until an existing one is entered.
func PromptWorkingDir(r LineReader, out io.Writer) (string, error) {
	if out == nil {
		out = io.Discard
	}
	for {
		line, err := r.ReadLine("Enter the working directory path: ")
		if err != nil {
			return "", err
		}
		dir, err := CheckDir(line)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Invalid directory (%v). Please try again.\n", err)
			continue
		}
		return dir, nil
	}
}

// Option customizes a Driver.
type Option func(*Driver)

// WithLogger sets the driver logger.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *Driver) {
		d.logger = loggerpkg.OrNop(l)
	}
}

// Driver runs the read loop.
type Driver struct {
	reader   LineReader
	conv     Conversation
	renderer Renderer
	logger   loggerpkg.Logger
}

// NewDriver wires a reader, a conversation and a renderer into a session.
func NewDriver(reader LineReader, conv Conversation, renderer Renderer, opts ...Option) *Driver {
	d := &Driver{
		reader:   reader,
		conv:     conv,
		renderer: renderer,
		logger:   loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Run reads input until EOF or "exit". A turn that hits the tool round limit
// is reported and the session continues; any other conversation error ends
// the session and is returned. Cancelling ctx ends the session without error.
func (d *Driver) Run(ctx context.Context) error {
	d.renderer.Welcome()
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := d.reader.ReadLine(d.renderer.UserPrompt())
		if errors.Is(err, io.EOF) {
			d.logger.Debug("input closed", nil)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			d.renderer.Goodbye()
			return nil
		}

		text, err := d.conv.Send(ctx, input)
		switch {
		case errors.Is(err, agent.ErrToolLoopExceeded):
			d.logger.Warn("turn abandoned", map[string]any{"error": err.Error()})
			d.renderer.Notice(fmt.Sprintf("Stopped: %v. The request was discarded; try rephrasing it.", err))
			continue
		case err != nil && ctx.Err() != nil:
			d.logger.Debug("session interrupted", map[string]any{"error": err.Error()})
			return nil
		case err != nil:
			return err
		}
		d.renderer.Response(text)
	}
}
