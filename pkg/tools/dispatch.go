package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
	"github.com/minhyannv/workspace-agent/pkg/model"
)

// Call is a decoded tool invocation. The concrete types are
// CreateFolderCall, CreateFileCall, WriteToFileCall, ReadFileCall and
// ListFilesCall.
type Call interface {
	ToolName() string
	call()
}

type CreateFolderCall struct{ Path string }

type CreateFileCall struct {
	Path    string
	Content string
}

type WriteToFileCall struct {
	Path    string
	Content string
}

type ReadFileCall struct{ Path string }

type ListFilesCall struct{ Path string }

func (CreateFolderCall) ToolName() string { return NameCreateFolder }
func (CreateFileCall) ToolName() string   { return NameCreateFile }
func (WriteToFileCall) ToolName() string  { return NameWriteToFile }
func (ReadFileCall) ToolName() string     { return NameReadFile }
func (ListFilesCall) ToolName() string    { return NameListFiles }

func (CreateFolderCall) call() {}
func (CreateFileCall) call()   {}
func (WriteToFileCall) call()  {}
func (ReadFileCall) call()     {}
func (ListFilesCall) call()    {}

// UnknownToolError is returned by ParseCall for a name outside the registry.
type UnknownToolError struct{ Name string }

func (e *UnknownToolError) Error() string { return "Unknown tool: " + e.Name }

// MissingParamError reports a required parameter absent from the input.
type MissingParamError struct {
	Tool  string
	Param string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("Error: missing required parameter %q for %s", e.Param, e.Tool)
}

// InvalidInputError wraps a JSON decoding failure.
type InvalidInputError struct {
	Tool string
	Err  error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("Error: invalid input for %s: %v", e.Tool, e.Err)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }

type rawInput struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

// ParseCall decodes input for the named tool.
func ParseCall(name string, input json.RawMessage) (Call, error) {
	switch name {
	case NameCreateFolder, NameCreateFile, NameWriteToFile, NameReadFile, NameListFiles:
	default:
		return nil, &UnknownToolError{Name: name}
	}

	var in rawInput
	if err := json.Unmarshal(model.NormalizeInput(string(input)), &in); err != nil {
		return nil, &InvalidInputError{Tool: name, Err: err}
	}
	require := func(v *string, param string) (string, error) {
		if v == nil {
			return "", &MissingParamError{Tool: name, Param: param}
		}
		return *v, nil
	}
	optional := func(v *string, def string) string {
		if v == nil {
			return def
		}
		return *v
	}

	switch name {
	case NameCreateFolder:
		path, err := require(in.Path, "path")
		if err != nil {
			return nil, err
		}
		return CreateFolderCall{Path: path}, nil
	case NameCreateFile:
		path, err := require(in.Path, "path")
		if err != nil {
			return nil, err
		}
		return CreateFileCall{Path: path, Content: optional(in.Content, "")}, nil
	case NameWriteToFile:
		path, err := require(in.Path, "path")
		if err != nil {
			return nil, err
		}
		content, err := require(in.Content, "content")
		if err != nil {
			return nil, err
		}
		return WriteToFileCall{Path: path, Content: content}, nil
	case NameReadFile:
		path, err := require(in.Path, "path")
		if err != nil {
			return nil, err
		}
		return ReadFileCall{Path: path}, nil
	default:
		return ListFilesCall{Path: optional(in.Path, ".")}, nil
	}
}

// Execution is one dispatched tool call, as passed to a Recorder.
type Execution struct {
	Tool     string
	Input    json.RawMessage
	Result   string
	OK       bool
	Started  time.Time
	Duration time.Duration
}

// Recorder receives every execution. Errors are logged and otherwise ignored.
type Recorder interface {
	Record(ctx context.Context, exec Execution) error
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder attaches an execution recorder.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l loggerpkg.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = loggerpkg.OrNop(l)
	}
}

// Dispatcher maps tool calls onto a Workspace.
type Dispatcher struct {
	ws       *Workspace
	recorder Recorder
	logger   loggerpkg.Logger
	now      func() time.Time
}

// NewDispatcher executes tool calls against ws.
func NewDispatcher(ws *Workspace, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		ws:     ws,
		logger: loggerpkg.NopLogger{},
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Execute runs the named tool and returns its result text. It never returns
// an error: unknown tools, bad input and filesystem failures are all
// described in the result.
func (d *Dispatcher) Execute(ctx context.Context, name string, input json.RawMessage) string {
	started := d.now()
	result, ok := d.execute(ctx, name, input)
	exec := Execution{
		Tool:     name,
		Input:    model.NormalizeInput(string(input)),
		Result:   result,
		OK:       ok,
		Started:  started,
		Duration: d.now().Sub(started),
	}
	d.logger.Debug("tool executed", map[string]any{"tool": name, "ok": ok, "duration_ms": exec.Duration.Milliseconds()})
	if d.recorder != nil {
		if err := d.recorder.Record(ctx, exec); err != nil {
			d.logger.Warn("record tool execution failed", map[string]any{"tool": name, "error": err.Error()})
		}
	}
	return result
}

func (d *Dispatcher) execute(ctx context.Context, name string, input json.RawMessage) (string, bool) {
	if err := ctx.Err(); err != nil {
		return fmt.Sprintf("Error: %s not run: %v", name, err), false
	}
	call, err := ParseCall(name, input)
	if err != nil {
		return err.Error(), false
	}

	switch c := call.(type) {
	case CreateFolderCall:
		return d.ws.createFolder(c.Path)
	case CreateFileCall:
		return d.ws.createFile(c.Path, c.Content)
	case WriteToFileCall:
		return d.ws.writeToFile(c.Path, c.Content)
	case ReadFileCall:
		return d.ws.readFile(c.Path)
	case ListFilesCall:
		return d.ws.listFiles(c.Path)
	default:
		return "Unknown tool: " + name, false
	}
}
