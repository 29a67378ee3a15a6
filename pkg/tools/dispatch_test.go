package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorderFunc func(ctx context.Context, exec Execution) error

func (f recorderFunc) Record(ctx context.Context, exec Execution) error { return f(ctx, exec) }

func newTestDispatcher(t *testing.T, opts ...DispatcherOption) (*Dispatcher, *Workspace) {
	t.Helper()
	ws, _ := newTestWorkspace(t)
	return NewDispatcher(ws, opts...), ws
}

func TestParseCall(t *testing.T) {
	tests := []struct {
		name  string
		tool  string
		input string
		want  Call
	}{
		{"folder", NameCreateFolder, `{"path":"src"}`, CreateFolderCall{Path: "src"}},
		{"file default content", NameCreateFile, `{"path":"a.txt"}`, CreateFileCall{Path: "a.txt"}},
		{"file with content", NameCreateFile, `{"path":"a.txt","content":"hi"}`, CreateFileCall{Path: "a.txt", Content: "hi"}},
		{"write empty content", NameWriteToFile, `{"path":"a.txt","content":""}`, WriteToFileCall{Path: "a.txt"}},
		{"read", NameReadFile, `{"path":"notes.txt"}`, ReadFileCall{Path: "notes.txt"}},
		{"list default", NameListFiles, `{}`, ListFilesCall{Path: "."}},
		{"list empty input", NameListFiles, ``, ListFilesCall{Path: "."}},
		{"list path", NameListFiles, `{"path":"src"}`, ListFilesCall{Path: "src"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCall(tt.tool, json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCallErrors(t *testing.T) {
	_, err := ParseCall(NameWriteToFile, json.RawMessage(`{"path":"a.txt"}`))
	var missing *MissingParamError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "content", missing.Param)

	_, err = ParseCall(NameReadFile, json.RawMessage(`{"path":42}`))
	var invalid *InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, NameReadFile, invalid.Tool)
}

func TestExecuteUnknownTool(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.Equal(t, "Unknown tool: bogus_tool", d.Execute(context.Background(), "bogus_tool", json.RawMessage(`{}`)))
}

func TestExecuteReadMissingFile(t *testing.T) {
	d, _ := newTestDispatcher(t)
	got := d.Execute(context.Background(), NameReadFile, json.RawMessage(`{"path":"missing.txt"}`))
	assert.True(t, strings.HasPrefix(got, "Error reading file:"), got)
}

func TestExecuteMissingAndInvalidParams(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.Equal(t,
		`Error: missing required parameter "path" for read_file`,
		d.Execute(context.Background(), NameReadFile, json.RawMessage(`{}`)))

	got := d.Execute(context.Background(), NameCreateFolder, json.RawMessage(`{"path":`))
	assert.True(t, strings.HasPrefix(got, "Error: invalid input for create_folder: "), got)
}

func TestExecuteDelegatesToWorkspace(t *testing.T) {
	d, ws := newTestDispatcher(t)
	ctx := context.Background()

	assert.Equal(t, "Folder created: src", d.Execute(ctx, NameCreateFolder, json.RawMessage(`{"path":"src"}`)))
	assert.Equal(t, "File created: src/main.go", d.Execute(ctx, NameCreateFile, json.RawMessage(`{"path":"src/main.go"}`)))
	assert.Equal(t, "", ws.ReadFile("src/main.go"))
	assert.Equal(t, "Content written to file: src/main.go",
		d.Execute(ctx, NameWriteToFile, json.RawMessage(`{"path":"src/main.go","content":"package main\n"}`)))
	assert.Equal(t, "package main\n", d.Execute(ctx, NameReadFile, json.RawMessage(`{"path":"src/main.go"}`)))
	assert.Equal(t, "main.go", d.Execute(ctx, NameListFiles, json.RawMessage(`{"path":"src"}`)))
	assert.Equal(t, "src", d.Execute(ctx, NameListFiles, nil))
}

func TestExecuteCanceledContext(t *testing.T) {
	d, ws := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := d.Execute(ctx, NameCreateFile, json.RawMessage(`{"path":"a.txt"}`))
	assert.True(t, strings.HasPrefix(got, "Error: create_file not run"), got)
	assert.True(t, strings.HasPrefix(ws.ReadFile("a.txt"), "Error reading file:"))
}

func TestExecuteRecordsExecutions(t *testing.T) {
	var got []Execution
	rec := recorderFunc(func(_ context.Context, exec Execution) error {
		got = append(got, exec)
		return nil
	})
	d, _ := newTestDispatcher(t, WithRecorder(rec))
	ctx := context.Background()

	d.Execute(ctx, NameCreateFile, json.RawMessage(`{"path":"a.txt","content":"x"}`))
	d.Execute(ctx, NameReadFile, json.RawMessage(`{"path":"missing"}`))
	d.Execute(ctx, NameListFiles, nil)

	require.Len(t, got, 3)
	assert.Equal(t, NameCreateFile, got[0].Tool)
	assert.True(t, got[0].OK)
	assert.Equal(t, "File created: a.txt", got[0].Result)
	assert.False(t, got[1].OK)
	assert.JSONEq(t, `{}`, string(got[2].Input))
}

func TestRecorderErrorDoesNotChangeResult(t *testing.T) {
	rec := recorderFunc(func(context.Context, Execution) error { return errors.New("disk full") })
	d, _ := newTestDispatcher(t, WithRecorder(rec))
	assert.Equal(t, "Folder created: x", d.Execute(context.Background(), NameCreateFolder, json.RawMessage(`{"path":"x"}`)))
}
