package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhyannv/workspace-agent/pkg/agent"
	"github.com/minhyannv/workspace-agent/pkg/render"
)

type fakeConversation struct {
	inputs  []string
	replies map[string]string
	errs    map[string]error
}

func (c *fakeConversation) Send(_ context.Context, input string) (string, error) {
	c.inputs = append(c.inputs, input)
	if err := c.errs[input]; err != nil {
		return "", err
	}
	return c.replies[input], nil
}

func runDriver(t *testing.T, input string, conv *fakeConversation) (string, error) {
	t.Helper()
	var out bytes.Buffer
	reader := NewScannerReader(strings.NewReader(input), &out)
	printer := render.NewPrinter(&out, render.WithColor(false))
	err := NewDriver(reader, conv, printer).Run(context.Background())
	return out.String(), err
}

func TestRunExitIsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"exit", "Exit", "EXIT", "  eXiT  "} {
		t.Run(word, func(t *testing.T) {
			conv := &fakeConversation{}
			out, err := runDriver(t, word+"\nnever sent\n", conv)
			require.NoError(t, err)
			assert.Empty(t, conv.inputs)
			assert.Contains(t, out, "Goodbye!")
		})
	}
}

func TestRunSendsLinesAndRendersReplies(t *testing.T) {
	conv := &fakeConversation{replies: map[string]string{
		"hello":     "Hi there",
		"show code": "Sure:\n```\necho hi\n```",
	}}
	out, err := runDriver(t, "hello\n\n   \nshow code\nexit\n", conv)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "show code"}, conv.inputs)
	assert.Contains(t, out, "Welcome to the workspace agent!")
	assert.Contains(t, out, "Hi there\n")
	assert.Contains(t, out, "Code:\necho hi\n")
	assert.Equal(t, 5, strings.Count(out, "You: "))
}

func TestRunEndsCleanlyOnEOF(t *testing.T) {
	conv := &fakeConversation{replies: map[string]string{"one": "1"}}
	out, err := runDriver(t, "one", conv)
	require.NoError(t, err)
	assert.Equal(t, []string{"one"}, conv.inputs)
	assert.NotContains(t, out, "Goodbye!")
}

func TestRunContinuesAfterToolLoopExceeded(t *testing.T) {
	conv := &fakeConversation{
		replies: map[string]string{"second": "ok"},
		errs:    map[string]error{"first": fmt.Errorf("%w: limit of 20 tool rounds reached", agent.ErrToolLoopExceeded)},
	}
	out, err := runDriver(t, "first\nsecond\n", conv)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, conv.inputs)
	assert.Contains(t, out, "tool loop exceeded")
	assert.Contains(t, out, "ok\n")
}

func TestRunReturnsOtherErrors(t *testing.T) {
	boom := errors.New("model call: 401 unauthorized")
	conv := &fakeConversation{errs: map[string]error{"first": boom}}
	_, err := runDriver(t, "first\nsecond\n", conv)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, conv.inputs)
}

type canceledConversation struct{ cancel context.CancelFunc }

func (c canceledConversation) Send(ctx context.Context, _ string) (string, error) {
	c.cancel()
	return "", fmt.Errorf("model call: %w", ctx.Err())
}

func TestRunInterruptedEndsWithoutError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out bytes.Buffer
	reader := NewScannerReader(strings.NewReader("hi\nagain\n"), &out)
	err := NewDriver(reader, canceledConversation{cancel: cancel}, render.NewPrinter(&out)).Run(ctx)
	assert.NoError(t, err)
}

type failingReader struct{}

func (failingReader) ReadLine(string) (string, error) { return "", errors.New("tty gone") }
func (failingReader) Close() error                    { return nil }

func TestRunReadError(t *testing.T) {
	err := NewDriver(failingReader{}, &fakeConversation{}, render.NewPrinter(io.Discard)).Run(context.Background())
	assert.ErrorContains(t, err, "read input: tty gone")
}

func TestPromptWorkingDirRepromptsUntilValid(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	var out bytes.Buffer
	input := strings.Join([]string{"", filepath.Join(dir, "missing"), file, dir}, "\n") + "\n"
	got, err := PromptWorkingDir(NewScannerReader(strings.NewReader(input), &out), &out)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.Equal(t, 4, strings.Count(out.String(), "Enter the working directory path: "))
	assert.Equal(t, 3, strings.Count(out.String(), "Invalid directory"))
}

func TestPromptWorkingDirEOF(t *testing.T) {
	_, err := PromptWorkingDir(NewScannerReader(strings.NewReader("nope\n"), nil), nil)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	got, err := CheckDir(" " + dir + " ")
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = CheckDir(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
	_, err = CheckDir("")
	assert.ErrorIs(t, err, ErrNotDirectory)
	_, err = CheckDir(filepath.Join(dir, "missing"))
	assert.True(t, os.IsNotExist(err))
}
