package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/peterh/liner"
)

// LineReader reads one line of user input per call. It returns io.EOF when
// input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from in and writes prompts to out. It is used
// when stdin is not a terminal.
func NewScannerReader(in io.Reader, out io.Writer) LineReader {
	if out == nil {
		out = io.Discard
	}
	return &scannerReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) Close() error { return nil }

type terminalReader struct {
	line *liner.State
}

// NewTerminalReader returns a line editor with in-memory history. Ctrl-C at
// the prompt ends input like EOF.
func NewTerminalReader() LineReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &terminalReader{line: line}
}

func (r *terminalReader) ReadLine(prompt string) (string, error) {
	text, err := r.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if text != "" {
		r.line.AppendHistory(text)
	}
	return text, nil
}

func (r *terminalReader) Close() error {
	return r.line.Close()
}
