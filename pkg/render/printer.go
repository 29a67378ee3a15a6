// Package render prints conversation output to the console.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the role colors.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Tool      lipgloss.Style
	Result    lipgloss.Style
	Error     lipgloss.Style
}

// DefaultStyles colors each speaker with a 16-color palette.
func DefaultStyles() Styles {
	return Styles{
		User:      lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Assistant: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Tool:      lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Result:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// PrinterOption customizes a Printer.
type PrinterOption func(*Printer)

// WithColor turns ANSI styling on or off.
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.color = enabled
	}
}

// WithMarkdown renders prose segments as markdown.
func WithMarkdown(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.markdown = enabled
	}
}

// Printer writes welcome text, assistant responses and tool activity.
// It implements agent.Observer.
type Printer struct {
	out      io.Writer
	styles   Styles
	color    bool
	markdown bool
	md       *glamour.TermRenderer
}

// NewPrinter writes to out. Color and markdown are off unless enabled by opts.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{out: out, styles: DefaultStyles()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.markdown {
		style := glamour.WithAutoStyle()
		if !p.color {
			style = glamour.WithStandardStyle("notty")
		}
		md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(80))
		if err == nil {
			p.md = md
		}
	}
	return p
}

// UserPrompt is shown before each input line. It carries no escape codes so
// line editors can measure it.
func (p *Printer) UserPrompt() string {
	return "You: "
}

// Welcome prints the session greeting.
func (p *Printer) Welcome() {
	p.block(p.styles.Assistant, "Welcome to the workspace agent!")
	p.block(p.styles.Assistant, "Type 'exit' to end the conversation.")
}

// Goodbye prints the farewell shown on exit.
func (p *Printer) Goodbye() {
	p.block(p.styles.Assistant, "Thank you for chatting. Goodbye!")
}

// Notice prints a non-fatal problem.
func (p *Printer) Notice(msg string) {
	p.block(p.styles.Error, msg)
}

// Response renders the assistant text of a turn, highlighting fenced code.
func (p *Printer) Response(text string) {
	fmt.Fprintln(p.out)
	for _, seg := range SplitSegments(text) {
		p.segment(seg)
	}
}

func (p *Printer) segment(seg Segment) {
	switch {
	case !seg.Code:
		p.prose(seg.Body)
	case seg.Language != "" && seg.Body != "":
		p.code(seg.Language, seg.Body)
	case seg.Body != "":
		p.block(p.styles.Assistant, "Code:\n"+seg.Body)
	default:
		p.block(p.styles.Assistant, seg.Raw)
	}
}

func (p *Printer) prose(text string) {
	if p.md != nil && strings.TrimSpace(text) != "" {
		if out, err := p.md.Render(text); err == nil {
			fmt.Fprint(p.out, out)
			return
		}
	}
	p.block(p.styles.Assistant, text)
}

func (p *Printer) code(language, body string) {
	highlighted, err := Highlight(body, language)
	if err != nil {
		p.block(p.styles.Assistant, fmt.Sprintf("Code (language: %s):\n%s", language, body))
		return
	}
	if !p.color {
		fmt.Fprintln(p.out, body)
		return
	}
	fmt.Fprintln(p.out, highlighted)
}

// OnText is a no-op: the text of a turn is printed once by Response.
func (p *Printer) OnText(string) {}

// OnToolUse prints the tool name and its compacted JSON input.
func (p *Printer) OnToolUse(name string, input json.RawMessage) {
	fmt.Fprintln(p.out)
	p.block(p.styles.Tool, "Tool Used: "+name)
	p.block(p.styles.Tool, "Tool Input: "+compactJSON(input))
}

// OnToolResult prints the text a tool returned.
func (p *Printer) OnToolResult(_ string, result string) {
	p.block(p.styles.Result, "Tool Result: "+result)
}

// block writes text followed by a newline, styling each line separately so
// lipgloss does not pad lines to a common width.
func (p *Printer) block(style lipgloss.Style, text string) {
	if !p.color {
		fmt.Fprintln(p.out, text)
		return
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	fmt.Fprintln(p.out, strings.Join(lines, "\n"))
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
