// Package prompt assembles the system instructions sent with every request.
package prompt

import (
	"fmt"
	"strings"

	"github.com/minhyannv/workspace-agent/pkg/tools"
)

const persona = `You are an exceptional software developer with broad knowledge of programming languages, frameworks and best practices. You can create project structures, write clean and well-documented code, debug issues, explain architecture and design patterns, and read or edit the files of the current project.`

const guidelines = `## Working With Projects
When asked to create a project:
- Always start by creating a root folder for the project.
- Then create the necessary subdirectories and files within that root folder.
- Organize the structure logically and follow the conventions of the kind of project being created.

When asked to make edits or improvements:
- Use read_file to examine existing files before changing them.
- Analyze the code and decide on the necessary edits.
- Use write_to_file to apply the changes.

Use list_files and read_file whenever understanding the current state of the project helps accomplish the user's goal.

## Tool Use Rules
Before calling a tool, decide which tool is relevant and check every required parameter. If a required value was given or can reasonably be inferred from context, call the tool. If a required value is missing, do not call the tool and do not invent a placeholder: ask the user for it instead. Do not ask for optional parameters that were not provided.

If you are unsure about something, say so.`

// BuildSystemPrompt returns the system prompt for the given tool registry.
// workingDir is mentioned so the model knows where relative paths resolve.
func BuildSystemPrompt(descriptors []tools.Descriptor, workingDir string) string {
	var sb strings.Builder
	sb.WriteString(persona)

	if md := ToolsMarkdown(descriptors); md != "" {
		sb.WriteString("\n\n")
		sb.WriteString(md)
	}
	if dir := sanitizeMarkdown(workingDir); dir != "" {
		sb.WriteString(fmt.Sprintf("\n\nAll tool paths are relative to the working directory: %s", dir))
	}
	sb.WriteString("\n\n")
	sb.WriteString(guidelines)

	return strings.TrimSpace(sb.String())
}

// ToolsMarkdown renders a markdown listing of the tools.
func ToolsMarkdown(descriptors []tools.Descriptor) string {
	if len(descriptors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Available Tools\n")
	for _, d := range descriptors {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", d.Name, sanitizeMarkdown(d.Description)))
		for _, p := range d.Params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			sb.WriteString(fmt.Sprintf("  - `%s` (%s, %s): %s\n", p.Name, p.Type, req, sanitizeMarkdown(p.Description)))
		}
	}
	return strings.TrimSpace(sb.String())
}

// sanitizeMarkdown keeps markdown fields single-line and trimmed.
func sanitizeMarkdown(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	return strings.TrimSpace(value)
}
