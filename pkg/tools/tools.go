// Package tools implements the filesystem tools exposed to the model: their
// descriptors, the dispatcher and the workspace they operate on.
package tools

import "github.com/minhyannv/workspace-agent/pkg/model"

const (
	NameCreateFolder = "create_folder"
	NameCreateFile   = "create_file"
	NameWriteToFile  = "write_to_file"
	NameReadFile     = "read_file"
	NameListFiles    = "list_files"
)

// Param describes one input parameter of a tool.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Descriptor is the metadata sent to the model for a tool.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Schema returns the JSON-schema object for the tool input.
func (d Descriptor) Schema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		properties[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if required := d.RequiredNames(); len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// RequiredNames lists required parameter names in declaration order.
func (d Descriptor) RequiredNames() []string {
	var names []string
	for _, p := range d.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// Spec converts the descriptor for a model request.
func (d Descriptor) Spec() model.ToolSpec {
	return model.ToolSpec{
		Name:        d.Name,
		Description: d.Description,
		Schema:      d.Schema(),
		Required:    d.RequiredNames(),
	}
}

// Descriptors returns the tool registry. A new slice is built on every call,
// so callers cannot alter the registry.
func Descriptors() []Descriptor {
	return []Descriptor{
		{
			Name:        NameCreateFolder,
			Description: "Create a new folder at the specified path. Use this when you need to create a new directory in the project structure.",
			Params: []Param{
				{Name: "path", Type: "string", Description: "The path where the folder should be created", Required: true},
			},
		},
		{
			Name:        NameCreateFile,
			Description: "Create a new file at the specified path with optional content. Use this when you need to create a new file in the project structure.",
			Params: []Param{
				{Name: "path", Type: "string", Description: "The path where the file should be created", Required: true},
				{Name: "content", Type: "string", Description: "The initial content of the file (optional)"},
			},
		},
		{
			Name:        NameWriteToFile,
			Description: "Write content to an existing file at the specified path. Use this when you need to add or update content in an existing file.",
			Params: []Param{
				{Name: "path", Type: "string", Description: "The path of the file to write to", Required: true},
				{Name: "content", Type: "string", Description: "The content to write to the file", Required: true},
			},
		},
		{
			Name:        NameReadFile,
			Description: "Read the contents of a file at the specified path. Use this when you need to examine the contents of an existing file.",
			Params: []Param{
				{Name: "path", Type: "string", Description: "The path of the file to read", Required: true},
			},
		},
		{
			Name:        NameListFiles,
			Description: "List all files and directories in the working directory. Use this when you need to see the contents of the current directory.",
			Params: []Param{
				{Name: "path", Type: "string", Description: "The path of the folder to list (default: current directory)"},
			},
		},
	}
}

// Specs returns the registry converted for model requests.
func Specs() []model.ToolSpec {
	descriptors := Descriptors()
	specs := make([]model.ToolSpec, 0, len(descriptors))
	for _, d := range descriptors {
		specs = append(specs, d.Spec())
	}
	return specs
}
