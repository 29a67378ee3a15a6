package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorsOrderAndRequiredParams(t *testing.T) {
	want := map[string][]string{
		NameCreateFolder: {"path"},
		NameCreateFile:   {"path"},
		NameWriteToFile:  {"path", "content"},
		NameReadFile:     {"path"},
		NameListFiles:    nil,
	}
	descriptors := Descriptors()
	names := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description)
		assert.Equal(t, want[d.Name], d.RequiredNames(), d.Name)
	}
	assert.Equal(t, []string{NameCreateFolder, NameCreateFile, NameWriteToFile, NameReadFile, NameListFiles}, names)
}

func TestDescriptorsCannotBeMutated(t *testing.T) {
	first := Descriptors()
	first[0].Name = "changed"
	first[0].Params[0].Required = false
	assert.Equal(t, NameCreateFolder, Descriptors()[0].Name)
	assert.True(t, Descriptors()[0].Params[0].Required)
}

func TestSchema(t *testing.T) {
	schema := Descriptors()[1].Schema()
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"path"}, schema["required"])
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "path")
	assert.Contains(t, props, "content")

	_, hasRequired := Descriptors()[4].Schema()["required"]
	assert.False(t, hasRequired, "list_files has no required params")

	_, err := json.Marshal(schema)
	assert.NoError(t, err)
}

func TestSpecsMatchDescriptors(t *testing.T) {
	specs := Specs()
	require.Len(t, specs, len(Descriptors()))
	for i, d := range Descriptors() {
		assert.Equal(t, d.Name, specs[i].Name)
		assert.Equal(t, d.RequiredNames(), specs[i].Required)
	}
}

// Every registered descriptor must be dispatchable and nothing else may be.
func TestRegistryAndDispatcherStayInSync(t *testing.T) {
	for _, d := range Descriptors() {
		input := map[string]string{}
		for _, p := range d.Params {
			input[p.Name] = "x"
		}
		raw, err := json.Marshal(input)
		require.NoError(t, err)

		call, err := ParseCall(d.Name, raw)
		require.NoError(t, err, d.Name)
		assert.Equal(t, d.Name, call.ToolName())
	}

	_, err := ParseCall("delete_file", json.RawMessage(`{"path":"a"}`))
	var unknown *UnknownToolError
	assert.ErrorAs(t, err, &unknown)
}
