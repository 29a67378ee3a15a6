package tools

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) (*Workspace, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := NewWorkspace(root, false, nil)
	require.NoError(t, err)
	return ws, root
}

func TestNewWorkspaceRejectsEmptyRoot(t *testing.T) {
	_, err := NewWorkspace("  ", false, nil)
	assert.Error(t, err)
}

func TestCreateFileThenReadFileRoundTrip(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	contents := []string{"", "hello", "line1\nline2\n", "unicode: héllo ✓"}
	for i, content := range contents {
		path := filepath.Join("dir", "f"+string(rune('a'+i))+".txt")
		require.Equal(t, "Folder created: dir", ws.CreateFolder("dir"))
		assert.Equal(t, "File created: "+path, ws.CreateFile(path, content))
		assert.Equal(t, content, ws.ReadFile(path))
	}
}

func TestWriteToFileIsIdempotent(t *testing.T) {
	ws, root := newTestWorkspace(t)
	assert.Equal(t, "Content written to file: a.txt", ws.WriteToFile("a.txt", "v1"))
	assert.Equal(t, "Content written to file: a.txt", ws.WriteToFile("a.txt", "v1"))

	data, err := os.ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestWriteToFileTruncates(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ws.CreateFile("a.txt", "a much longer first version")
	ws.WriteToFile("a.txt", "short")
	assert.Equal(t, "short", ws.ReadFile("a.txt"))
}

func TestCreateFolderIsIdempotent(t *testing.T) {
	ws, root := newTestWorkspace(t)
	assert.Equal(t, "Folder created: a/b/c", ws.CreateFolder("a/b/c"))
	ws.CreateFile("a/b/c/keep.txt", "kept")

	assert.Equal(t, "Folder created: a/b/c", ws.CreateFolder("a/b/c"))
	data, err := os.ReadFile(filepath.Join(root, "a", "b", "c", "keep.txt"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
}

func TestListFilesReturnsEachEntryOnce(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	for _, name := range []string{"a", "b", "c"} {
		ws.CreateFile(name, "")
	}

	names := strings.Split(ws.ListFiles("."), "\n")
	sort.Strings(names)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	assert.Equal(t, ws.ListFiles("."), ws.ListFiles(""))
}

func TestListFilesEmptyDirectory(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	assert.Equal(t, "", ws.ListFiles("."))
}

func TestOperationFailuresAreReportedAsText(t *testing.T) {
	ws, _ := newTestWorkspace(t)
	ws.CreateFile("file.txt", "x")

	tests := []struct {
		name   string
		got    string
		prefix string
	}{
		{"read missing", ws.ReadFile("missing.txt"), "Error reading file: "},
		{"read directory", ws.ReadFile("."), "Error reading file: "},
		{"list missing", ws.ListFiles("nope"), "Error listing files: "},
		{"create file under missing dir", ws.CreateFile("nope/a.txt", "x"), "Error creating file: "},
		{"write under missing dir", ws.WriteToFile("nope/a.txt", "x"), "Error writing to file: "},
		{"folder over file", ws.CreateFolder("file.txt/sub"), "Error creating folder: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.got, tt.prefix), tt.got)
		})
	}
}

func TestPathEscapeIsRejected(t *testing.T) {
	ws, root := newTestWorkspace(t)
	outside := filepath.Base(root) + "-sibling.txt"

	got := ws.CreateFile(filepath.Join("..", outside), "x")
	assert.Equal(t, "Error creating file: path escapes working directory: "+filepath.Join("..", outside), got)
	_, err := os.Stat(filepath.Join(filepath.Dir(root), outside))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, strings.HasPrefix(ws.ReadFile("a/../../x"), "Error reading file: path escapes working directory"))
	assert.True(t, strings.HasPrefix(ws.ListFiles(".."), "Error listing files: path escapes working directory"))

	// Inner ".." that stays inside the root is fine.
	ws.CreateFolder("a")
	assert.Equal(t, "File created: a/../b.txt", ws.CreateFile("a/../b.txt", "in"))
	assert.Equal(t, "in", ws.ReadFile("b.txt"))
}

func TestAllowOutsideRootUsesPlainJoin(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "root")
	require.NoError(t, os.Mkdir(root, 0o755))

	ws, err := NewWorkspace(root, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "File created: ../out.txt", ws.CreateFile("../out.txt", "free"))

	data, err := os.ReadFile(filepath.Join(parent, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "free", string(data))
}
