package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	loggerpkg "github.com/minhyannv/workspace-agent/pkg/logger"
)

// Workspace runs filesystem operations relative to a fixed root directory.
// Operations never fail: OS errors are reported in the returned text.
type Workspace struct {
	root             string
	allowOutsideRoot bool
	logger           loggerpkg.Logger
}

// NewWorkspace returns a Workspace rooted at root. Unless allowOutsideRoot is
// set, paths that resolve outside root are rejected.
func NewWorkspace(root string, allowOutsideRoot bool, logger loggerpkg.Logger) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("working directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return &Workspace{
		root:             filepath.Clean(abs),
		allowOutsideRoot: allowOutsideRoot,
		logger:           loggerpkg.OrNop(logger),
	}, nil
}

// Root returns the absolute working directory.
func (w *Workspace) Root() string {
	return w.root
}

// CreateFolder creates path and any missing parents.
func (w *Workspace) CreateFolder(path string) string {
	out, _ := w.createFolder(path)
	return out
}

// CreateFile creates or truncates path and writes content.
func (w *Workspace) CreateFile(path, content string) string {
	out, _ := w.createFile(path, content)
	return out
}

// WriteToFile behaves like CreateFile and reports a different message.
func (w *Workspace) WriteToFile(path, content string) string {
	out, _ := w.writeToFile(path, content)
	return out
}

// ReadFile returns the contents of path.
func (w *Workspace) ReadFile(path string) string {
	out, _ := w.readFile(path)
	return out
}

// ListFiles returns the entry names of path, one per line, in directory order.
func (w *Workspace) ListFiles(path string) string {
	out, _ := w.listFiles(path)
	return out
}

// The lowercase variants also report whether the operation succeeded.

func (w *Workspace) createFolder(path string) (string, bool) {
	full, err := w.resolve(path)
	if err == nil {
		err = os.MkdirAll(full, 0o755)
	}
	if err != nil {
		return w.fail("create_folder", "Error creating folder: ", path, err)
	}
	w.logger.Debug("create_folder", map[string]any{"path": full})
	return "Folder created: " + path, true
}

func (w *Workspace) createFile(path, content string) (string, bool) {
	if err := w.write(path, content); err != nil {
		return w.fail("create_file", "Error creating file: ", path, err)
	}
	return "File created: " + path, true
}

func (w *Workspace) writeToFile(path, content string) (string, bool) {
	if err := w.write(path, content); err != nil {
		return w.fail("write_to_file", "Error writing to file: ", path, err)
	}
	return "Content written to file: " + path, true
}

func (w *Workspace) write(path, content string) error {
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return err
	}
	w.logger.Debug("write file", map[string]any{"path": full, "bytes": len(content)})
	return nil
}

func (w *Workspace) readFile(path string) (string, bool) {
	full, err := w.resolve(path)
	if err != nil {
		return w.fail("read_file", "Error reading file: ", path, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return w.fail("read_file", "Error reading file: ", path, err)
	}
	w.logger.Debug("read_file", map[string]any{"path": full, "bytes": len(data)})
	return string(data), true
}

func (w *Workspace) listFiles(path string) (string, bool) {
	if path == "" {
		path = "."
	}
	full, err := w.resolve(path)
	if err != nil {
		return w.fail("list_files", "Error listing files: ", path, err)
	}
	// os.ReadDir sorts; Readdirnames keeps the order the OS returns.
	dir, err := os.Open(full)
	if err != nil {
		return w.fail("list_files", "Error listing files: ", path, err)
	}
	defer dir.Close()
	names, err := dir.Readdirnames(-1)
	if err != nil {
		return w.fail("list_files", "Error listing files: ", path, err)
	}
	w.logger.Debug("list_files", map[string]any{"path": full, "entries": len(names)})
	return strings.Join(names, "\n"), true
}

func (w *Workspace) fail(op, prefix, path string, err error) (string, bool) {
	w.logger.Debug(op+" failed", map[string]any{"path": path, "error": err.Error()})
	return prefix + err.Error(), false
}

// resolve joins path onto the root. The joined path is already clean, so a
// relative form starting with ".." means it left the root.
func (w *Workspace) resolve(path string) (string, error) {
	full := filepath.Join(w.root, path)
	if w.allowOutsideRoot {
		return full, nil
	}
	rel, err := filepath.Rel(w.root, full)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes working directory: %s", path)
	}
	return full, nil
}
