package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/blockreg/pkg/blocktype"
	"github.com/spf13/afero"
)

// CreateFile creates a file with the given content in the specified directory.
// It fails the test if the file cannot be created.
func CreateFile(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	// Create parent directories if needed
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}

	return path
}

// CreateDir creates a directory in the specified parent directory.
// It fails the test if the directory cannot be created.
func CreateDir(t testing.TB, parent, name string) string {
	t.Helper()

	path := filepath.Join(parent, name)

	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}

	return path
}

// WriteFiles writes every entry of files under root on fs. Keys are slash
// separated paths relative to root.
func WriteFiles(t testing.TB, fs afero.Fs, root string, files map[string]string) []string {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create parent directories for %s: %v", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(files[name]), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}

// Tree is a temp dir holding definition files and a blockreg.toml that lists
// them.
type Tree struct {
	Root        string
	Definitions string
	Config      string
}

// DefinitionTree writes defs under <tmp>/defs and a config whose
// definitions.paths points there. extraConfig is appended to the config.
func DefinitionTree(t testing.TB, defs map[string]string, extraConfig string) Tree {
	t.Helper()

	root := t.TempDir()
	tree := Tree{
		Root:        root,
		Definitions: CreateDir(t, root, "defs"),
	}
	WriteFiles(t, afero.NewOsFs(), tree.Definitions, defs)
	tree.Config = CreateFile(t, root, "blockreg.toml", tree.ConfigBody(extraConfig))
	return tree
}

// ConfigBody returns a config listing the tree's definitions directory
// followed by extra.
func (tr Tree) ConfigBody(extra string) string {
	return "[definitions]\npaths = [\"" + filepath.ToSlash(tr.Definitions) + "\"]\n" + extra
}

// WriteConfig replaces the tree's config file.
func (tr Tree) WriteConfig(t testing.TB, body string) {
	t.Helper()
	if err := os.WriteFile(tr.Config, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config %s: %v", tr.Config, err)
	}
}

// Path returns the absolute path of a definition file in the tree.
func (tr Tree) Path(name string) string {
	return filepath.Join(tr.Definitions, filepath.FromSlash(name))
}

// Block returns a block type that passes validation: it has a title and a
// save callable.
func Block(name string) *blocktype.Settings {
	return &blocktype.Settings{
		Name:  name,
		Title: "Block " + name,
		Save:  blocktype.Ref(name + ".save"),
	}
}
