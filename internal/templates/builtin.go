package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

//go:embed all:builtin
var builtinFS embed.FS

const builtinRoot = "builtin"

// BuiltinNames returns the names of the template directories shipped with
// projgen, sorted.
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinFS, builtinRoot)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// BuiltinFS returns the shipped templates rooted at their parent directory.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinFS, builtinRoot)
	if err != nil {
		panic(err)
	}
	return sub
}

// InstallBuiltins copies the shipped templates into dir and returns the
// written files relative to dir. Existing files are kept unless force is set.
func InstallBuiltins(dir string, force bool) ([]string, error) {
	var written []string

	err := fs.WalkDir(builtinFS, builtinRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(builtinRoot, filepath.FromSlash(p))
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dir, dirMode)
		}
		target := filepath.Join(dir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, dirMode)
		}

		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}

		content, err := fs.ReadFile(builtinFS, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if err := os.WriteFile(target, content, fileMode); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		written = append(written, path.Clean(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return written, fmt.Errorf("installing builtin templates: %w", err)
	}
	return written, nil
}
