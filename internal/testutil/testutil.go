// Package testutil provides test helpers shared by package tests.
package testutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// MinimalTemplate returns a valid template document named name whose
// variables are the given optional string variables with defaults.
func MinimalTemplate(name string, vars ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema_version: \"1.0\"\nmetadata:\n  name: %s\n  version: 1.0.0\n", name)
	if len(vars) == 0 {
		b.WriteString("variables: []\n")
	} else {
		b.WriteString("variables:\n")
		for _, v := range vars {
			fmt.Fprintf(&b, "  - name: %s\n    type: string\n    default: %s-default\n", v, v)
		}
	}
	fmt.Fprintf(&b, "structure:\n  root_directory:\n    name: %s\n", name)
	return b.String()
}

// Tree lists the files and directories under root as slash-separated
// relative paths, directories with a trailing slash, sorted.
func Tree(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}
