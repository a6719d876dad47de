package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/opmodel/projgen/internal/condition"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
	"github.com/opmodel/projgen/internal/textrender"
)

const (
	dirMode        fs.FileMode = 0o755
	fileMode       fs.FileMode = 0o644
	executableMode fs.FileMode = 0o755
)

// Renderer writes a template's structure to disk.
type Renderer struct {
	opts RenderOptions
}

// NewRenderer creates a new renderer with the given options.
func NewRenderer(opts RenderOptions) *Renderer {
	return &Renderer{opts: opts}
}

// render carries the state of one Render call.
type render struct {
	opts   RenderOptions
	tmpl   *schema.Template
	vars   map[string]any
	target string
	result Result
}

// Render walks the template structure depth-first and creates its
// directories and files under target. Names and content are rendered
// against vars; nodes whose condition is false are skipped with their
// subtree. A failure on one node is recorded in the result and the walk
// continues with the next.
func (r *Renderer) Render(t *schema.Template, vars map[string]any, target string) *Result {
	st := &render{opts: r.opts, tmpl: t, vars: vars}

	abs, err := filepath.Abs(target)
	if err != nil {
		st.fail("target directory %q: %v", target, err)
		return &st.result
	}
	st.target = abs
	if !r.opts.DryRun {
		if err := os.MkdirAll(abs, dirMode); err != nil {
			st.fail("target directory %q: %v", target, err)
			return &st.result
		}
	}

	st.directory(abs, "", t.Structure().Root)
	return &st.result
}

func (st *render) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	output.Debug("render failure", "error", msg)
	st.result.Errors = append(st.result.Errors, msg)
}

func (st *render) directory(parent, rel string, dir schema.DirectoryItem) {
	label := path.Join(rel, dir.Name)
	if !st.include(dir.Condition, label) {
		output.Debug("skipping directory", "directory", label)
		return
	}

	name, err := st.name(dir.Name, label)
	if err != nil {
		st.fail("directory '%s': %v", label, err)
		return
	}
	dirPath := filepath.Join(parent, filepath.FromSlash(name))
	rel = path.Join(rel, name)
	if !st.inside(dirPath) {
		st.fail("directory '%s': path escapes the target directory", rel)
		return
	}

	if _, err := os.Stat(dirPath); errors.Is(err, fs.ErrNotExist) {
		if !st.opts.DryRun {
			if err := os.MkdirAll(dirPath, dirMode); err != nil {
				st.fail("directory '%s': %v", rel, err)
				return
			}
		}
		st.result.DirectoriesCreated++
	}

	for _, f := range dir.Files {
		st.file(dirPath, rel, f)
	}
	for _, sub := range dir.Directories {
		st.directory(dirPath, rel, sub)
	}
}

func (st *render) file(parent, rel string, f schema.FileItem) {
	label := path.Join(rel, f.Name)
	if !st.include(f.Condition, label) {
		output.Debug("skipping file", "file", label)
		return
	}

	name, err := st.name(f.Name, label)
	if err != nil {
		st.fail("file '%s': %v", label, err)
		return
	}
	filePath := filepath.Join(parent, filepath.FromSlash(name))
	rel = path.Join(rel, name)
	if !st.inside(filePath) {
		st.fail("file '%s': path escapes the target directory", rel)
		return
	}

	content, err := st.content(f, rel)
	if err != nil {
		st.fail("file '%s': %v", rel, err)
		return
	}

	if _, err := os.Lstat(filePath); err == nil && !st.opts.Overwrite {
		st.fail("file '%s': already exists", rel)
		return
	}

	if !st.opts.DryRun {
		mode := fileMode
		if f.Executable {
			mode = executableMode
		}
		if err := os.MkdirAll(filepath.Dir(filePath), dirMode); err != nil {
			st.fail("file '%s': %v", rel, err)
			return
		}
		if err := os.WriteFile(filePath, []byte(content), mode); err != nil {
			st.fail("file '%s': %v", rel, err)
			return
		}
		// WriteFile keeps the mode of an existing file.
		if f.Executable {
			if err := os.Chmod(filePath, mode); err != nil {
				st.fail("file '%s': %v", rel, err)
				return
			}
		}
	}

	output.Debug("created file", "path", rel)
	st.result.FilesCreated++
	st.result.Files = append(st.result.Files, rel)
}

// include evaluates a node condition. Missing variables make it false; a
// fault during evaluation includes the node.
func (st *render) include(c schema.NodeCondition, label string) bool {
	if c.IsZero() {
		return true
	}
	var (
		ok  bool
		err error
	)
	if c.Expr != "" {
		ok, err = condition.EvaluateExpression(c.Expr, st.vars)
	} else {
		ok, err = condition.EvaluateAll(c.Rules, st.vars)
	}
	if err != nil {
		output.Warn("condition evaluation failed, including node", "node", label, "err", err)
		return true
	}
	return ok
}

func (st *render) name(raw, label string) (string, error) {
	name, err := textrender.Render(label, raw, st.vars)
	if err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name renders empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("absolute name %q is not allowed", name)
	}
	return name, nil
}

func (st *render) content(f schema.FileItem, rel string) (string, error) {
	text := f.Content
	if f.TemplateFile != "" {
		p, err := st.tmpl.ResolveTemplateFile(f.TemplateFile)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("reading template file %q: %w", f.TemplateFile, err)
		}
		text = string(data)
	}
	return textrender.Render(rel, text, st.vars)
}

func (st *render) inside(p string) bool {
	r, err := filepath.Rel(st.target, p)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) && !filepath.IsAbs(r)
}
