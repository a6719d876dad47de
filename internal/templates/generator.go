package templates

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/opmodel/projgen/internal/engine"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/loader"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
)

// ProjectNameVariable defaults to the target directory name when a template
// declares it, neither the user nor the template supplies a value, and the
// directory name is a valid project name.
const ProjectNameVariable = "project_name"

// Generator creates projects from templates.
type Generator struct {
	engine *engine.Engine
	loader *loader.Loader
}

// NewGenerator creates a Generator backed by the given engine and loader.
func NewGenerator(e *engine.Engine, l *loader.Loader) *Generator {
	return &Generator{engine: e, loader: l}
}

// Locate returns the template file for ref, which is either a path to a
// template file or the metadata name of a discovered template.
func (g *Generator) Locate(ref string) (string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, nil
	}
	if path, ok := g.loader.FindTemplateByName(ref); ok {
		return path, nil
	}
	return "", fmt.Errorf("template %q: %w", ref, oerrors.ErrNotFound)
}

// Load locates and loads the template for ref.
func (g *Generator) Load(ref string) (*schema.Template, error) {
	path, err := g.Locate(ref)
	if err != nil {
		return nil, err
	}
	return g.engine.LoadTemplate(path)
}

// Generate loads the template, resolves opts.Values against it and renders
// the project under opts.TargetDir.
//
// Load, compatibility and resolution failures are returned as errors and
// nothing is written. Per-file render failures do not produce an error;
// they are listed in the result, which callers must check with OK.
func (g *Generator) Generate(opts GenerateOptions) (*GenerateResult, error) {
	tmpl, err := g.Load(opts.Template)
	if err != nil {
		return nil, err
	}

	if !opts.SkipCompatibility {
		if problems := g.engine.CheckCompatibility(tmpl, "", ""); len(problems) > 0 {
			return nil, &oerrors.ValidationError{Path: tmpl.SourcePath(), Errors: problems}
		}
	}

	if err := checkTargetDir(opts.TargetDir); err != nil {
		return nil, err
	}

	values := make(map[string]any, len(opts.Values)+1)
	for k, v := range opts.Values {
		values[k] = v
	}
	if v, ok := tmpl.Variable(ProjectNameVariable); ok && !v.HasDefault() {
		if _, given := values[ProjectNameVariable]; !given {
			if abs, err := filepath.Abs(opts.TargetDir); err == nil && ValidateProjectName(filepath.Base(abs)) == nil {
				values[ProjectNameVariable] = filepath.Base(abs)
			}
		}
	}

	vars, err := g.engine.ResolveVariables(tmpl, values)
	if err != nil {
		return nil, err
	}

	output.Debug("generating project",
		"template", tmpl.Name(),
		"target", opts.TargetDir,
		"variables", len(vars))

	result := NewRenderer(RenderOptions{Overwrite: opts.Force, DryRun: opts.DryRun}).
		Render(tmpl, vars, opts.TargetDir)

	return &GenerateResult{
		Result:    *result,
		Template:  tmpl,
		Variables: vars,
		TargetDir: opts.TargetDir,
		Hooks:     tmpl.Hooks().PostGeneration,
	}, nil
}

// checkTargetDir validates the target directory.
func checkTargetDir(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking target directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
