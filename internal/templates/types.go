// Package templates materializes resolved templates on disk and wires the
// load, resolve and render steps together for hosts.
package templates

import (
	"github.com/opmodel/projgen/internal/schema"
)

// RenderOptions configures a Renderer.
type RenderOptions struct {
	// Overwrite allows replacing files that already exist.
	Overwrite bool

	// DryRun computes the result without touching the filesystem.
	DryRun bool
}

// Result summarizes one render. The render succeeded when Errors is empty;
// files created before a failure are left in place.
type Result struct {
	FilesCreated       int `json:"files_created"`
	DirectoriesCreated int `json:"directories_created"`

	// Files are the created files, relative to the target directory,
	// slash-separated, in creation order.
	Files []string `json:"files"`

	// Errors has one message per file or directory that failed.
	Errors []string `json:"errors,omitempty"`
}

// OK reports whether the render completed without errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// GenerateOptions configures project generation.
type GenerateOptions struct {
	// Template is a template name or a path to a template file.
	Template string

	// TargetDir is the directory the project root is created in.
	TargetDir string

	// Values are user-supplied variable values.
	Values map[string]any

	// Force allows overwriting existing files.
	Force bool

	// DryRun resolves and renders without writing.
	DryRun bool

	// SkipCompatibility disables the runtime and OS compatibility check.
	SkipCompatibility bool
}

// GenerateResult contains the result of project generation.
type GenerateResult struct {
	Result

	// Template is the template that was used.
	Template *schema.Template `json:"-"`

	// Variables are the resolved variable values.
	Variables map[string]any `json:"variables"`

	// TargetDir is the directory the project was created in.
	TargetDir string `json:"target_dir"`

	// Hooks are the post-generation hooks the template declares. They are
	// not run by the generator.
	Hooks []schema.Hook `json:"hooks,omitempty"`
}
