package schema

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of a template.
type document struct {
	SchemaVersion string         `yaml:"schema_version"`
	Metadata      Metadata       `yaml:"metadata"`
	Variables     []Variable     `yaml:"variables"`
	Structure     Structure      `yaml:"structure"`
	TemplateFiles []TemplateFile `yaml:"template_files"`
	Configuration map[string]any `yaml:"configuration"`
	Hooks         Hooks          `yaml:"hooks"`
	Compatibility Compatibility  `yaml:"compatibility"`
}

// Template is a parsed template definition. It has no mutators; slices
// returned by accessors are copies but share nested values, which callers
// must treat as read-only.
type Template struct {
	schemaVersion string
	metadata      Metadata
	variables     []Variable
	index         map[string]int
	structure     Structure
	templateFiles []TemplateFile
	configuration map[string]any
	hooks         Hooks
	compatibility Compatibility
	sourcePath    string
}

// Decode builds a Template from YAML. sourcePath is recorded so template
// files can be resolved relative to it; it may be empty for in-memory
// documents. Unknown keys are rejected.
func Decode(data []byte, sourcePath string) (*Template, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding template: %w", err)
	}
	return newTemplate(doc, sourcePath), nil
}

func newTemplate(doc document, sourcePath string) *Template {
	version := strings.TrimSpace(doc.SchemaVersion)
	if version == "" {
		version = DefaultSchemaVersion
	}
	if doc.Metadata.Category == "" {
		doc.Metadata.Category = "general"
	}
	index := make(map[string]int, len(doc.Variables))
	for i, v := range doc.Variables {
		// first declaration wins; duplicates are reported by validation
		if _, dup := index[v.Name]; !dup {
			index[v.Name] = i
		}
	}
	return &Template{
		schemaVersion: version,
		metadata:      doc.Metadata,
		variables:     doc.Variables,
		index:         index,
		structure:     doc.Structure,
		templateFiles: doc.TemplateFiles,
		configuration: doc.Configuration,
		hooks:         doc.Hooks,
		compatibility: doc.Compatibility,
		sourcePath:    sourcePath,
	}
}

// SchemaVersion returns the declared schema version.
func (t *Template) SchemaVersion() string { return t.schemaVersion }

// Metadata returns the template metadata.
func (t *Template) Metadata() Metadata {
	m := t.metadata
	m.Tags = append([]string(nil), m.Tags...)
	return m
}

// Name returns the template identifier.
func (t *Template) Name() string { return t.metadata.Name }

// Variables returns the declared variables in declaration order.
func (t *Template) Variables() []Variable {
	return append([]Variable(nil), t.variables...)
}

// Variable looks up a declared variable by name.
func (t *Template) Variable(name string) (Variable, bool) {
	i, ok := t.index[name]
	if !ok {
		return Variable{}, false
	}
	return t.variables[i], true
}

// Structure returns the project structure.
func (t *Template) Structure() Structure { return t.structure }

// TemplateFiles returns the external content file declarations.
func (t *Template) TemplateFiles() []TemplateFile {
	return append([]TemplateFile(nil), t.templateFiles...)
}

// TemplateFile looks up an external content file by name.
func (t *Template) TemplateFile(name string) (TemplateFile, bool) {
	for _, f := range t.templateFiles {
		if f.Name == name {
			return f, true
		}
	}
	return TemplateFile{}, false
}

// Configuration returns the free-form configuration section.
func (t *Template) Configuration() map[string]any {
	out := make(map[string]any, len(t.configuration))
	for k, v := range t.configuration {
		out[k] = v
	}
	return out
}

// Hooks returns the hook declarations.
func (t *Template) Hooks() Hooks {
	return Hooks{PostGeneration: append([]Hook(nil), t.hooks.PostGeneration...)}
}

// Compatibility returns the compatibility constraints.
func (t *Template) Compatibility() Compatibility {
	c := t.compatibility
	c.SupportedOS = append([]string(nil), c.SupportedOS...)
	return c
}

// SourcePath returns the file the template was loaded from.
func (t *Template) SourcePath() string { return t.sourcePath }

// SourceDir returns the directory template files are resolved against.
func (t *Template) SourceDir() string {
	if t.sourcePath == "" {
		return "."
	}
	return filepath.Dir(t.sourcePath)
}

// ResolveTemplateFile returns the on-disk path of a named template file.
func (t *Template) ResolveTemplateFile(name string) (string, error) {
	f, ok := t.TemplateFile(name)
	if !ok {
		return "", fmt.Errorf("template file %q is not declared", name)
	}
	return filepath.Join(t.SourceDir(), filepath.FromSlash(f.Path)), nil
}

// Check reports problems intrinsic to the model: schema version, variable
// types and defaults, file content sources, and template file declarations.
// Configurable rules (name pattern, limits, security) live in the validator.
func (t *Template) Check() []string {
	var errs []string

	if !IsSupportedSchemaVersion(t.schemaVersion) {
		errs = append(errs, fmt.Sprintf("unsupported schema_version %q (supported: %s)",
			t.schemaVersion, strings.Join(SupportedSchemaVersions(), ", ")))
	}
	if strings.TrimSpace(t.metadata.Name) == "" {
		errs = append(errs, "metadata.name must not be empty")
	}

	for _, v := range t.variables {
		errs = append(errs, v.check()...)
	}

	files := map[string]bool{}
	for _, f := range t.templateFiles {
		if files[f.Name] {
			errs = append(errs, fmt.Sprintf("duplicate template file name %q", f.Name))
		}
		files[f.Name] = true
	}

	if strings.TrimSpace(t.structure.Root.Name) == "" {
		errs = append(errs, "structure.root_directory.name must not be empty")
	}
	t.structure.Walk(Visitor{
		Directory: func(path []string, dir DirectoryItem) {
			if len(path) > 0 && strings.TrimSpace(dir.Name) == "" {
				errs = append(errs, fmt.Sprintf("directory under %q has an empty name", strings.Join(path, "/")))
			}
		},
		File: func(path []string, f FileItem) {
			where := strings.Join(append(append([]string(nil), path...), f.Name), "/")
			if strings.TrimSpace(f.Name) == "" {
				errs = append(errs, fmt.Sprintf("file under %q has an empty name", strings.Join(path, "/")))
			}
			if f.Content != "" && f.TemplateFile != "" {
				errs = append(errs, fmt.Sprintf("file %q sets both content and template_file", where))
			}
			if f.TemplateFile != "" && !files[f.TemplateFile] {
				errs = append(errs, fmt.Sprintf("file %q references undeclared template file %q", where, f.TemplateFile))
			}
		},
	})

	return errs
}

func (v Variable) check() []string {
	var errs []string
	if !v.Type.Valid() {
		errs = append(errs, fmt.Sprintf("variable '%s' has unknown type %q", v.Name, v.Type))
		return errs
	}
	if v.Type == TypeChoice && len(v.Choices) == 0 {
		errs = append(errs, fmt.Sprintf("variable '%s' of type choice declares no choices", v.Name))
	}
	if v.Validation != nil && v.Validation.Pattern != "" {
		if _, err := compilePattern(v.Validation.Pattern); err != nil {
			errs = append(errs, fmt.Sprintf("variable '%s' has invalid pattern: %v", v.Name, err))
		}
	}
	if v.HasDefault() {
		if _, err := v.Validate(v.Default); err != nil {
			errs = append(errs, fmt.Sprintf("variable '%s' default is invalid: %v", v.Name, err))
		}
	}
	return errs
}
