// Package schema defines the typed template model: metadata, variable
// declarations, the project structure tree, template files, hooks and
// compatibility constraints. Templates are built from YAML documents by
// Decode after the structural JSON Schema pass in CheckStructure.
package schema

import (
	"strings"

	"github.com/opmodel/projgen/internal/condition"
)

// Schema versions understood by this package.
const (
	SchemaVersion10 = "1.0"
	SchemaVersion11 = "1.1"

	// DefaultSchemaVersion is assumed when a template omits schema_version.
	DefaultSchemaVersion = SchemaVersion10
)

// SupportedSchemaVersions lists recognized schema_version values.
func SupportedSchemaVersions() []string {
	return []string{SchemaVersion10, SchemaVersion11}
}

// IsSupportedSchemaVersion reports whether v is a recognized schema version.
func IsSupportedSchemaVersion(v string) bool {
	for _, s := range SupportedSchemaVersions() {
		if s == v {
			return true
		}
	}
	return false
}

// VarType is the declared type of a template variable.
type VarType string

const (
	TypeString  VarType = "string"
	TypeBoolean VarType = "boolean"
	TypeInteger VarType = "integer"
	TypeFloat   VarType = "float"
	TypeChoice  VarType = "choice"
	TypeList    VarType = "list"
	TypeEmail   VarType = "email"
	TypeURL     VarType = "url"
	TypePath    VarType = "path"
)

// VarTypes returns every supported variable type.
func VarTypes() []VarType {
	return []VarType{TypeString, TypeBoolean, TypeInteger, TypeFloat, TypeChoice, TypeList, TypeEmail, TypeURL, TypePath}
}

// Valid reports whether t is a supported variable type.
func (t VarType) Valid() bool {
	for _, v := range VarTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Metadata describes a template for listings.
type Metadata struct {
	// Name is the template identifier.
	Name        string   `yaml:"name" json:"name"`
	DisplayName string   `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string   `yaml:"version" json:"version"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	Author      string   `yaml:"author,omitempty" json:"author,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Title returns the display name, falling back to the identifier.
func (m Metadata) Title() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// ValueRules are optional per-type value constraints.
type ValueRules struct {
	Pattern   string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	MinLength *int     `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength *int     `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	MinValue  *float64 `yaml:"min_value,omitempty" json:"min_value,omitempty"`
	MaxValue  *float64 `yaml:"max_value,omitempty" json:"max_value,omitempty"`
}

// Variable declares one user-supplied value.
type Variable struct {
	Name        string      `yaml:"name" json:"name"`
	Type        VarType     `yaml:"type" json:"type"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool        `yaml:"required,omitempty" json:"required,omitempty"`
	Default     any         `yaml:"default,omitempty" json:"default,omitempty"`
	Choices     []any       `yaml:"choices,omitempty" json:"choices,omitempty"`
	Validation  *ValueRules `yaml:"validation,omitempty" json:"validation,omitempty"`

	// Validator names a host-provided custom validator.
	Validator string `yaml:"validator,omitempty" json:"validator,omitempty"`

	ShowIf []condition.Condition `yaml:"show_if,omitempty" json:"show_if,omitempty"`
	HideIf []condition.Condition `yaml:"hide_if,omitempty" json:"hide_if,omitempty"`
}

// HasDefault reports whether the variable declares a non-null default.
func (v Variable) HasDefault() bool {
	return v.Default != nil
}

// Conditional reports whether the variable has visibility rules.
func (v Variable) Conditional() bool {
	return len(v.ShowIf) > 0 || len(v.HideIf) > 0
}

// TemplateFile names external content stored next to the template document.
type TemplateFile struct {
	Name string `yaml:"name" json:"name"`
	// Path is relative to the template document's directory.
	Path string `yaml:"path" json:"path"`
}

// Hook is a post-generation action declared by a template.
type Hook struct {
	Type        string `yaml:"type" json:"type"`
	Command     string `yaml:"command,omitempty" json:"command,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Executable returns the first word of the hook command.
func (h Hook) Executable() string {
	fields := strings.Fields(h.Command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Hooks groups hook declarations by phase.
type Hooks struct {
	PostGeneration []Hook `yaml:"post_generation,omitempty" json:"post_generation,omitempty"`
}

// Compatibility restricts where generated projects are expected to work.
type Compatibility struct {
	MinRuntimeVersion string `yaml:"min_runtime_version,omitempty" json:"min_runtime_version,omitempty"`

	// MinPythonVersion is accepted as an alias of MinRuntimeVersion.
	MinPythonVersion string   `yaml:"min_python_version,omitempty" json:"min_python_version,omitempty"`
	SupportedOS      []string `yaml:"supported_os,omitempty" json:"supported_os,omitempty"`
}

// MinVersion returns the effective minimum runtime version.
func (c Compatibility) MinVersion() string {
	if c.MinRuntimeVersion != "" {
		return c.MinRuntimeVersion
	}
	return c.MinPythonVersion
}

// KnownOS lists operating system names accepted in supported_os.
var KnownOS = []string{"linux", "darwin", "macos", "windows", "freebsd"}
