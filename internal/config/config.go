// Package config provides configuration loading and management.
package config

import (
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Default limits applied when the config leaves them unset.
const (
	DefaultMaxTemplateSize     int64 = 10 * 1024 * 1024
	DefaultMaxVariables              = 50
	DefaultVariableNamePattern       = `^[a-zA-Z][a-zA-Z0-9_]*$`
)

// DefaultAllowedExtensions are the template file extensions accepted by default.
var DefaultAllowedExtensions = []string{".yaml", ".yml"}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty"`
}

// Config is the configuration consumed by the loader, validator and engine.
// Loaded from ~/.projgen/config.yaml, overridden by PROJGEN_* environment variables.
type Config struct {
	// TemplateDirs are extra directories searched for templates.
	// Env: PROJGEN_TEMPLATE_DIRS (comma separated)
	TemplateDirs []string `mapstructure:"template_dirs" json:"template_dirs"`

	// BuiltinDir holds the templates shipped with projgen.
	// Env: PROJGEN_BUILTIN_DIR, Default: ~/.projgen/builtin
	BuiltinDir string `mapstructure:"builtin_dir" json:"builtin_dir"`

	// UserDir holds user-supplied templates.
	// Env: PROJGEN_USER_DIR, Default: ~/.projgen/templates
	UserDir string `mapstructure:"user_dir" json:"user_dir"`

	// RecursiveScan controls whether template directories are walked recursively.
	RecursiveScan bool `mapstructure:"recursive_scan" json:"recursive_scan"`

	// CacheEnabled toggles the engine's template cache.
	CacheEnabled bool `mapstructure:"cache_enabled" json:"cache_enabled"`

	// MaxTemplateSize is the largest template file accepted, in bytes.
	MaxTemplateSize int64 `mapstructure:"max_template_size" json:"max_template_size"`

	// MaxVariables is the ceiling on variables declared by one template.
	MaxVariables int `mapstructure:"max_variables" json:"max_variables"`

	// VariableNamePattern is the regular expression variable names must match.
	VariableNamePattern string `mapstructure:"variable_name_pattern" json:"variable_name_pattern"`

	// AllowedExtensions lists accepted template file extensions, with the dot.
	AllowedExtensions []string `mapstructure:"allowed_extensions" json:"allowed_extensions"`

	// FullSchema requires every top-level section of the builtin schema.
	FullSchema bool `mapstructure:"full_schema" json:"full_schema"`

	// AllowCustomValidators permits variables that name a custom validator.
	AllowCustomValidators bool `mapstructure:"allow_custom_validators" json:"allow_custom_validators"`

	// AllowExternalCommands permits post-generation hooks that run commands.
	AllowExternalCommands bool `mapstructure:"allow_external_commands" json:"allow_external_commands"`

	// CommandWhitelist lists the executables hooks may invoke.
	CommandWhitelist []string `mapstructure:"command_whitelist" json:"command_whitelist"`

	// RuntimeVersion is compared against a template's minimum runtime version.
	// Default: the Go version projgen was built with.
	RuntimeVersion string `mapstructure:"runtime_version" json:"runtime_version"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" json:"log"`
}

// DefaultConfig returns a Config with all default values populated.
func DefaultConfig() *Config {
	return &Config{
		TemplateDirs:          []string{},
		BuiltinDir:            "~/.projgen/builtin",
		UserDir:               "~/.projgen/templates",
		RecursiveScan:         true,
		CacheEnabled:          true,
		MaxTemplateSize:       DefaultMaxTemplateSize,
		MaxVariables:          DefaultMaxVariables,
		VariableNamePattern:   DefaultVariableNamePattern,
		AllowedExtensions:     append([]string(nil), DefaultAllowedExtensions...),
		AllowCustomValidators: false,
		AllowExternalCommands: false,
		CommandWhitelist:      []string{"git", "go", "npm", "make"},
		RuntimeVersion:        GoRuntimeVersion(),
	}
}

// WithDefaults fills zero-valued limits and expands ~ in directories.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.MaxTemplateSize <= 0 {
		out.MaxTemplateSize = DefaultMaxTemplateSize
	}
	if out.MaxVariables <= 0 {
		out.MaxVariables = DefaultMaxVariables
	}
	if out.VariableNamePattern == "" {
		out.VariableNamePattern = DefaultVariableNamePattern
	}
	if len(out.AllowedExtensions) == 0 {
		out.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
	if out.RuntimeVersion == "" {
		out.RuntimeVersion = GoRuntimeVersion()
	}

	out.BuiltinDir = expandOrKeep(out.BuiltinDir)
	out.UserDir = expandOrKeep(out.UserDir)
	dirs := make([]string, 0, len(out.TemplateDirs))
	for _, d := range out.TemplateDirs {
		if d = strings.TrimSpace(d); d != "" {
			dirs = append(dirs, expandOrKeep(d))
		}
	}
	out.TemplateDirs = dirs
	return &out
}

// HasExtension reports whether path carries one of the allowed extensions.
func (c *Config) HasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	exts := c.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultAllowedExtensions
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

var goVersionRegex = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// GoRuntimeVersion returns the Go version without the "go" prefix, e.g. "1.25.0".
func GoRuntimeVersion() string {
	if v := goVersionRegex.FindString(runtime.Version()); v != "" {
		return v
	}
	return "0.0.0"
}

func expandOrKeep(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}
