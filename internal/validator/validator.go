// Package validator checks template documents before they are used: file
// limits, YAML shape, the structural schema pass, and the configurable
// naming, reference, security and compatibility rules.
package validator

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opmodel/projgen/internal/config"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/schema"
)

// Top-level keys every template must declare.
var requiredKeys = []string{"metadata", "variables", "structure"}

// Additional keys required when the full schema is enforced.
var fullSchemaKeys = []string{"schema_version", "configuration", "template_files", "hooks", "compatibility"}

// Validator validates template documents against a configuration.
type Validator struct {
	cfg         *config.Config
	namePattern *regexp.Regexp
	whitelist   map[string]bool
}

// New creates a Validator. A nil cfg uses config.DefaultConfig.
func New(cfg *config.Config) (*Validator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg = cfg.WithDefaults()

	re, err := regexp.Compile(cfg.VariableNamePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling variable name pattern %q: %w", cfg.VariableNamePattern, err)
	}

	whitelist := make(map[string]bool, len(cfg.CommandWhitelist))
	for _, c := range cfg.CommandWhitelist {
		whitelist[c] = true
	}

	return &Validator{cfg: cfg, namePattern: re, whitelist: whitelist}, nil
}

// Config returns the effective configuration.
func (v *Validator) Config() *config.Config {
	return v.cfg
}

// Validate reads and validates the template file at path.
//
// Files that cannot be read or parsed yield a *errors.LoadError; documents
// that parse but break a rule yield a *errors.ValidationError listing every
// problem found.
func (v *Validator) Validate(path string) (*schema.Template, error) {
	var pre []string
	if !v.cfg.HasExtension(path) {
		pre = append(pre, fmt.Sprintf("file extension must be one of %s", strings.Join(v.cfg.AllowedExtensions, ", ")))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, statError(path, err)
	}
	if info.IsDir() {
		return nil, &oerrors.LoadError{Path: path, Kind: oerrors.LoadIO, Cause: fmt.Errorf("is a directory")}
	}
	if info.Size() > v.cfg.MaxTemplateSize {
		pre = append(pre, fmt.Sprintf("file size %d bytes exceeds maximum of %d bytes", info.Size(), v.cfg.MaxTemplateSize))
	}
	if len(pre) > 0 {
		return nil, &oerrors.ValidationError{Path: path, Errors: pre}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, statError(path, err)
	}
	return v.ValidateDocument(data, path)
}

// ValidateDocument validates an in-memory document. sourcePath is used in
// messages and to resolve template files; it may be empty.
func (v *Validator) ValidateDocument(data []byte, sourcePath string) (*schema.Template, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &oerrors.LoadError{Path: sourcePath, Kind: oerrors.LoadEmpty}
	}
	if int64(len(data)) > v.cfg.MaxTemplateSize {
		return nil, &oerrors.ValidationError{Path: sourcePath, Errors: []string{
			fmt.Sprintf("document size %d bytes exceeds maximum of %d bytes", len(data), v.cfg.MaxTemplateSize),
		}}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &oerrors.LoadError{Path: sourcePath, Kind: oerrors.LoadSyntax, Cause: err}
	}
	if len(root.Content) == 0 {
		return nil, &oerrors.LoadError{Path: sourcePath, Kind: oerrors.LoadEmpty}
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, &oerrors.ValidationError{Path: sourcePath, Errors: []string{"template document must be a mapping"}}
	}

	if errs := v.checkKeys(doc); len(errs) > 0 {
		return nil, &oerrors.ValidationError{Path: sourcePath, Errors: errs}
	}

	issues, err := schema.CheckStructure(data)
	if err != nil {
		return nil, &oerrors.LoadError{Path: sourcePath, Kind: oerrors.LoadSyntax, Cause: err}
	}
	if len(issues) > 0 {
		errs := make([]string, len(issues))
		for i, is := range issues {
			errs[i] = is.String()
		}
		return nil, &oerrors.ValidationError{Path: sourcePath, Errors: errs}
	}

	t, err := schema.Decode(data, sourcePath)
	if err != nil {
		return nil, &oerrors.ValidationError{Path: sourcePath, Errors: []string{err.Error()}}
	}

	if err := oerrors.NewValidationError(sourcePath, v.Complete(t)); err != nil {
		return nil, err
	}
	return t, nil
}

func (v *Validator) checkKeys(doc *yaml.Node) []string {
	present := map[string]bool{}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		present[doc.Content[i].Value] = true
	}

	required := requiredKeys
	if v.cfg.FullSchema {
		required = append(append([]string(nil), requiredKeys...), fullSchemaKeys...)
	}

	var errs []string
	for _, k := range required {
		if !present[k] {
			errs = append(errs, fmt.Sprintf("missing required key '%s'", k))
		}
	}
	return errs
}

// Complete runs the domain checks on a decoded template and returns every
// problem found, in check order.
func (v *Validator) Complete(t *schema.Template) []string {
	var errs []string
	errs = append(errs, t.Check()...)
	errs = append(errs, v.checkVariableCount(t)...)
	errs = append(errs, v.checkVariableNames(t)...)
	errs = append(errs, checkReferences(t)...)
	errs = append(errs, checkStructureReferences(t)...)
	errs = append(errs, v.checkSecurity(t)...)
	errs = append(errs, checkCompatibility(t)...)
	return errs
}

func statError(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return &oerrors.LoadError{Path: path, Kind: oerrors.LoadMissing}
	case os.IsPermission(err):
		return &oerrors.LoadError{Path: path, Kind: oerrors.LoadIO, Cause: oerrors.ErrPermission}
	default:
		return &oerrors.LoadError{Path: path, Kind: oerrors.LoadIO, Cause: err}
	}
}
