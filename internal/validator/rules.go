package validator

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/opmodel/projgen/internal/condition"
	"github.com/opmodel/projgen/internal/schema"
)

// shellMeta are characters that would let a hook chain or redirect commands.
const shellMeta = ";&|`$<>\n"

func (v *Validator) checkVariableCount(t *schema.Template) []string {
	if n := len(t.Variables()); n > v.cfg.MaxVariables {
		return []string{fmt.Sprintf("too many variables: %d (maximum %d)", n, v.cfg.MaxVariables)}
	}
	return nil
}

func (v *Validator) checkVariableNames(t *schema.Template) []string {
	var errs []string
	seen := map[string]bool{}
	for _, variable := range t.Variables() {
		if !v.namePattern.MatchString(variable.Name) {
			errs = append(errs, fmt.Sprintf("variable name '%s' does not match pattern %s", variable.Name, v.namePattern))
		}
		if seen[variable.Name] {
			errs = append(errs, fmt.Sprintf("duplicate variable name '%s'", variable.Name))
		}
		seen[variable.Name] = true
	}
	return errs
}

// checkReferences requires show_if and hide_if to name a variable declared
// earlier in the template.
func checkReferences(t *schema.Template) []string {
	vars := t.Variables()
	declared := make(map[string]int, len(vars))
	for i, v := range vars {
		if _, ok := declared[v.Name]; !ok {
			declared[v.Name] = i
		}
	}

	var errs []string
	for i, v := range vars {
		for _, kind := range []struct {
			name  string
			conds []condition.Condition
		}{{"show_if", v.ShowIf}, {"hide_if", v.HideIf}} {
			for _, c := range kind.conds {
				at, ok := declared[c.Variable]
				switch {
				case !ok:
					errs = append(errs, fmt.Sprintf("variable '%s' %s references unknown variable '%s'", v.Name, kind.name, c.Variable))
				case c.Variable == v.Name:
					errs = append(errs, fmt.Sprintf("variable '%s' %s references itself", v.Name, kind.name))
				case at > i:
					errs = append(errs, fmt.Sprintf("variable '%s' %s references '%s', which is declared later", v.Name, kind.name, c.Variable))
				}
			}
		}
	}
	return errs
}

// checkStructureReferences requires node conditions to read declared
// variables only.
func checkStructureReferences(t *schema.Template) []string {
	var errs []string
	check := func(where string, c schema.NodeCondition) {
		if c.IsZero() {
			return
		}
		names, err := c.Variables()
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s has an invalid condition: %v", where, err))
			return
		}
		for _, name := range names {
			if _, ok := t.Variable(name); !ok {
				errs = append(errs, fmt.Sprintf("%s condition references unknown variable '%s'", where, name))
			}
		}
	}

	t.Structure().Walk(schema.Visitor{
		Directory: func(p []string, d schema.DirectoryItem) {
			check(fmt.Sprintf("directory %q", path.Join(append(p, d.Name)...)), d.Condition)
		},
		File: func(p []string, f schema.FileItem) {
			check(fmt.Sprintf("file %q", path.Join(append(p, f.Name)...)), f.Condition)
		},
	})
	return errs
}

func (v *Validator) checkSecurity(t *schema.Template) []string {
	var errs []string

	for _, variable := range t.Variables() {
		if variable.Validator != "" && !v.cfg.AllowCustomValidators {
			errs = append(errs, fmt.Sprintf("variable '%s' uses custom validator '%s' but custom validators are disabled", variable.Name, variable.Validator))
		}
	}

	for _, h := range t.Hooks().PostGeneration {
		if strings.TrimSpace(h.Command) == "" {
			continue
		}
		if !v.cfg.AllowExternalCommands {
			errs = append(errs, fmt.Sprintf("hook command '%s' not allowed: external commands are disabled", h.Command))
			continue
		}
		if strings.ContainsAny(h.Command, shellMeta) {
			errs = append(errs, fmt.Sprintf("hook command '%s' contains shell control characters", h.Command))
			continue
		}
		if exe := h.Executable(); !v.whitelist[exe] {
			errs = append(errs, fmt.Sprintf("hook command '%s' not allowed: '%s' is not in the command whitelist", h.Command, exe))
		}
	}

	for _, f := range t.TemplateFiles() {
		if escapes(f.Path) {
			errs = append(errs, fmt.Sprintf("template file '%s' path '%s' escapes the template directory", f.Name, f.Path))
		}
	}
	return errs
}

func checkCompatibility(t *schema.Template) []string {
	var errs []string
	c := t.Compatibility()
	if mv := c.MinVersion(); mv != "" {
		if _, err := semver.NewVersion(mv); err != nil {
			errs = append(errs, fmt.Sprintf("compatibility minimum version '%s' is not a valid version: %v", mv, err))
		}
	}
	for _, name := range c.SupportedOS {
		if !knownOS(name) {
			errs = append(errs, fmt.Sprintf("compatibility.supported_os: unknown operating system '%s' (known: %s)", name, strings.Join(schema.KnownOS, ", ")))
		}
	}
	return errs
}

func knownOS(name string) bool {
	for _, k := range schema.KnownOS {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// escapes reports whether a relative path leaves its base directory.
func escapes(p string) bool {
	if p == "" {
		return false
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	clean := path.Clean(filepath.ToSlash(p))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
