package engine

import (
	"fmt"

	"github.com/opmodel/projgen/internal/condition"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
)

// ResolveVariables combines user input with the template's declarations.
//
// Variables are processed in declaration order. A value comes from
// userValues, then the declared default; a required variable with neither is
// an error. Values are validated and coerced per their type. A variable is
// kept only when all show_if conditions hold and no hide_if condition holds,
// evaluated against the variables resolved before it. If evaluating a
// condition faults, the variable is kept.
//
// Every problem is collected; on failure the returned error is a
// *errors.ResolutionError listing them all.
func (e *Engine) ResolveVariables(t *schema.Template, userValues map[string]any) (map[string]any, error) {
	resolved := make(map[string]any)
	var errs []string

	for _, v := range t.Variables() {
		value, provided := userValues[v.Name]
		if !provided || value == nil {
			value = v.Default
		}
		if value == nil {
			if v.Required {
				errs = append(errs, fmt.Sprintf("Required variable '%s' not provided", v.Name))
			}
			continue
		}

		coerced, err := v.Validate(value)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Variable '%s': %v", v.Name, err))
			continue
		}

		if !visible(v, resolved) {
			output.Debug("variable hidden by condition", "variable", v.Name)
			continue
		}
		resolved[v.Name] = coerced
	}

	if len(errs) > 0 {
		return nil, &oerrors.ResolutionError{Errors: errs}
	}
	return resolved, nil
}

func visible(v schema.Variable, resolved map[string]any) bool {
	if len(v.ShowIf) > 0 {
		ok, err := condition.EvaluateAll(v.ShowIf, resolved)
		if err != nil {
			output.Warn("show_if evaluation failed, including variable", "variable", v.Name, "err", err)
			return true
		}
		if !ok {
			return false
		}
	}
	if len(v.HideIf) > 0 {
		hide, err := condition.EvaluateAny(v.HideIf, resolved)
		if err != nil {
			output.Warn("hide_if evaluation failed, including variable", "variable", v.Name, "err", err)
			return true
		}
		if hide {
			return false
		}
	}
	return true
}
