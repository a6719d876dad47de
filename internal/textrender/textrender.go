// Package textrender renders the string templates used in project names,
// paths and file content.
//
// The syntax is a small subset of the Jinja family:
//
//	{{ expr | filter | filter }}   substitution
//	{% if expr %} {% elif expr %} {% else %} {% endif %}
//	{% for name in expr %} {% endfor %}
//	{# comment #}
//
// Expressions are evaluated by expr-lang against the supplied variables
// only. Referencing a name that is not supplied is an error.
//
// The undefined check is static and covers every branch, taken or not.
// A block such as
//
//	{% if with_docs %}{{ docs_theme }}{% endif %}
//
// fails when docs_theme is hidden by its own show_if, even though the
// branch is skipped. Gate such content with a file or directory
// condition instead of an inline block.
package textrender

import (
	stderrors "errors"
	"fmt"
	"sort"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
)

// Template is a parsed string template.
type Template struct {
	name  string
	nodes []node

	// free maps each variable read by the template to the line of its
	// first use.
	free map[string]int
}

// Parse parses text. name identifies the template in errors.
func Parse(name, text string) (*Template, error) {
	nodes, err := parse(text)
	if err != nil {
		return nil, renderError(name, err)
	}
	free := map[string]int{}
	if err := nodesVars(nodes, free, map[string]bool{}); err != nil {
		return nil, renderError(name, err)
	}
	return &Template{name: name, nodes: nodes, free: free}, nil
}

// Execute renders the template against vars. Every variable the template
// reads must be present in vars, including those used only in branches
// that are not taken. vars is not modified.
func (t *Template) Execute(vars map[string]any) (string, error) {
	if name, line, ok := t.firstMissing(vars); ok {
		return "", &oerrors.RenderError{Name: t.name, Line: line, Message: fmt.Sprintf("'%s' is undefined", name)}
	}

	scope := make(map[string]any, len(vars))
	for k, v := range vars {
		scope[k] = v
	}
	s := &state{vars: scope}
	if err := s.walk(t.nodes); err != nil {
		return "", renderError(t.name, err)
	}
	return s.out.String(), nil
}

// Variables returns the sorted names the template reads that are not bound
// by one of its own loops.
func (t *Template) Variables() []string {
	names := make([]string, 0, len(t.free))
	for name := range t.free {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstMissing returns the earliest-used variable absent from vars.
func (t *Template) firstMissing(vars map[string]any) (string, int, bool) {
	var (
		missing string
		line    int
	)
	for _, name := range t.Variables() {
		if _, ok := vars[name]; ok {
			continue
		}
		if l := t.free[name]; missing == "" || l < line {
			missing, line = name, l
		}
	}
	return missing, line, missing != ""
}

// Render parses and executes text in one step.
func Render(name, text string, vars map[string]any) (string, error) {
	t, err := Parse(name, text)
	if err != nil {
		return "", err
	}
	return t.Execute(vars)
}

// Variables lists the variables text reads. Malformed text is logged and
// yields an empty list.
func Variables(text string) []string {
	t, err := Parse("string", text)
	if err == nil {
		return t.Variables()
	}
	output.Warn("could not extract template variables", "err", err)
	return []string{}
}

func renderError(name string, err error) error {
	re := &oerrors.RenderError{Name: name, Message: err.Error()}
	var se *syntaxError
	var ee *execError
	switch {
	case stderrors.As(err, &se):
		re.Line, re.Message = se.line, "syntax error: "+se.msg
	case stderrors.As(err, &ee):
		re.Line, re.Message = ee.line, ee.msg
	}
	return re
}
