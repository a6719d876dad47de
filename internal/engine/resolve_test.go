package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/schema"
)

func decode(t *testing.T, doc string) *schema.Template {
	t.Helper()
	tmpl, err := schema.Decode([]byte(doc), "")
	require.NoError(t, err)
	return tmpl
}

func TestResolveVariables_RequiredChoice(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: db, type: choice, required: true}
structure: {root_directory: {name: app}}
`)
	_, err := newEngine(t, nil).ResolveVariables(tmpl, map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Required variable 'db' not provided")
	assert.ErrorIs(t, err, oerrors.ErrResolution)
}

const conditionalDoc = `
metadata: {name: app}
variables:
  - {name: A, type: boolean}
  - name: B
    type: string
    show_if: [{variable: A, operator: equals, value: true}]
structure: {root_directory: {name: app}}
`

func TestResolveVariables_ShowIf(t *testing.T) {
	tmpl := decode(t, conditionalDoc)
	e := newEngine(t, nil)

	got, err := e.ResolveVariables(tmpl, map[string]any{"A": false, "B": "x"})
	require.NoError(t, err)
	assert.NotContains(t, got, "B")
	assert.Equal(t, false, got["A"])

	got, err = e.ResolveVariables(tmpl, map[string]any{"A": true, "B": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", got["B"])
}

func TestResolveVariables_ShowIfUnresolvedIsFalse(t *testing.T) {
	tmpl := decode(t, conditionalDoc)
	got, err := newEngine(t, nil).ResolveVariables(tmpl, map[string]any{"B": "x"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestResolveVariables_HideIf(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: framework, type: choice, choices: [flask, django, none], default: flask}
  - name: port
    type: integer
    default: 8000
    hide_if:
      - {variable: framework, operator: equals, value: none}
      - {variable: missing_earlier, operator: not_equals, value: 1}
structure: {root_directory: {name: app}}
`)
	e := newEngine(t, nil)

	got, err := e.ResolveVariables(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"framework": "flask", "port": 8000}, got)

	got, err = e.ResolveVariables(tmpl, map[string]any{"framework": "none"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"framework": "none"}, got)
}

func TestResolveVariables_Precedence(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: name, type: string, default: fallback}
  - {name: optional, type: string}
  - {name: port, type: integer, default: 80}
structure: {root_directory: {name: app}}
`)
	e := newEngine(t, nil)

	got, err := e.ResolveVariables(tmpl, map[string]any{"port": "8080", "extra": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "fallback", "port": 8080}, got)

	got, err = e.ResolveVariables(tmpl, map[string]any{"name": "given", "optional": nil})
	require.NoError(t, err)
	assert.Equal(t, "given", got["name"])
	assert.NotContains(t, got, "optional")
}

func TestResolveVariables_AggregatesErrors(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: a, type: string, required: true}
  - {name: b, type: integer}
  - {name: c, type: choice, choices: [x, y]}
  - {name: d, type: email, required: true}
structure: {root_directory: {name: app}}
`)
	_, err := newEngine(t, nil).ResolveVariables(tmpl, map[string]any{"b": "ten", "c": "z"})

	var re *oerrors.ResolutionError
	require.True(t, errors.As(err, &re))
	require.Len(t, re.Errors, 4)
	assert.Equal(t, "Required variable 'a' not provided", re.Errors[0])
	assert.Contains(t, re.Errors[1], "Variable 'b': ")
	assert.Contains(t, re.Errors[2], "Variable 'c': ")
	assert.Equal(t, "Required variable 'd' not provided", re.Errors[3])
}

func TestResolveVariables_UnknownOperatorIsPermissive(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: a, type: string, default: x}
  - name: b
    type: string
    default: y
    show_if: [{variable: a, operator: resembles, value: x}]
structure: {root_directory: {name: app}}
`)
	got, err := newEngine(t, nil).ResolveVariables(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "y", got["b"])
}

func TestResolveVariables_FaultFailsOpen(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables:
  - {name: a, type: string, default: x}
  - name: b
    type: string
    default: y
    hide_if: [{variable: "", operator: equals, value: x}]
structure: {root_directory: {name: app}}
`)
	got, err := newEngine(t, nil).ResolveVariables(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "y", got["b"])
}

func TestResolveVariables_Idempotent(t *testing.T) {
	tmpl := decode(t, conditionalDoc)
	e := newEngine(t, nil)
	input := map[string]any{"A": "true", "B": "value"}

	first, err := e.ResolveVariables(tmpl, input)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.ResolveVariables(tmpl, input)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, map[string]any{"A": "true", "B": "value"}, input)
}
