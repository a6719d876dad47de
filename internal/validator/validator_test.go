package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/projgen/internal/config"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/testutil"
)

func newValidator(t *testing.T, mutate func(*config.Config)) *Validator {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	v, err := New(cfg)
	require.NoError(t, err)
	return v
}

func validationErrors(t *testing.T, err error) []string {
	t.Helper()
	var ve *oerrors.ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve.Errors
}

func TestValidate_Valid(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "app.yaml", testutil.MinimalTemplate("app", "project_name"))

	tmpl, err := newValidator(t, nil).Validate(path)
	require.NoError(t, err)
	assert.Equal(t, "app", tmpl.Name())
	assert.Equal(t, path, tmpl.SourcePath())
}

func TestValidate_FileChecks(t *testing.T) {
	dir := t.TempDir()

	t.Run("extension", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "app.txt", testutil.MinimalTemplate("app"))
		_, err := newValidator(t, nil).Validate(path)
		assert.Contains(t, strings.Join(validationErrors(t, err), "\n"), "file extension must be one of .yaml, .yml")
	})

	t.Run("size", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "big.yaml", testutil.MinimalTemplate("app"))
		v := newValidator(t, func(c *config.Config) { c.MaxTemplateSize = 10 })
		_, err := v.Validate(path)
		assert.Contains(t, strings.Join(validationErrors(t, err), "\n"), "exceeds maximum of 10 bytes")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := newValidator(t, nil).Validate(filepath.Join(dir, "nope.yaml"))
		var le *oerrors.LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, oerrors.LoadMissing, le.Kind)
		assert.ErrorIs(t, err, oerrors.ErrNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "empty.yaml", "  \n")
		_, err := newValidator(t, nil).Validate(path)
		var le *oerrors.LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, oerrors.LoadEmpty, le.Kind)
	})

	t.Run("syntax", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "bad.yaml", "metadata: [unclosed\n")
		_, err := newValidator(t, nil).Validate(path)
		var le *oerrors.LoadError
		require.True(t, errors.As(err, &le))
		assert.Equal(t, oerrors.LoadSyntax, le.Kind)
		assert.Contains(t, err.Error(), "invalid syntax")
	})
}

func TestValidateDocument_Shape(t *testing.T) {
	v := newValidator(t, nil)

	_, err := v.ValidateDocument([]byte("- a\n- b\n"), "list.yaml")
	assert.Equal(t, []string{"template document must be a mapping"}, validationErrors(t, err))

	_, err = v.ValidateDocument([]byte("schema_version: \"1.0\"\n"), "keys.yaml")
	assert.Equal(t, []string{
		"missing required key 'metadata'",
		"missing required key 'variables'",
		"missing required key 'structure'",
	}, validationErrors(t, err))
}

func TestValidateDocument_FullSchema(t *testing.T) {
	v := newValidator(t, func(c *config.Config) { c.FullSchema = true })
	_, err := v.ValidateDocument([]byte(testutil.MinimalTemplate("app")), "")
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "missing required key 'configuration'")
	assert.Contains(t, errs, "missing required key 'template_files'")
	assert.Contains(t, errs, "missing required key 'hooks'")
	assert.Contains(t, errs, "missing required key 'compatibility'")
	assert.NotContains(t, errs, "missing required key 'schema_version'")
}

func TestValidateDocument_StructuralErrorsAggregated(t *testing.T) {
	doc := `
metadata: {name: app, owner: me}
variables:
  - {name: a, type: widget}
  - {name: b}
structure: {root_directory: {name: app}}
`
	_, err := newValidator(t, nil).ValidateDocument([]byte(doc), "")
	errs := validationErrors(t, err)
	assert.GreaterOrEqual(t, len(errs), 3)
	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "/metadata")
	assert.Contains(t, joined, "/variables/0/type")
	assert.Contains(t, joined, "/variables/1")
}

func TestValidateDocument_TooManyVariables(t *testing.T) {
	names := make([]string, 6)
	for i := range names {
		names[i] = fmt.Sprintf("v%d", i)
	}
	v := newValidator(t, func(c *config.Config) { c.MaxVariables = 5 })
	_, err := v.ValidateDocument([]byte(testutil.MinimalTemplate("app", names...)), "")
	assert.Contains(t, strings.Join(validationErrors(t, err), "\n"), "too many variables: 6 (maximum 5)")
}

func TestValidateDocument_VariableNames(t *testing.T) {
	doc := `
metadata: {name: app}
variables:
  - {name: 1bad, type: string}
  - {name: ok, type: string}
  - {name: ok, type: string}
structure: {root_directory: {name: app}}
`
	_, err := newValidator(t, nil).ValidateDocument([]byte(doc), "")
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "variable name '1bad' does not match pattern ^[a-zA-Z][a-zA-Z0-9_]*$")
	assert.Contains(t, errs, "duplicate variable name 'ok'")
}

func TestValidateDocument_References(t *testing.T) {
	doc := `
metadata: {name: app}
variables:
  - name: a
    type: boolean
    show_if: [{variable: b, operator: equals, value: true}]
  - name: b
    type: boolean
    hide_if: [{variable: b, operator: equals, value: true}]
  - name: c
    type: string
    show_if: [{variable: ghost, operator: equals, value: 1}]
    hide_if: [{variable: phantom, operator: in, value: [1]}]
structure:
  root_directory:
    name: app
    directories:
      - {name: d, condition: "nobody == 1"}
    files:
      - name: f
        condition: [{variable: spook, operator: equals, value: 1}]
`
	_, err := newValidator(t, nil).ValidateDocument([]byte(doc), "")
	errs := validationErrors(t, err)
	assert.Contains(t, errs, "variable 'a' show_if references 'b', which is declared later")
	assert.Contains(t, errs, "variable 'b' hide_if references itself")
	assert.Contains(t, errs, "variable 'c' show_if references unknown variable 'ghost'")
	assert.Contains(t, errs, "variable 'c' hide_if references unknown variable 'phantom'")
	assert.Contains(t, errs, `directory "app/d" condition references unknown variable 'nobody'`)
	assert.Contains(t, errs, `file "app/f" condition references unknown variable 'spook'`)
}

const hookTemplate = `
metadata: {name: app}
variables:
  - {name: a, type: string, validator: slug_check}
structure: {root_directory: {name: app}}
template_files:
  - {name: up, path: ../../etc/passwd}
  - {name: ok, path: files/main.tmpl}
hooks:
  post_generation:
    - {type: command, command: git init}
    - {type: command, command: curl http://x}
    - {type: command, command: "git init && rm -rf /"}
    - {type: message, description: done}
`

func TestValidateDocument_Security(t *testing.T) {
	t.Run("defaults reject validators and commands", func(t *testing.T) {
		_, err := newValidator(t, nil).ValidateDocument([]byte(hookTemplate), "")
		errs := validationErrors(t, err)
		assert.Contains(t, errs, "variable 'a' uses custom validator 'slug_check' but custom validators are disabled")
		assert.Contains(t, errs, "hook command 'git init' not allowed: external commands are disabled")
		assert.Contains(t, errs, "template file 'up' path '../../etc/passwd' escapes the template directory")
	})

	t.Run("whitelist applies when commands are enabled", func(t *testing.T) {
		v := newValidator(t, func(c *config.Config) {
			c.AllowCustomValidators = true
			c.AllowExternalCommands = true
		})
		_, err := v.ValidateDocument([]byte(hookTemplate), "")
		errs := validationErrors(t, err)
		assert.NotContains(t, strings.Join(errs, "\n"), "'git init' not allowed")
		assert.Contains(t, errs, "hook command 'curl http://x' not allowed: 'curl' is not in the command whitelist")
		assert.Contains(t, errs, "hook command 'git init && rm -rf /' contains shell control characters")
		assert.NotContains(t, strings.Join(errs, "\n"), "custom validator")
	})
}

func TestValidateDocument_Compatibility(t *testing.T) {
	doc := `
metadata: {name: app}
variables: []
structure: {root_directory: {name: app}}
compatibility:
  min_runtime_version: not-a-version
  supported_os: [linux, beos]
`
	_, err := newValidator(t, nil).ValidateDocument([]byte(doc), "")
	joined := strings.Join(validationErrors(t, err), "\n")
	assert.Contains(t, joined, "compatibility minimum version 'not-a-version' is not a valid version")
	assert.Contains(t, joined, "unknown operating system 'beos'")
	assert.NotContains(t, joined, "'linux'")
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.yaml", testutil.MinimalTemplate("a"))
	testutil.WriteFile(t, dir, "b.yml", "metadata: [broken\n")
	testutil.WriteFile(t, dir, "notes.txt", "ignored")
	testutil.WriteFile(t, dir, "nested/c.yaml", testutil.MinimalTemplate("c"))

	valid, errs := newValidator(t, nil).ValidateDirectory(dir)
	require.Len(t, valid, 2)
	assert.Equal(t, "a", valid[0].Name())
	assert.Equal(t, "c", valid[1].Name())
	require.Len(t, errs, 1)
	assert.Equal(t, filepath.Join(dir, "b.yml"), errs[0].File)
	assert.ErrorIs(t, errs[0].Error, oerrors.ErrLoad)

	flat := newValidator(t, func(c *config.Config) { c.RecursiveScan = false })
	valid, _ = flat.ValidateDirectory(dir)
	assert.Len(t, valid, 1)
}

func TestValidateDirectory_Missing(t *testing.T) {
	valid, errs := newValidator(t, nil).ValidateDirectory(filepath.Join(t.TempDir(), "absent"))
	assert.Empty(t, valid)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0].Error, oerrors.ErrNotFound)
}

func TestValidateDirectory_UnreadableSubdir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.yaml", testutil.MinimalTemplate("a"))
	locked := filepath.Join(dir, "locked")
	testutil.WriteFile(t, locked, "b.yaml", testutil.MinimalTemplate("b"))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	valid, errs := newValidator(t, nil).ValidateDirectory(dir)
	assert.Len(t, valid, 1)
	assert.Empty(t, errs)
}

func TestNew_InvalidPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.VariableNamePattern = "("
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestEscapes(t *testing.T) {
	assert.True(t, escapes("../x"))
	assert.True(t, escapes("a/../../x"))
	assert.True(t, escapes("/etc/passwd"))
	assert.True(t, escapes(".."))
	assert.False(t, escapes("files/x.tmpl"))
	assert.False(t, escapes("a/../b"))
	assert.False(t, escapes("..foo/x"))
}
