package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/testutil"
)

// setupHome points HOME at a temporary directory.
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PROJGEN_CONFIG", "")
	return home
}

// initHome runs 'config init' in a fresh home directory.
func initHome(t *testing.T) string {
	t.Helper()
	home := setupHome(t)
	_, err := execute(t, "config", "init")
	require.NoError(t, err)
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--timestamps=false"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"list", "validate", "new", "vars", "config", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("template-dir"))
}

func TestVersionCmd(t *testing.T) {
	setupHome(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "projgen version")
	assert.Contains(t, out, "1.0, 1.1")
}

func TestConfigInit(t *testing.T) {
	home := initHome(t)

	dir := filepath.Join(home, ".projgen")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dir, "builtin", "python-cli", "template.yaml"))
	assert.DirExists(t, filepath.Join(dir, "templates"))

	info, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = execute(t, "config", "init")
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	_, err = execute(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigVet(t *testing.T) {
	setupHome(t)

	_, err := execute(t, "config", "vet")
	assert.ErrorIs(t, err, oerrors.ErrNotFound)

	_, err = execute(t, "config", "init")
	require.NoError(t, err)
	out, err := execute(t, "config", "vet")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	bad := testutil.WriteFile(t, t.TempDir(), "bad.yaml", "command_whitelist: [/bin/sh]\n")
	_, err = execute(t, "config", "vet", "--config", bad)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestInvalidConfigFailsCommands(t *testing.T) {
	setupHome(t)
	bad := testutil.WriteFile(t, t.TempDir(), "bad.yaml", "variable_name_pattern: '(['\n")

	_, err := execute(t, "--config", bad, "list")
	assert.ErrorIs(t, err, oerrors.ErrValidation)

	_, err = execute(t, "--config", bad, "version")
	assert.NoError(t, err)
}

func TestListCmd(t *testing.T) {
	initHome(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "python_cli")
	assert.Contains(t, out, "go_service")
	assert.Contains(t, out, "builtin")

	out, err = execute(t, "list", "--category", "python", "-o", "json")
	require.NoError(t, err)
	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "python_cli", infos[0]["name"])
	assert.Equal(t, true, infos[0]["is_builtin"])

	out, err = execute(t, "list", "--categories")
	require.NoError(t, err)
	assert.Equal(t, "go\npython\nweb\n", out)

	out, err = execute(t, "list", "--user")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates found.")

	_, err = execute(t, "list", "-o", "xml")
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
}

func TestValidateCmd(t *testing.T) {
	home := initHome(t)

	out, err := execute(t, "validate", filepath.Join(home, ".projgen", "builtin"))
	require.NoError(t, err)
	assert.Contains(t, out, "python_cli")
	assert.Contains(t, out, "static_site")

	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.yaml", testutil.MinimalTemplate("good", "name"))
	bad := testutil.WriteFile(t, dir, "bad.yaml", "metadata:\n  name: bad\n")

	out, err = execute(t, "validate", good, bad)
	assert.Equal(t, ExitValidationError, ExitCodeFromError(err))
	assert.Contains(t, out, "good.yaml (good)")
	assert.Contains(t, out, "missing required key 'variables'")
	assert.Contains(t, out, "missing required key 'structure'")

	_, err = execute(t, "validate", t.TempDir())
	assert.Equal(t, ExitNotFound, ExitCodeFromError(err))
}

func TestNewCmd(t *testing.T) {
	initHome(t)
	target := t.TempDir()

	out, err := execute(t, "new", "python_cli", target, "--set", "project_name=demo", "--set", "include_tests=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Created 4 files and 2 directories from python_cli")
	assert.Contains(t, out, "pip install -e .")
	assert.Equal(t, []string{
		"demo/",
		"demo/README.md",
		"demo/demo/",
		"demo/demo/__init__.py",
		"demo/demo/__main__.py",
		"demo/pyproject.toml",
	}, testutil.Tree(t, target))

	_, err = execute(t, "new", "python_cli", target, "--set", "project_name=demo", "--set", "include_tests=false")
	assert.Equal(t, ExitRenderError, ExitCodeFromError(err))

	_, err = execute(t, "new", "python_cli", target, "--set", "project_name=demo", "--set", "include_tests=false", "--force")
	assert.NoError(t, err)
}

func TestNewCmd_DryRun(t *testing.T) {
	initHome(t)
	target := filepath.Join(t.TempDir(), "site")

	values := testutil.WriteFile(t, t.TempDir(), "values.yaml", "pages: [about, contact]\ninclude_css: false\n")
	out, err := execute(t, "new", "static_site", target, "--values", values, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Would create 1 files and 1 directories")
	assert.NoDirExists(t, target)
}

func TestNewCmd_Errors(t *testing.T) {
	initHome(t)

	_, err := execute(t, "new", "missing_template", t.TempDir())
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
	assert.Contains(t, err.Error(), "projgen list")

	_, err = execute(t, "new", "go_service", filepath.Join(t.TempDir(), "1bad"))
	var re *oerrors.ResolutionError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"Required variable 'project_name' not provided"}, re.Errors)

	_, err = execute(t, "new", "go_service", t.TempDir(), "--set", "oops")
	assert.ErrorIs(t, err, oerrors.ErrValidation)
}

func TestNewCmd_TemplateDirFlag(t *testing.T) {
	setupHome(t)
	tmplDir := t.TempDir()
	testutil.WriteFile(t, tmplDir, "broken/template.yaml", `schema_version: "1.0"
metadata:
  name: broken
  version: 1.0.0
variables: []
structure:
  root_directory:
    name: broken
    files:
      - name: ok.txt
        content: fine
      - name: bad.txt
        content: "{{ nope }}"
`)
	target := t.TempDir()

	out, err := execute(t, "-t", tmplDir, "new", "broken", target)
	assert.Equal(t, ExitRenderError, ExitCodeFromError(err))
	assert.Contains(t, out, "1 errors while rendering")
	assert.Contains(t, out, "'nope' is undefined")
	assert.FileExists(t, filepath.Join(target, "broken", "ok.txt"))
}

func TestVarsCmd(t *testing.T) {
	initHome(t)

	out, err := execute(t, "vars", "python_cli")
	require.NoError(t, err)
	assert.Contains(t, out, "project_name")
	assert.Contains(t, out, "test_framework")
	assert.Contains(t, out, "pytest")

	out, err = execute(t, "vars", "go_service", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: port")
	assert.Contains(t, out, "type: integer")

	_, err = execute(t, "vars", "nope")
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}
