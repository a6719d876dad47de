package templates

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/projgen/internal/schema"
	"github.com/opmodel/projgen/internal/testutil"
)

func decode(t *testing.T, doc, source string) *schema.Template {
	t.Helper()
	tmpl, err := schema.Decode([]byte(doc), source)
	require.NoError(t, err)
	return tmpl
}

const appDoc = `
metadata: {name: app}
variables: []
structure:
  root_directory:
    name: "{{ project_name | slugify }}"
    files:
      - name: README.md
        content: "# {{ project_name }}"
      - name: run.sh
        executable: true
        content: "#!/bin/sh\necho {{ project_name }}\n"
    directories:
      - name: src
        files:
          - name: "{{ project_name | snake_case }}.py"
            content: "print('hi')"
      - name: docker
        condition: use_docker
        files:
          - name: Dockerfile
            content: "FROM python"
        directories:
          - name: compose
            files:
              - {name: compose.yaml, content: "services: {}"}
      - name: docs
        condition:
          - {variable: framework, operator: in, value: [sphinx, mkdocs]}
        files:
          - {name: index.md, content: "docs"}
`

func TestRender_ConditionalSubdirectoryExcluded(t *testing.T) {
	target := t.TempDir()
	tmpl := decode(t, appDoc, "")
	vars := map[string]any{"project_name": "My Cool App", "use_docker": false, "framework": "mkdocs"}

	res := NewRenderer(RenderOptions{}).Render(tmpl, vars, target)
	require.Empty(t, res.Errors)

	assert.Equal(t, []string{
		"my-cool-app/",
		"my-cool-app/README.md",
		"my-cool-app/docs/",
		"my-cool-app/docs/index.md",
		"my-cool-app/run.sh",
		"my-cool-app/src/",
		"my-cool-app/src/my_cool_app.py",
	}, testutil.Tree(t, target))
	assert.Equal(t, 4, res.FilesCreated)
	assert.Equal(t, 3, res.DirectoriesCreated)
	assert.Equal(t, []string{
		"my-cool-app/README.md",
		"my-cool-app/run.sh",
		"my-cool-app/src/my_cool_app.py",
		"my-cool-app/docs/index.md",
	}, res.Files)

	readme, err := os.ReadFile(filepath.Join(target, "my-cool-app", "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# My Cool App", string(readme))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(target, "my-cool-app", "run.sh"))
		require.NoError(t, err)
		assert.NotZero(t, info.Mode()&0o100)
	}
}

func TestRender_MissingConditionVariableExcludes(t *testing.T) {
	target := t.TempDir()
	res := NewRenderer(RenderOptions{}).Render(decode(t, appDoc, ""), map[string]any{"project_name": "x"}, target)
	require.Empty(t, res.Errors)
	assert.NotContains(t, testutil.Tree(t, target), "x/docker/")
	assert.NotContains(t, testutil.Tree(t, target), "x/docs/")
}

func TestRender_PartialSuccess(t *testing.T) {
	doc := `
metadata: {name: app}
variables: []
structure:
  root_directory:
    name: root
    files:
      - {name: a.txt, content: "{{ known }}"}
      - {name: broken.txt, content: "{{ undefined_thing }}"}
      - {name: c.txt, content: "c"}
    directories:
      - name: sub
        files:
          - {name: d.txt, content: "d"}
`
	target := t.TempDir()
	res := NewRenderer(RenderOptions{}).Render(decode(t, doc, ""), map[string]any{"known": "k"}, target)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "root/broken.txt")
	assert.Contains(t, res.Errors[0], "undefined_thing")
	assert.False(t, res.OK())

	assert.Equal(t, []string{"root/", "root/a.txt", "root/c.txt", "root/sub/", "root/sub/d.txt"}, testutil.Tree(t, target))
	assert.Equal(t, 3, res.FilesCreated)
}

func TestRender_HiddenVariableInsideBranch(t *testing.T) {
	doc := `
metadata: {name: app}
variables: []
structure:
  root_directory:
    name: root
    files:
      - {name: inline.txt, content: "{% if with_docs %}{{ docs_theme }}{% endif %}"}
      - {name: gated.txt, condition: with_docs, content: "{{ docs_theme }}"}
`
	target := t.TempDir()
	res := NewRenderer(RenderOptions{}).Render(decode(t, doc, ""), map[string]any{"with_docs": false}, target)

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "root/inline.txt")
	assert.Contains(t, res.Errors[0], "'docs_theme' is undefined")
	assert.Equal(t, []string{"root/"}, testutil.Tree(t, target))
}

func TestRender_TemplateFile(t *testing.T) {
	src := t.TempDir()
	testutil.WriteFile(t, src, "files/main.py.tmpl", "print('{{ greeting | upper }}')\n")
	doc := `
metadata: {name: app}
variables: []
structure:
  root_directory:
    name: out
    files:
      - {name: main.py, template_file: main}
      - {name: gone.py, template_file: missing}
template_files:
  - {name: main, path: files/main.py.tmpl}
  - {name: missing, path: files/nope.tmpl}
`
	tmpl := decode(t, doc, filepath.Join(src, "template.yaml"))
	target := t.TempDir()

	res := NewRenderer(RenderOptions{}).Render(tmpl, map[string]any{"greeting": "hi"}, target)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "out/gone.py")

	content, err := os.ReadFile(filepath.Join(target, "out", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('HI')\n", string(content))
}

func TestRender_Overwrite(t *testing.T) {
	doc := `
metadata: {name: app}
structure:
  root_directory:
    name: out
    files:
      - {name: f.txt, content: "{{ v }}"}
`
	tmpl := decode(t, doc, "")
	target := t.TempDir()
	testutil.WriteFile(t, target, "out/f.txt", "old")

	res := NewRenderer(RenderOptions{}).Render(tmpl, map[string]any{"v": "new"}, target)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "already exists")
	assert.Equal(t, 0, res.DirectoriesCreated)

	res = NewRenderer(RenderOptions{Overwrite: true}).Render(tmpl, map[string]any{"v": "new"}, target)
	require.Empty(t, res.Errors)
	content, err := os.ReadFile(filepath.Join(target, "out", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestRender_RejectsEscapingNames(t *testing.T) {
	doc := `
metadata: {name: app}
structure:
  root_directory:
    name: out
    files:
      - {name: "{{ evil }}", content: x}
      - {name: "/abs.txt", content: x}
      - {name: ok.txt, content: x}
    directories:
      - {name: "../../outside"}
`
	target := t.TempDir()
	res := NewRenderer(RenderOptions{}).Render(decode(t, doc, ""), map[string]any{"evil": "../../../pwned.txt"}, target)

	require.Len(t, res.Errors, 3)
	joined := strings.Join(res.Errors, "\n")
	assert.Contains(t, joined, "escapes the target directory")
	assert.Contains(t, joined, "absolute name")
	assert.Equal(t, []string{"out/", "out/ok.txt"}, testutil.Tree(t, target))
}

func TestRender_DryRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "not-created")
	res := NewRenderer(RenderOptions{DryRun: true}).Render(decode(t, appDoc, ""), map[string]any{"project_name": "x", "use_docker": true, "framework": "none"}, target)

	require.Empty(t, res.Errors)
	assert.Equal(t, 5, res.FilesCreated)
	assert.Equal(t, 4, res.DirectoriesCreated)
	_, err := os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestRender_BadNameTemplate(t *testing.T) {
	doc := `
metadata: {name: app}
structure:
  root_directory:
    name: out
    directories:
      - name: "{{ missing }}"
        files:
          - {name: inner.txt, content: x}
      - name: fine
`
	target := t.TempDir()
	res := NewRenderer(RenderOptions{}).Render(decode(t, doc, ""), map[string]any{}, target)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "directory 'out/{{ missing }}'")
	assert.Equal(t, []string{"out/", "out/fine/"}, testutil.Tree(t, target))
}
