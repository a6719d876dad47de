package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCompatibility(t *testing.T) {
	tmpl := decode(t, `
metadata: {name: app}
variables: []
structure: {root_directory: {name: app}}
compatibility:
  min_runtime_version: "1.22"
  supported_os: [linux, macos]
`)
	e := newEngine(t, nil)

	assert.Empty(t, e.CheckCompatibility(tmpl, "1.23.4", "linux"))
	assert.Empty(t, e.CheckCompatibility(tmpl, "1.22", "darwin"))

	problems := e.CheckCompatibility(tmpl, "1.21.9", "windows")
	assert.Len(t, problems, 2)
	assert.Contains(t, problems[0], "requires runtime version 1.22 or later, have 1.21.9")
	assert.Contains(t, problems[1], "operating system windows is not supported")

	assert.Contains(t, e.CheckCompatibility(tmpl, "banana", "linux")[0], "invalid runtime version")
}

func TestCheckCompatibility_NoConstraints(t *testing.T) {
	tmpl := decode(t, "metadata: {name: app}\nstructure: {root_directory: {name: app}}\n")
	assert.Empty(t, newEngine(t, nil).CheckCompatibility(tmpl, "", ""))
}
