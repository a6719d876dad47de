// Package config provides configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxTemplateSize)
	assert.Equal(t, 50, cfg.MaxVariables)
	assert.Equal(t, `^[a-zA-Z][a-zA-Z0-9_]*$`, cfg.VariableNamePattern)
	assert.Equal(t, []string{".yaml", ".yml"}, cfg.AllowedExtensions)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, "~/.projgen/builtin", cfg.BuiltinDir)
	assert.False(t, cfg.AllowCustomValidators)
	assert.False(t, cfg.AllowExternalCommands)
	assert.NotEmpty(t, cfg.RuntimeVersion)
	assert.False(t, strings.HasPrefix(cfg.RuntimeVersion, "go"))
}

func TestWithDefaults_FillsZeroValues(t *testing.T) {
	cfg := (&Config{TemplateDirs: []string{" ", "/a"}}).WithDefaults()

	assert.Equal(t, DefaultMaxTemplateSize, cfg.MaxTemplateSize)
	assert.Equal(t, DefaultMaxVariables, cfg.MaxVariables)
	assert.Equal(t, DefaultVariableNamePattern, cfg.VariableNamePattern)
	assert.Equal(t, DefaultAllowedExtensions, cfg.AllowedExtensions)
	assert.Equal(t, []string{"/a"}, cfg.TemplateDirs)
}

func TestWithDefaults_DoesNotMutateReceiver(t *testing.T) {
	orig := &Config{}
	_ = orig.WithDefaults()
	assert.Zero(t, orig.MaxVariables)
}

func TestHasExtension(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.HasExtension("a/b/template.yaml"))
	assert.True(t, cfg.HasExtension("template.YML"))
	assert.False(t, cfg.HasExtension("template.json"))
	assert.False(t, cfg.HasExtension("template"))
}

func TestDefaultConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultConfigTemplate), 0o600))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.BuiltinDir, cfg.BuiltinDir)
	assert.Equal(t, def.UserDir, cfg.UserDir)
	assert.Equal(t, def.MaxTemplateSize, cfg.MaxTemplateSize)
	assert.Equal(t, def.MaxVariables, cfg.MaxVariables)
	assert.Equal(t, def.VariableNamePattern, cfg.VariableNamePattern)
	assert.Equal(t, def.AllowedExtensions, cfg.AllowedExtensions)
	assert.Equal(t, def.CommandWhitelist, cfg.CommandWhitelist)
	require.NotNil(t, cfg.Log.Timestamps)
	assert.True(t, *cfg.Log.Timestamps)

	v, err := NewValidator()
	require.NoError(t, err)
	assert.NoError(t, v.Validate(cfg.WithDefaults()))
}
