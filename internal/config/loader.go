package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for projgen configuration.
const envPrefix = "PROJGEN"

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader seeded with DefaultConfig values.
func NewLoader() *Loader {
	v := viper.New()

	// Set up environment variable bindings
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register every key so AutomaticEnv can see it
	def := DefaultConfig()
	v.SetDefault("template_dirs", def.TemplateDirs)
	v.SetDefault("builtin_dir", def.BuiltinDir)
	v.SetDefault("user_dir", def.UserDir)
	v.SetDefault("recursive_scan", def.RecursiveScan)
	v.SetDefault("cache_enabled", def.CacheEnabled)
	v.SetDefault("max_template_size", def.MaxTemplateSize)
	v.SetDefault("max_variables", def.MaxVariables)
	v.SetDefault("variable_name_pattern", def.VariableNamePattern)
	v.SetDefault("allowed_extensions", def.AllowedExtensions)
	v.SetDefault("full_schema", def.FullSchema)
	v.SetDefault("allow_custom_validators", def.AllowCustomValidators)
	v.SetDefault("allow_external_commands", def.AllowExternalCommands)
	v.SetDefault("command_whitelist", def.CommandWhitelist)
	v.SetDefault("runtime_version", def.RuntimeVersion)

	return &Loader{v: v}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	// Expand ~ in path
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	l.v.SetConfigFile(expandedPath)
	l.v.SetConfigType("yaml")

	// A missing config file is fine: defaults + env vars apply
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}
