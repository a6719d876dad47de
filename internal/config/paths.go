package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for projgen.
type Paths struct {
	// ConfigFile is the path to the config file (~/.projgen/config.yaml).
	ConfigFile string

	// BuiltinDir receives the bundled templates on init (~/.projgen/builtin).
	BuiltinDir string

	// TemplatesDir is the default user template directory (~/.projgen/templates).
	TemplatesDir string

	// HomeDir is the projgen home directory (~/.projgen).
	HomeDir string
}

// DefaultPaths returns the default paths for projgen.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".projgen")

	return &Paths{
		ConfigFile:   filepath.Join(home, "config.yaml"),
		BuiltinDir:   filepath.Join(home, "builtin"),
		TemplatesDir: filepath.Join(home, "templates"),
		HomeDir:      home,
	}, nil
}

// GetConfigFile returns the config file path.
// If PROJGEN_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv("PROJGEN_CONFIG"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// EnsureUserTemplatesDir creates the user template directory if it doesn't exist.
func EnsureUserTemplatesDir(cfg *Config) error {
	if cfg.UserDir == "" {
		return nil
	}
	dir, err := ExpandPath(cfg.UserDir)
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
