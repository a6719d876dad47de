package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/projgen/internal/config"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/templates"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *GlobalConfig) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Initialize the projgen configuration.

Creates the following in ~/.projgen/:
  config.yaml   Main configuration file
  builtin/      Templates shipped with projgen
  templates/    Directory for your own templates

Existing builtin template files are kept unless --force is given.

Examples:
  # Initialize configuration
  projgen config init

  # Overwrite existing configuration and builtin templates
  projgen config init --force`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, g, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(cmd *cobra.Command, g *GlobalConfig, force bool) error {
	paths, err := config.DefaultPaths()
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	configFile := g.ConfigPath
	if configFile == "" {
		configFile = paths.ConfigFile
	}

	if _, err := os.Stat(configFile); err == nil && !force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: configFile,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not create "+filepath.Dir(configFile))
	}
	if err := os.WriteFile(configFile, []byte(config.DefaultConfigTemplate), 0o600); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not write "+configFile)
	}

	written, err := templates.InstallBuiltins(paths.BuiltinDir, force)
	if err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, fmt.Sprintf("could not install builtin templates: %v", err))
	}
	if err := os.MkdirAll(paths.TemplatesDir, 0o755); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not create "+paths.TemplatesDir)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration initialized at "+paths.HomeDir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Created files:")
	fmt.Fprintln(out, "  "+configFile)
	fmt.Fprintf(out, "  %s (%d files)\n", paths.BuiltinDir, len(written))
	fmt.Fprintln(out, "  "+paths.TemplatesDir)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Validate with: projgen config vet")

	return nil
}
