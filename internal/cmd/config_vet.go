package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the projgen configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML
  3. Values satisfy the configuration schema

The config path is resolved using precedence:
  --config flag > PROJGEN_CONFIG env > ~/.projgen/config.yaml

Examples:
  # Validate default configuration
  projgen config vet

  # Validate custom config path
  projgen config vet --config /path/to/config.yaml`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigVet(cmd, g)
		},
	}
}

func runConfigVet(cmd *cobra.Command, g *GlobalConfig) error {
	configPath := g.ConfigPath

	output.Debug("validating config", "path", configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: configPath,
			Hint:     "Run 'projgen config init' to create default configuration",
			Cause:    oerrors.ErrNotFound,
		}
	}

	if _, err := loadConfig(configPath); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid: "+configPath)
	return nil
}
