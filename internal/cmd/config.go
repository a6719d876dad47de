package cmd

import (
	"github.com/spf13/cobra"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration management",
		Long:        `Configuration management for projgen.`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
	}

	cmd.AddCommand(NewConfigInitCmd(g))
	cmd.AddCommand(NewConfigVetCmd(g))

	return cmd
}
