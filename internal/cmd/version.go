package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/projgen/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show projgen version information.

Displays:
  - projgen version, commit, and build date
  - Supported template schema versions
  - Versions of the CUE, expr and JSON Schema libraries linked in`,
		Annotations: map[string]string{skipConfigAnnotation: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return nil
		},
	}
}
