package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/validator"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(g *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate template files or directories",
		Long: `Validate template documents.

A file argument is validated on its own. A directory argument validates
every template file below it (recursion follows recursive_scan).

Checks performed:
  1. File extension and size limits
  2. YAML syntax and required top-level keys
  3. Document structure against the template schema
  4. Variable names, limits and condition references
  5. Security rules for custom validators and hook commands
  6. Compatibility section

Examples:
  # Validate a single template
  projgen validate ./my-template/template.yaml

  # Validate every template in a directory
  projgen validate ~/.projgen/templates`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, args)
		},
	}
}

func runValidate(cmd *cobra.Command, g *GlobalConfig, args []string) error {
	v, err := validator.New(g.Config)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var failed, passed int
	for _, path := range args {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			templates, fileErrs := v.ValidateDirectory(path)
			for _, t := range templates {
				passed++
				fmt.Fprintln(out, output.FormatCheckmark(fmt.Sprintf("%s (%s)", t.SourcePath(), t.Name())))
			}
			for _, fe := range fileErrs {
				failed++
				reportInvalid(out, fe.File, fe.Error)
			}
			continue
		}

		t, err := v.Validate(path)
		if err != nil {
			failed++
			reportInvalid(out, path, err)
			continue
		}
		passed++
		fmt.Fprintln(out, output.FormatCheckmark(fmt.Sprintf("%s (%s)", path, t.Name())))
	}

	output.Debug("validation finished", "passed", passed, "failed", failed)

	if failed > 0 {
		err := oerrors.Wrap(oerrors.ErrValidation, fmt.Sprintf("%d of %d templates failed validation", failed, failed+passed))
		return NewExitError(err, ExitValidationError)
	}
	if passed == 0 {
		return NewExitError(oerrors.Wrap(oerrors.ErrNotFound, "no template files found"), ExitNotFound)
	}
	return nil
}

func reportInvalid(w io.Writer, path string, err error) {
	fmt.Fprintln(w, output.FormatFailure(path))
	for _, msg := range oerrors.Messages(err) {
		fmt.Fprintf(w, "    - %s\n", msg)
	}
}
