package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/schema"
)

// NewVarsCmd creates the vars command.
func NewVarsCmd(g *GlobalConfig) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "vars <template>",
		Short: "Show the variables a template accepts",
		Long: `Show the variables declared by a template, in declaration order.

Variables marked conditional are only resolved when their show_if and
hide_if rules allow it.

Examples:
  projgen vars python_cli
  projgen vars ./template.yaml -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVars(cmd, g, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format: "+strings.Join(output.ValidFormats(), ", "))

	return cmd
}

func runVars(cmd *cobra.Command, g *GlobalConfig, ref, formatFlag string) error {
	format, err := parseFormat(formatFlag)
	if err != nil {
		return err
	}

	gen, _, err := g.Generator()
	if err != nil {
		return err
	}
	tmpl, err := gen.Load(ref)
	if err != nil {
		return detailFor(err, ref, hintFor(err))
	}

	vars := tmpl.Variables()
	if format != output.FormatTable {
		out, err := output.Marshal(format, vars)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	if len(vars) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Template %s declares no variables.\n", tmpl.Name())
		return nil
	}

	t := output.NewTable("NAME", "TYPE", "REQUIRED", "DEFAULT", "CONDITIONAL", "DESCRIPTION")
	for _, v := range vars {
		t.Row(v.Name, string(v.Type), yesNo(v.Required), defaultString(v), yesNo(v.Conditional()), v.Description)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}

func defaultString(v schema.Variable) string {
	if !v.HasDefault() {
		return "-"
	}
	if list, ok := v.Default.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v.Default)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
