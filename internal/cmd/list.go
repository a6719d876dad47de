package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/projgen/internal/loader"
	"github.com/opmodel/projgen/internal/output"
)

type listOptions struct {
	category   string
	output     string
	categories bool
	builtin    bool
	user       bool
}

// NewListCmd creates the list command.
func NewListCmd(g *GlobalConfig) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available templates",
		Long: `List the templates found in the configured template directories.

Examples:
  # List every template
  projgen list

  # Only Python templates, as JSON
  projgen list --category python -o json

  # Show the known categories
  projgen list --categories`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "Only list templates in this category")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: "+strings.Join(output.ValidFormats(), ", "))
	cmd.Flags().BoolVar(&opts.categories, "categories", false, "List categories instead of templates")
	cmd.Flags().BoolVar(&opts.builtin, "builtin", false, "Only list builtin templates")
	cmd.Flags().BoolVar(&opts.user, "user", false, "Only list user templates")
	cmd.MarkFlagsMutuallyExclusive("builtin", "user")

	return cmd
}

func runList(cmd *cobra.Command, g *GlobalConfig, opts *listOptions) error {
	format, err := parseFormat(opts.output)
	if err != nil {
		return err
	}

	_, l, err := g.Generator()
	if err != nil {
		return err
	}

	if opts.categories {
		return printList(cmd, format, l.TemplateCategories())
	}

	var infos []loader.TemplateInfo
	switch {
	case opts.builtin:
		infos = filterCategory(l.BuiltinTemplates(), opts.category)
	case opts.user:
		infos = filterCategory(l.UserTemplates(), opts.category)
	default:
		infos = l.ListTemplates(opts.category)
	}

	if format != output.FormatTable {
		if infos == nil {
			infos = []loader.TemplateInfo{}
		}
		out, err := output.Marshal(format, infos)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
		return nil
	}

	rows := make([]output.TemplateRow, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, output.TemplateRow{
			Name:        info.Name,
			Category:    info.Category,
			Version:     info.Version,
			Source:      source(info),
			Description: info.Description,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), output.RenderTemplateTable(rows))
	return nil
}

func printList(cmd *cobra.Command, format output.OutputFormat, items []string) error {
	if format == output.FormatTable {
		for _, item := range items {
			fmt.Fprintln(cmd.OutOrStdout(), item)
		}
		return nil
	}
	out, err := output.Marshal(format, items)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func filterCategory(infos []loader.TemplateInfo, category string) []loader.TemplateInfo {
	if category == "" {
		return infos
	}
	var out []loader.TemplateInfo
	for _, info := range infos {
		if strings.EqualFold(info.Category, category) {
			out = append(out, info)
		}
	}
	return out
}

func source(info loader.TemplateInfo) string {
	switch {
	case info.IsBuiltin:
		return "builtin"
	case info.IsUser:
		return "user"
	default:
		return "custom"
	}
}

// parseFormat accepts the names listed by output.ValidFormats.
func parseFormat(s string) (output.OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "yaml", "yml", "json":
		return output.ParseOutputFormat(s), nil
	}
	return "", NewExitError(fmt.Errorf("unknown output format %q (valid: %s)", s, strings.Join(output.ValidFormats(), ", ")), ExitValidationError)
}
