package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/templates"
)

type newOptions struct {
	sets       []string
	valuesFile string
	force      bool
	dryRun     bool
	skipCompat bool
}

// NewNewCmd creates the new command.
func NewNewCmd(g *GlobalConfig) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new <template> [dir]",
		Short: "Create a project from a template",
		Long: `Create a new project from a template.

<template> is a template name (see 'projgen list') or a path to a template
file. The project root directory is created inside [dir], which defaults
to the current directory.

Variable values come from --values (a YAML mapping) and --set, which
overrides the file. Variables not given use their template defaults.
When project_name has no default it is taken from the name of [dir].

Examples:
  # Generate into ./work
  projgen new python_cli ./work --set project_name=hello

  # Preview the files without writing them
  projgen new go_service . --values values.yaml --dry-run

  # Regenerate over existing files
  projgen new static_site site --set pages=about,contact --force`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNew(cmd, g, opts, args)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Set a variable value (key=value, repeatable)")
	cmd.Flags().StringVarP(&opts.valuesFile, "values", "f", "", "YAML file with variable values")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show what would be created without writing files")
	cmd.Flags().BoolVar(&opts.skipCompat, "skip-compat", false, "Skip the template compatibility check")

	return cmd
}

func runNew(cmd *cobra.Command, g *GlobalConfig, opts *newOptions, args []string) error {
	target := "."
	if len(args) > 1 {
		target = args[1]
	}

	values, err := parseValues(opts.valuesFile, opts.sets)
	if err != nil {
		return err
	}

	gen, _, err := g.Generator()
	if err != nil {
		return err
	}

	var res *templates.GenerateResult
	err = output.RunWithSpinner(cmd.Context(), "Generating project...", func(context.Context) error {
		var genErr error
		res, genErr = gen.Generate(templates.GenerateOptions{
			Template:          args[0],
			TargetDir:         target,
			Values:            values,
			Force:             opts.force,
			DryRun:            opts.dryRun,
			SkipCompatibility: opts.skipCompat,
		})
		return genErr
	})
	if err != nil {
		return detailFor(err, args[0], hintFor(err))
	}

	out := cmd.OutOrStdout()
	reportGenerated(out, target, opts.dryRun, res)

	if !res.OK() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, output.FormatFailure(fmt.Sprintf("%d errors while rendering:", len(res.Errors))))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "    - %s\n", e)
		}
		err := oerrors.Wrap(oerrors.ErrRender, fmt.Sprintf("project generated with %d errors", len(res.Errors)))
		return NewExitError(err, ExitRenderError)
	}

	if len(res.Hooks) > 0 && !opts.dryRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Next steps:")
		for _, h := range res.Hooks {
			step := h.Description
			if step == "" {
				step = h.Command
			}
			fmt.Fprintf(out, "  - %s\n", step)
		}
	}
	return nil
}

func reportGenerated(w io.Writer, target string, dryRun bool, res *templates.GenerateResult) {
	verb := "Created"
	if dryRun {
		verb = "Would create"
	}
	fmt.Fprintln(w, output.FormatCheckmark(fmt.Sprintf("%s %d files and %d directories from %s in %s",
		verb, res.FilesCreated, res.DirectoriesCreated, res.Template.Name(), target)))
	if len(res.Files) > 0 {
		fmt.Fprintln(w, output.RenderSimpleTree(filepath.Clean(target), res.Files))
	}
}

func hintFor(err error) string {
	var re *oerrors.ResolutionError
	switch {
	case errors.As(err, &re):
		return "Pass values with --set name=value or --values file.yaml. Run 'projgen vars <template>' to list them."
	case errors.Is(err, oerrors.ErrNotFound):
		return "Run 'projgen list' to see available templates."
	}
	return ""
}
