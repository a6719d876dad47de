// Package cmd provides CLI command implementations.
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/opmodel/projgen/internal/config"
	"github.com/opmodel/projgen/internal/engine"
	oerrors "github.com/opmodel/projgen/internal/errors"
	"github.com/opmodel/projgen/internal/loader"
	"github.com/opmodel/projgen/internal/output"
	"github.com/opmodel/projgen/internal/templates"
	"github.com/opmodel/projgen/internal/version"
)

// skipConfigAnnotation marks commands that must run with a missing or
// invalid configuration file.
const skipConfigAnnotation = "projgen/skip-config"

// GlobalConfig holds CLI-wide state resolved during PersistentPreRunE and
// shared with every sub-command constructor.
type GlobalConfig struct {
	// Config is the loaded and validated configuration.
	Config *config.Config

	// ConfigPath is the resolved --config path.
	ConfigPath string

	Verbose bool
}

// Generator builds the engine, loader and generator for the loaded config.
func (g *GlobalConfig) Generator() (*templates.Generator, *loader.Loader, error) {
	e, err := engine.New(g.Config)
	if err != nil {
		return nil, nil, err
	}
	l, err := loader.New(g.Config)
	if err != nil {
		return nil, nil, err
	}
	return templates.NewGenerator(e, l), l, nil
}

type rootOptions struct {
	config       string
	verbose      bool
	timestamps   bool
	templateDirs []string
}

// NewRootCmd creates the root command for the projgen CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	g := &GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "projgen",
		Short: "Project scaffolding from YAML templates",
		Long: `projgen creates new projects from declarative YAML templates.

Templates declare typed variables, conditional files and directories,
and content with {{ variable | filter }} substitutions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeGlobals(cmd, opts, g)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "Path to config file (env: PROJGEN_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.timestamps, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().StringSliceVarP(&opts.templateDirs, "template-dir", "t", nil, "Additional template directory (repeatable)")

	rootCmd.AddCommand(
		NewListCmd(g),
		NewValidateCmd(g),
		NewNewCmd(g),
		NewVarsCmd(g),
		NewConfigCmd(g),
		NewVersionCmd(),
	)

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging.
func initializeGlobals(cmd *cobra.Command, opts *rootOptions, g *GlobalConfig) error {
	g.Verbose = opts.verbose
	setupLogging(cmd, opts, nil)

	pathResult, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: opts.config,
	})
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	g.ConfigPath = pathResult.ConfigPath
	if expanded, err := config.ExpandPath(g.ConfigPath); err == nil {
		g.ConfigPath = expanded
	}

	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		if cmd.Annotations[skipConfigAnnotation] == "" {
			return err
		}
		output.Debug("ignoring config error", "error", err)
		cfg = config.DefaultConfig().WithDefaults()
	}
	cfg.TemplateDirs = append(cfg.TemplateDirs, opts.templateDirs...)
	g.Config = cfg.WithDefaults()

	setupLogging(cmd, opts, g.Config)

	info := version.Get()
	output.Debug("projgen started",
		"version", info.Version,
		"config", g.ConfigPath,
		"source", pathResult.Source,
		"builtin_dir", g.Config.BuiltinDir,
		"user_dir", g.Config.UserDir,
	)
	return nil
}

// loadConfig reads the config file and checks it against the CUE schema.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadWithDefaults(path)
	if err != nil {
		return nil, &oerrors.DetailError{
			Type:     "invalid configuration",
			Message:  err.Error(),
			Location: path,
			Hint:     "Fix the file or run 'projgen config init --force' to recreate it.",
			Cause:    oerrors.ErrValidation,
		}
	}

	v, err := config.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := v.Validate(cfg); err != nil {
		d := &oerrors.DetailError{
			Type:     "invalid configuration",
			Message:  "configuration does not match the schema",
			Location: path,
			Hint:     "Run 'projgen config vet' for details.",
			Cause:    oerrors.ErrValidation,
		}
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				d.Details = append(d.Details, e.Field+": "+e.Message)
			}
		} else {
			d.Details = []string{err.Error()}
		}
		return nil, d
	}
	return cfg, nil
}

// setupLogging applies precedence flag > config > default for timestamps.
func setupLogging(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	logCfg := output.LogConfig{Verbose: opts.verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(opts.timestamps)
	} else if cfg != nil && cfg.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Log.Timestamps
	}
	output.SetupLogging(logCfg)
}
