package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/pensum/pkg/config"
	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/loader"
	"github.com/vanderheijden86/pensum/pkg/model"
	"github.com/vanderheijden86/pensum/pkg/ui"
	"github.com/vanderheijden86/pensum/pkg/view"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pensum",
		Short: "Curriculum prerequisite graph viewer",
		Long: `pensum lays a curriculum out in semester columns and highlights, for the
subject under the cursor, every prerequisite it needs and every subject it
unlocks.

Without a subcommand it opens the terminal board.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runBoard,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("debug-log")
			if path == "" {
				return nil
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open debug log: %w", err)
			}
			debug.SetOutput(f)
			debug.Log("pensum %s %v", cmd.Name(), os.Args[1:])
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("file", "f", "", "Curriculum file (JSON or YAML); defaults to $"+loader.FileEnvVar+" or ./curriculum.json")
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().Bool("lenient", false, "Report validation errors as warnings instead of failing")
	rootCmd.PersistentFlags().String("debug-log", "", "Append trace lines to this file (stderr with $"+debug.EnvVar+")")

	rootCmd.AddCommand(
		newCheckCmd(),
		newShowCmd(),
		newRelatedCmd(),
		newExportCmd(),
		newServeCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// env is everything a command needs after flags and config are resolved.
type env struct {
	cfg        config.Config
	path       string
	parse      loader.ParseOptions
	curriculum *model.Curriculum
}

func (e *env) viewConfig() view.Config {
	return e.cfg.ViewConfig()
}

// loadConfig resolves --config, falling back to the XDG path.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveEnv resolves config and flags without loading the curriculum. Flags
// win over config; config wins over discovery in the working directory.
func resolveEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = cfg.Curriculum.File
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = loader.FindCurriculumPath(wd); err != nil {
			return nil, err
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	lenient, _ := cmd.Flags().GetBool("lenient")
	return &env{
		cfg:  cfg,
		path: path,
		parse: loader.ParseOptions{
			Strict:         !(lenient || cfg.Curriculum.Lenient),
			WarningHandler: warningPrinter(cmd.ErrOrStderr()),
		},
	}, nil
}

// loadEnv resolves the environment and loads the curriculum.
func loadEnv(cmd *cobra.Command) (*env, error) {
	e, err := resolveEnv(cmd)
	if err != nil {
		return nil, err
	}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *env) load() error {
	debug.Log("loading %s (strict=%v)", e.path, e.parse.Strict)
	c, err := loader.LoadCurriculum(e.path, e.parse)
	if err != nil {
		return err
	}
	e.curriculum = c
	return nil
}

func warningPrinter(w io.Writer) func(string) {
	return func(msg string) {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

func runBoard(cmd *cobra.Command, args []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	last, err := ui.Run(ctx, e.curriculum, ui.RunOptions{
		Options: ui.Options{
			View:           e.viewConfig(),
			ColumnWidth:    e.cfg.UI.ColumnWidth,
			InitialSubject: config.LoadLastHovered(),
		},
		Path:  e.path,
		Watch: e.cfg.UI.Watch,
		Parse: e.parse,
	})
	if err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	if err := config.SaveLastHovered(last); err != nil {
		debug.Log("save last hovered: %v", err)
	}
	return nil
}
