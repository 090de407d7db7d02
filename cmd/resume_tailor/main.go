// Package main provides the resume_tailor CLI and HTTP API server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds state shared by every subcommand
type app struct {
	configPath string
	debug      bool
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:           "resume_tailor",
		Short:         "Résumé diff and tailoring pipeline",
		Long:          "resume_tailor compares résumé versions, flags risky edits and rewrites résumé items for a job with an LLM, from the command line or over a REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Path to a YAML config file (default ./resume-tailor.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "Write logs as JSON")

	root.AddCommand(
		newServeCmd(a),
		newDiffCmd(a),
		newAnalyzeCmd(a),
		newRegenerateCmd(a),
		newCleanJobCmd(a),
	)
	return root
}

func (a *app) init() error {
	v := viper.New()
	cfg, err := config.Load(v, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(a.jsonLogs || cfg.Log.JSON, a.debug || cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
