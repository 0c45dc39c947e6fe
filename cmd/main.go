package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/config"
	"github.com/harshul/brplaunch/internal/ui"
)

// Version information (can be set at build time)
var (
	version = "0.1.0"
)

// errReported marks an error that a command already printed.
var errReported = errors.New("error already reported")

var (
	appConfig *config.Config
	logger    *log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brplaunch",
	Short: "Build and launch Bevy apps and examples on remote-control ports",
	Long: `brplaunch finds Cargo apps and examples by name, builds them with cargo,
and starts one or more detached instances, each on its own port passed in
BRP_EXTRAS_PORT and with its output captured in a log file.

Usage:
  brplaunch list                  Show launchable apps and examples
  brplaunch launch app <name>     Build and start an app binary
  brplaunch launch example <name> Build and start an example
  brplaunch logs list             Show instance log files
  brplaunch status                Show running instances`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default .brplaunch.yaml in the working directory or $HOME)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(initCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	ui.Out = cmd.OutOrStdout()

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "brplaunch"})
	logger.SetLevel(log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
	}
	log.SetDefault(logger)

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	appConfig = cfg
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			ui.Out = os.Stderr
			ui.RenderError(err)
		}
		os.Exit(1)
	}
}
