package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/config"
	"github.com/harshul/brplaunch/internal/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a .brplaunch.yaml file for this directory",
	Long: `The init command scans the current directory for Cargo apps and examples
and writes a .brplaunch.yaml with search roots, default profile and port,
and the log directory. Edit it or override any value with BRPLAUNCH_*
environment variables or command-line flags.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", config.FileName, "Output file path for the configuration")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing configuration file")
	initCmd.Flags().BoolP("interactive", "i", false, "Run in interactive mode with prompts")
}

func runInit(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if !filepath.IsAbs(outputPath) {
		outputPath = filepath.Join(cwd, outputPath)
	}
	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s. Use --force to overwrite", outputPath)
	}

	cfg := *appConfig
	cfg.SearchRoots = []string{"."}

	var targets []cargo.Target
	err = ui.RunWithSpinner(cmd.Context(), "Scanning for Cargo targets...", !interactive, func(context.Context) error {
		targets = (&cargo.Scanner{MaxDepth: cfg.MaxDepth, RequireDependency: cfg.RequireDependency, Logger: logger}).Scan([]string{cwd})
		return nil
	})
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		ui.PrintWarning(fmt.Sprintf("No targets depending on %q found under %s", cfg.RequireDependency, cwd))
	} else {
		ui.PrintSuccess(fmt.Sprintf("Found %d launchable target(s)", len(targets)))
	}

	if interactive && ui.Interactive() {
		roots, err := ui.Ask("Search roots", "Comma separated directories to scan for targets", ".", strings.Join(cfg.SearchRoots, ","))
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		cfg.SearchRoots = splitList(roots)

		release, err := ui.Confirm("Build in release mode by default?", "", cfg.DefaultProfile == "release")
		if err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if release {
			cfg.DefaultProfile = "release"
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Write(outputPath, cfg); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Configuration written to %s", outputPath))
	ui.PrintInfo("Run 'brplaunch list' to see what can be launched")
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
