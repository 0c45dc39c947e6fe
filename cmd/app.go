package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/launch"
	"github.com/harshul/brplaunch/internal/ui"
)

// addRootFlags registers the flags shared by commands that scan for targets.
func addRootFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("root", nil, "Search root (repeatable, default from config)")
	cmd.Flags().Bool("all", false, "Include packages that do not depend on the configured crate")
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", ui.FormatText, "Output format: text, json or yaml")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("output")
	if !ui.ValidFormat(format) {
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", format)
	}
	return format, nil
}

func searchRoots(cmd *cobra.Command) []string {
	if roots, _ := cmd.Flags().GetStringArray("root"); len(roots) > 0 {
		return roots
	}
	return appConfig.SearchRoots
}

func newScanner(cmd *cobra.Command) *cargo.Scanner {
	dep := appConfig.RequireDependency
	if all, _ := cmd.Flags().GetBool("all"); all {
		dep = ""
	}
	return &cargo.Scanner{
		MaxDepth:          appConfig.MaxDepth,
		RequireDependency: dep,
		Logger:            logger,
	}
}

func newLauncher(cmd *cobra.Command) *launch.Launcher {
	return &launch.Launcher{
		Finder: newScanner(cmd),
		Builder: &cargo.Builder{
			Runner:  cargo.ExecRunner{},
			Logger:  logger,
			Timeout: appConfig.BuildTimeout,
		},
		LogDir: appConfig.LogDir,
		Logger: logger,
		DotEnv: appConfig.LoadDotEnv,
	}
}
