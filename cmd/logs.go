package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/launch"
	"github.com/harshul/brplaunch/internal/ui"
)

// logsCmd groups instance log management
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect and clean up instance log files",
}

var logsListCmd = &cobra.Command{
	Use:   "list [filter]",
	Short: "List instance logs, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogsList,
}

var logsViewCmd = &cobra.Command{
	Use:   "view <log>",
	Short: "Show an instance log",
	Long: `The view command opens an instance log in a pager. <log> is a file name
from 'logs list', a path, or a target name, in which case its newest log
is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogsView,
}

var logsCleanCmd = &cobra.Command{
	Use:   "clean [filter]",
	Short: "Delete instance logs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogsClean,
}

func init() {
	addOutputFlag(logsListCmd)
	logsViewCmd.Flags().BoolP("follow", "f", false, "Keep reloading the log while it grows")
	logsViewCmd.Flags().Bool("no-tui", false, "Print the log instead of opening a pager")
	logsCleanCmd.Flags().Duration("older-than", 0, "Only delete logs not modified within this duration")
	logsCleanCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	logsCmd.AddCommand(logsListCmd, logsViewCmd, logsCleanCmd)
}

func filterArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

func runLogsList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	logs, err := launch.ListLogs(appConfig.LogDir, filterArg(args))
	if err != nil {
		return err
	}
	if format != ui.FormatText {
		if logs == nil {
			logs = []launch.LogEntry{}
		}
		return ui.Encode(cmd.OutOrStdout(), format, logs)
	}
	ui.RenderLogs(logs)
	return nil
}

func runLogsView(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	noTUI, _ := cmd.Flags().GetBool("no-tui")

	path, err := findLog(args[0])
	if err != nil {
		return err
	}
	return ui.ViewLog(path, follow, noTUI)
}

// findLog resolves a path, a log file name, or a target name to a log file.
func findLog(ref string) (string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return ref, nil
	}
	if p := filepath.Join(appConfig.LogDir, ref); fileExists(p) {
		return p, nil
	}
	logs, err := launch.ListLogs(appConfig.LogDir, "")
	if err != nil {
		return "", err
	}
	for _, l := range logs {
		if l.Target == ref {
			return l.Path, nil
		}
	}
	return "", fmt.Errorf("no log found for %q in %s", ref, appConfig.LogDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func runLogsClean(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("older-than")
	yes, _ := cmd.Flags().GetBool("yes")

	if !yes && ui.Interactive() {
		logs, err := launch.ListLogs(appConfig.LogDir, filterArg(args))
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			ui.PrintInfo("No launch logs")
			return nil
		}
		question := fmt.Sprintf("Delete launch logs in %s?", appConfig.LogDir)
		if olderThan > 0 {
			question = fmt.Sprintf("Delete launch logs older than %s?", olderThan)
		}
		ok, err := ui.Confirm(question, fmt.Sprintf("%d log file(s) match", len(logs)), false)
		if err != nil {
			return err
		}
		if !ok {
			ui.PrintInfo("Nothing deleted")
			return nil
		}
	}

	removed, err := launch.CleanupLogs(appConfig.LogDir, filterArg(args), olderThan)
	if err != nil {
		return err
	}
	var freed int64
	for _, l := range removed {
		freed += l.Size
	}
	ui.PrintSuccess(fmt.Sprintf("Deleted %d log file(s) (%d bytes)", len(removed), freed))
	return nil
}
