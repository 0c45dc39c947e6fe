package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/doctor"
	"github.com/harshul/brplaunch/internal/launch"
	"github.com/harshul/brplaunch/internal/ui"
)

// launchCmd groups the per-kind launch commands
var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Build and start an app or example",
	Long: `The launch command resolves a target by name, runs cargo build for it and
starts the requested number of instances as detached processes.

Instance N listens on port base+N-1, passed to it in BRP_EXTRAS_PORT. Each
instance writes its output to its own log file; 'brplaunch logs list' shows them.

If another target has the same name, pass --path with the relative path
shown in the error to choose one.`,
}

var launchAppCmd = &cobra.Command{
	Use:   "app <name>",
	Short: "Build and start an app binary",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch(cargo.KindApp),
}

var launchExampleCmd = &cobra.Command{
	Use:   "example <name>",
	Short: "Build and start an example with cargo run",
	Args:  cobra.ExactArgs(1),
	RunE:  runLaunch(cargo.KindExample),
}

func init() {
	for _, c := range []*cobra.Command{launchAppCmd, launchExampleCmd} {
		c.Flags().String("profile", "", "Build profile: debug or release (default from config)")
		c.Flags().String("path", "", "Relative path of the package when several targets share the name")
		c.Flags().Uint16P("port", "p", 0, "Base port (default from config)")
		c.Flags().IntP("instances", "n", 1, "Number of instances to start on consecutive ports")
		c.Flags().StringSlice("features", nil, "Cargo features to enable (comma separated)")
		c.Flags().Bool("no-tui", false, "Disable the spinner and interactive prompts")
		addRootFlags(c)
		addOutputFlag(c)
		launchCmd.AddCommand(c)
	}
}

func runLaunch(kind cargo.TargetKind) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd)
		if err != nil {
			return err
		}

		cfg := launch.NewConfig(args[0], kind)
		cfg.Profile = appConfig.DefaultProfile
		cfg.Port = appConfig.DefaultPort
		if v, _ := cmd.Flags().GetString("profile"); v != "" {
			cfg.Profile = v
		}
		if cmd.Flags().Changed("port") {
			cfg.Port, _ = cmd.Flags().GetUint16("port")
		}
		cfg.Path, _ = cmd.Flags().GetString("path")
		cfg.InstanceCount, _ = cmd.Flags().GetInt("instances")
		cfg.Features, _ = cmd.Flags().GetStringSlice("features")
		noTUI, _ := cmd.Flags().GetBool("no-tui")

		roots := cargo.ExistingRoots(searchRoots(cmd))
		if len(roots) == 0 {
			return fmt.Errorf("none of the search roots exist: %s", strings.Join(searchRoots(cmd), ", "))
		}

		launcher := newLauncher(cmd)
		interactive := format == ui.FormatText && !noTUI && ui.Interactive()

		var result *launch.Result
		run := func(ctx context.Context) error {
			var err error
			result, err = launcher.Launch(ctx, cfg, roots)
			return err
		}
		title := fmt.Sprintf("Building and launching %s '%s' (%s)", kind, cfg.TargetName, cfg.Profile)

		if format == ui.FormatText {
			err = ui.RunWithSpinner(cmd.Context(), title, !interactive, run)
		} else {
			err = run(cmd.Context())
		}

		if le, ok := launch.AsError(err); ok && interactive && le.Code == launch.CodePathDisambiguation {
			path, chosen, perr := choosePath(le)
			if perr != nil {
				return perr
			}
			if chosen {
				cfg.Path = path
				err = ui.RunWithSpinner(cmd.Context(), title, false, run)
			}
		}

		if err != nil {
			if format != ui.FormatText {
				if encErr := ui.Encode(cmd.OutOrStdout(), format, ui.NewErrorDocument(err)); encErr != nil {
					return encErr
				}
				return errReported
			}
			return err
		}

		logger.Debug("launch complete", "launch_id", result.LaunchID, "ports", result.Ports())
		if format != ui.FormatText {
			return ui.Encode(cmd.OutOrStdout(), format, result)
		}
		ui.RenderResult(result)
		for _, in := range result.Instances {
			if !doctor.IsAlive(in.PID) {
				ui.PrintWarning(fmt.Sprintf("Instance on port %d exited right away, see %s", in.Port, in.LogFile))
			}
		}
		return nil
	}
}

// choosePath lets the user pick one of several same-named targets.
func choosePath(le *launch.Error) (string, bool, error) {
	options := make([]ui.SelectOption, 0, len(le.AvailablePaths))
	for _, p := range le.AvailablePaths {
		options = append(options, ui.SelectOption{Label: p, Value: p})
	}
	choice, ok, err := ui.Choose(
		fmt.Sprintf("Several %s are named '%s'", le.TargetKind.Plural(), le.TargetName),
		"Pick the package to launch (pass --path to skip this prompt)",
		options,
	)
	if err != nil || !ok {
		return "", false, err
	}
	return choice.Value, true, nil
}
