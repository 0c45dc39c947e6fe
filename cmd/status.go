package main

import (
	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/doctor"
	"github.com/harshul/brplaunch/internal/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show running launched instances",
	Long: `The status command lists live processes that were started with a
BRP_EXTRAS_PORT environment variable, which every brplaunch instance carries.
Processes owned by other users may not be visible.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	addOutputFlag(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	instances, err := doctor.Instances(cmd.Context())
	if err != nil {
		return err
	}
	if format != ui.FormatText {
		if instances == nil {
			instances = []doctor.Instance{}
		}
		return ui.Encode(cmd.OutOrStdout(), format, instances)
	}
	ui.RenderInstances(instances)
	return nil
}
