package main

import (
	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/doctor"
	"github.com/harshul/brplaunch/internal/ui"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the Rust toolchain and brplaunch setup",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().StringArray("root", nil, "Search root to check (repeatable, default from config)")
	addOutputFlag(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	d := doctor.Diagnose(searchRoots(cmd), appConfig.LogDir)
	if format != ui.FormatText {
		if err := ui.Encode(cmd.OutOrStdout(), format, d); err != nil {
			return err
		}
	} else {
		ui.RenderDiagnosis(d)
	}
	if !d.Healthy {
		return errReported
	}
	return nil
}
