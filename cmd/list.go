package main

import (
	"github.com/spf13/cobra"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/ui"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list [apps|examples]",
	Short: "List launchable apps and examples",
	Long: `The list command scans the search roots for Cargo packages and prints
every app binary and example found, with the relative path to pass to
'launch --path' when names collide.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"apps", "examples"},
	RunE:      runList,
}

func init() {
	addRootFlags(listCmd)
	addOutputFlag(listCmd)
}

type targetView struct {
	Name          string           `json:"name" yaml:"name"`
	Kind          cargo.TargetKind `json:"target_type" yaml:"target_type"`
	PackageName   string           `json:"package_name" yaml:"package_name"`
	RelativePath  string           `json:"relative_path" yaml:"relative_path"`
	ManifestPath  string           `json:"manifest_path" yaml:"manifest_path"`
	WorkspaceRoot string           `json:"workspace_root" yaml:"workspace_root"`
}

func runList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}

	var filter *cargo.TargetKind
	if len(args) == 1 {
		kind, err := cargo.ParseTargetKind(args[0])
		if err != nil {
			return err
		}
		filter = &kind
	}

	var targets []cargo.Target
	for _, t := range newScanner(cmd).Scan(cargo.ExistingRoots(searchRoots(cmd))) {
		if filter == nil || t.Kind == *filter {
			targets = append(targets, t)
		}
	}

	if format != ui.FormatText {
		views := make([]targetView, 0, len(targets))
		for _, t := range targets {
			views = append(views, targetView{
				Name:          t.Name,
				Kind:          t.Kind,
				PackageName:   t.PackageName,
				RelativePath:  t.RelativePath,
				ManifestPath:  t.ManifestPath,
				WorkspaceRoot: t.WorkspaceRoot,
			})
		}
		return ui.Encode(cmd.OutOrStdout(), format, views)
	}
	ui.RenderTargets(targets)
	return nil
}
