package ui

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/harshul/brplaunch/internal/cargo"
	"github.com/harshul/brplaunch/internal/doctor"
	"github.com/harshul/brplaunch/internal/launch"
)

// RenderResult prints a launch summary.
func RenderResult(r *launch.Result) {
	PrintSuccess(r.Message)
	PrintHighlight("Target", fmt.Sprintf("%s (%s)", r.TargetName, r.TargetKind))
	PrintHighlight("Profile", r.Profile)
	PrintHighlight("Build", r.BuildState)
	PrintHighlight("Working directory", r.WorkingDirectory)
	if r.BinaryPath != "" {
		PrintHighlight("Binary", r.BinaryPath)
	}
	if r.PackageName != "" {
		PrintHighlight("Package", r.PackageName)
	}
	if r.Workspace != "" {
		PrintHighlight("Workspace", r.Workspace)
	}
	PrintHighlight("Launched in", fmt.Sprintf("%dms", r.LaunchDurationMs))
	PrintHighlight("Launch ID", r.LaunchID)

	fmt.Fprintln(Out)
	for _, in := range r.Instances {
		fmt.Fprintf(Out, "  %s %s %s\n",
			valueStyle.Render(fmt.Sprintf("port %d", in.Port)),
			labelStyle.Render(fmt.Sprintf("pid %-7d", in.PID)),
			dimStyle.Render(in.LogFile))
	}
	if len(r.DuplicatePaths) > 0 {
		fmt.Fprintln(Out)
		PrintInfo(fmt.Sprintf("%d targets share this name:", len(r.DuplicatePaths)))
		PrintList(r.DuplicatePaths)
	}
}

// RenderError prints err with any remediation data it carries.
func RenderError(err error) {
	le, ok := launch.AsError(err)
	if !ok {
		PrintError(err.Error())
		return
	}

	switch le.Code {
	case launch.CodePathDisambiguation:
		PrintError(fmt.Sprintf("Found %d %s named '%s'", len(le.AvailablePaths), le.TargetKind.Plural(), le.TargetName))
		PrintInfo("Specify one with --path:")
		PrintList(le.AvailablePaths)
		return
	case launch.CodeTargetNotFoundAtPath:
		if le.Path != "" {
			PrintError(fmt.Sprintf("No %s '%s' at path '%s'", le.TargetKind, le.TargetName, le.Path))
		} else {
			PrintError(fmt.Sprintf("%s '%s' needs a path", le.TargetKind, le.TargetName))
		}
		PrintInfo("Available paths:")
		PrintList(le.AvailablePaths)
		return
	case launch.CodeNoTargetsFound:
		PrintError(fmt.Sprintf("No %s named '%s' found", le.TargetKind, le.TargetName))
		if le.Suggestion != "" {
			PrintInfo(le.Suggestion)
		}
		return
	}

	PrintError(le.Message)
	var be *cargo.BuildError
	switch {
	case errors.As(le.Cause, &be) && strings.TrimSpace(be.Stderr) != "":
		PrintBox("cargo output", tailLines(be.Stderr, buildOutputLines))
	case le.Cause != nil && le.Cause.Error() != le.Message:
		fmt.Fprintln(Out, dimStyle.Render(indent(le.Cause.Error())))
	}
	for _, k := range sortedKeys(le.Context) {
		PrintHighlight(k, fmt.Sprint(le.Context[k]))
	}
	if le.Suggestion != "" {
		PrintInfo(le.Suggestion)
	}
}

// RenderTargets prints a table of discovered targets.
func RenderTargets(targets []cargo.Target) {
	if len(targets) == 0 {
		PrintWarning("No targets found")
		return
	}
	width := 0
	for _, t := range targets {
		width = max(width, len(t.Name))
	}
	for _, t := range targets {
		fmt.Fprintf(Out, "  %-8s %s  %s\n",
			labelStyle.Render(t.Kind.String()),
			valueStyle.Render(fmt.Sprintf("%-*s", width, t.Name)),
			dimStyle.Render(t.RelativePath+" ("+t.PackageName+")"))
	}
}

// RenderLogs prints instance logs, newest first.
func RenderLogs(logs []launch.LogEntry) {
	if len(logs) == 0 {
		PrintInfo("No launch logs")
		return
	}
	for _, l := range logs {
		fmt.Fprintf(Out, "  %s %s %s\n",
			valueStyle.Render(l.Name),
			labelStyle.Render(humanSize(l.Size)),
			dimStyle.Render(l.ModTime.Format("2006-01-02 15:04:05")))
	}
}

// RenderDiagnosis prints doctor results.
func RenderDiagnosis(d doctor.Diagnosis) {
	PrintHeader("brplaunch doctor")
	for _, t := range d.Tools {
		if t.Installed {
			PrintSuccess(fmt.Sprintf("%s: %s", t.Name, t.Version))
			if t.Path != "" {
				PrintHighlight("path", t.Path)
			}
		} else {
			PrintError(fmt.Sprintf("%s: not installed", t.Name))
		}
	}
	if d.Host.OS != "" {
		PrintHighlight("Host", fmt.Sprintf("%s/%s, %d CPUs, %s memory", d.Host.OS, d.Host.Arch, d.Host.CPUs, humanSize(int64(d.Host.MemoryTotal))))
	}
	PrintHighlight("Search roots", strings.Join(d.SearchRoots, ", "))
	PrintHighlight("Log directory", d.LogDir)

	PrintDivider()
	if d.Healthy {
		PrintSuccess("Everything looks good")
		return
	}
	for _, issue := range d.Issues {
		PrintWarning(issue)
	}
}

// RenderInstances prints running launched processes.
func RenderInstances(instances []doctor.Instance) {
	if len(instances) == 0 {
		PrintInfo("No launched instances are running")
		return
	}
	for _, in := range instances {
		fmt.Fprintf(Out, "  %s %s %s %s\n",
			valueStyle.Render("port "+strconv.Itoa(int(in.Port))),
			labelStyle.Render(fmt.Sprintf("pid %-7d", in.PID)),
			in.Name,
			dimStyle.Render(in.Status))
	}
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}

// buildOutputLines caps how much compiler output an error shows.
const buildOutputLines = 20

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}

// humanSize formats a byte count.
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
