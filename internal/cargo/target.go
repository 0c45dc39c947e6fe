package cargo

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// TargetKind distinguishes the two launchable artifact kinds of a Cargo package.
type TargetKind int

const (
	KindApp TargetKind = iota
	KindExample
)

// String returns the lowercase name used in logs, file names and errors.
func (k TargetKind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindExample:
		return "example"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Plural returns the plural form used in user-facing messages.
func (k TargetKind) Plural() string {
	return k.String() + "s"
}

// CargoFlag returns the cargo target selection flag for this kind.
func (k TargetKind) CargoFlag() string {
	if k == KindExample {
		return "--example"
	}
	return "--bin"
}

// MarshalText lets the kind render as "app"/"example" in JSON and YAML output.
func (k TargetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseTargetKind accepts "app", "apps", "bin", "example" and "examples".
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "app", "apps", "bin", "binary":
		return KindApp, nil
	case "example", "examples":
		return KindExample, nil
	}
	return KindApp, fmt.Errorf("unknown target kind %q (expected app or example)", s)
}

// Target describes a discovered app binary or example.
type Target struct {
	Name          string
	Kind          TargetKind
	ManifestPath  string
	WorkspaceRoot string
	PackageName   string
	// RelativePath is the manifest directory relative to the search root the
	// target was found under, slash separated. "." for the root itself.
	RelativePath string
}

// ManifestDir is the directory holding the package's Cargo.toml.
func (t Target) ManifestDir() string {
	return filepath.Dir(t.ManifestPath)
}

// BinaryPath returns where cargo places the built binary for the given profile.
func (t Target) BinaryPath(profile string) string {
	name := t.Name
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	if t.Kind == KindExample {
		return filepath.Join(t.WorkspaceRoot, "target", profile, "examples", name)
	}
	return filepath.Join(t.WorkspaceRoot, "target", profile, name)
}

// WorkspaceName is the base name of the workspace root directory.
func (t Target) WorkspaceName() string {
	return filepath.Base(t.WorkspaceRoot)
}
