package cargo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is the build definition file name cargo looks for.
const ManifestFile = "Cargo.toml"

// Manifest holds the parts of a Cargo.toml the scanner cares about.
type Manifest struct {
	Package         *PackageSection `toml:"package"`
	Workspace       *WorkspaceTable `toml:"workspace"`
	Bins            []TargetSection `toml:"bin"`
	Examples        []TargetSection `toml:"example"`
	Dependencies    map[string]any  `toml:"dependencies"`
	DevDependencies map[string]any  `toml:"dev-dependencies"`
}

type PackageSection struct {
	Name    string `toml:"name"`
	Version any    `toml:"version"`
}

type WorkspaceTable struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
}

// TargetSection is a [[bin]] or [[example]] entry.
type TargetSection struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// ReadManifest parses the Cargo.toml at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// HasDependency reports whether name appears in [dependencies], or in
// [dev-dependencies] when includeDev is set.
func (m *Manifest) HasDependency(name string, includeDev bool) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	if includeDev {
		if _, ok := m.DevDependencies[name]; ok {
			return true
		}
	}
	return false
}

// Apps lists binary target names following cargo's auto-discovery rules.
func (m *Manifest) Apps(dir string) []string {
	var names []string
	for _, b := range m.Bins {
		if b.Name != "" {
			names = append(names, b.Name)
		}
	}
	if m.Package != nil && fileExists(filepath.Join(dir, "src", "main.rs")) {
		names = append(names, m.Package.Name)
	}
	names = append(names, autoTargets(filepath.Join(dir, "src", "bin"))...)
	return unique(names)
}

// ExampleNames lists example target names, explicit entries first.
func (m *Manifest) ExampleNames(dir string) []string {
	var names []string
	for _, e := range m.Examples {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	names = append(names, autoTargets(filepath.Join(dir, "examples"))...)
	return unique(names)
}

// autoTargets finds <dir>/<x>.rs and <dir>/<x>/main.rs targets.
func autoTargets(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if fileExists(filepath.Join(dir, name, "main.rs")) {
				names = append(names, name)
			}
			continue
		}
		if strings.HasSuffix(name, ".rs") {
			names = append(names, strings.TrimSuffix(name, ".rs"))
		}
	}
	return names
}

func unique(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
