package cargo

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultMaxDepth bounds how far below a search root the scanner descends.
const DefaultMaxDepth = 4

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"target":       true,
	"node_modules": true,
}

// Scanner walks search roots and discovers launchable targets. It keeps no
// state between calls, so every scan reflects the current filesystem.
type Scanner struct {
	// MaxDepth limits directory depth below each root; 0 means DefaultMaxDepth.
	MaxDepth int
	// RequireDependency skips packages that do not depend on this crate.
	// Empty disables the filter.
	RequireDependency string
	Logger            *log.Logger
}

func (s *Scanner) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// Scan returns every app and example found under roots, sorted by relative path.
func (s *Scanner) Scan(roots []string) []Target {
	seen := make(map[string]bool)
	workspaces := make(map[string]string)
	var targets []Target

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			s.logger().Debug("skipping search root", "root", root, "err", err)
			continue
		}
		for _, t := range s.scanRoot(abs, workspaces) {
			key := t.Kind.String() + "\x00" + t.Name + "\x00" + t.ManifestPath
			if seen[key] {
				continue
			}
			seen[key] = true
			targets = append(targets, t)
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].RelativePath != targets[j].RelativePath {
			return targets[i].RelativePath < targets[j].RelativePath
		}
		if targets[i].Kind != targets[j].Kind {
			return targets[i].Kind < targets[j].Kind
		}
		return targets[i].Name < targets[j].Name
	})
	return targets
}

// FindByName returns all targets of the given kind whose name matches.
func (s *Scanner) FindByName(name string, kind TargetKind, roots []string) []Target {
	var matches []Target
	for _, t := range s.Scan(roots) {
		if t.Kind == kind && t.Name == name {
			matches = append(matches, t)
		}
	}
	return matches
}

func (s *Scanner) scanRoot(root string, workspaces map[string]string) []Target {
	maxDepth := s.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var targets []Target
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
			return fs.SkipDir
		}
		if depth(root, path) > maxDepth {
			return fs.SkipDir
		}

		manifestPath := filepath.Join(path, ManifestFile)
		if !fileExists(manifestPath) {
			return nil
		}
		m, err := ReadManifest(manifestPath)
		if err != nil {
			s.logger().Debug("ignoring unreadable manifest", "path", manifestPath, "err", err)
			return nil
		}
		if m.Package == nil || m.Package.Name == "" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		base := Target{
			ManifestPath:  manifestPath,
			WorkspaceRoot: findWorkspaceRoot(path, workspaces),
			PackageName:   m.Package.Name,
			RelativePath:  filepath.ToSlash(rel),
		}

		dep := s.RequireDependency
		if dep == "" || m.HasDependency(dep, false) {
			for _, app := range m.Apps(path) {
				t := base
				t.Name, t.Kind = app, KindApp
				targets = append(targets, t)
			}
		}
		if dep == "" || m.HasDependency(dep, true) {
			for _, ex := range m.ExampleNames(path) {
				t := base
				t.Name, t.Kind = ex, KindExample
				targets = append(targets, t)
			}
		}
		return nil
	})
	if err != nil {
		s.logger().Debug("search root not scanned", "root", root, "err", err)
	}
	return targets
}

// findWorkspaceRoot returns the nearest directory at or above dir whose
// manifest declares [workspace], or dir itself when there is none.
func findWorkspaceRoot(dir string, cache map[string]string) string {
	if root, ok := cache[dir]; ok {
		return root
	}
	root := dir
	for cur := dir; ; {
		if m, err := ReadManifest(filepath.Join(cur, ManifestFile)); err == nil && m.Workspace != nil {
			root = cur
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	cache[dir] = root
	return root
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// dirExists is used by callers validating search roots.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ExistingRoots filters roots down to directories that exist.
func ExistingRoots(roots []string) []string {
	var out []string
	for _, r := range roots {
		if dirExists(r) {
			out = append(out, r)
		}
	}
	return out
}
