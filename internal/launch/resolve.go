package launch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/harshul/brplaunch/internal/cargo"
)

// Finder is the part of the scanner the resolver needs.
type Finder interface {
	FindByName(name string, kind cargo.TargetKind, roots []string) []cargo.Target
}

// Resolve picks exactly one target for cfg. All candidates are collected
// first; when more than one exists their relative paths are returned as
// duplicatePaths whether or not resolution succeeds.
func Resolve(f Finder, cfg Config, roots []string) (cargo.Target, []string, error) {
	candidates := f.FindByName(cfg.TargetName, cfg.Kind, roots)

	var duplicatePaths []string
	if len(candidates) > 1 {
		duplicatePaths = relativePaths(candidates)
	}

	if t, ok := match(candidates, cfg.Path); ok {
		return t, duplicatePaths, nil
	}

	if duplicatePaths != nil {
		e := newError(CodePathDisambiguation, cfg, "")
		e.AvailablePaths = duplicatePaths
		return cargo.Target{}, duplicatePaths, e
	}

	switch len(candidates) {
	case 0:
		return cargo.Target{}, nil, newError(CodeNoTargetsFound, cfg, "").
			WithSuggestion(fmt.Sprintf("run 'brplaunch list %s' to see what is available", cfg.Kind.Plural()))
	case 1:
		e := newError(CodeTargetNotFoundAtPath, cfg, "")
		e.AvailablePaths = relativePaths(candidates)
		return cargo.Target{}, nil, e
	}
	return cargo.Target{}, duplicatePaths, newError(CodeInternal, cfg,
		fmt.Sprintf("could not resolve %s '%s'", cfg.Kind, cfg.TargetName)).
		withConfig(cfg).
		WithContext("duplicate_paths", duplicatePaths)
}

// match applies the path hint. Without a hint only a single candidate matches.
func match(candidates []cargo.Target, hint string) (cargo.Target, bool) {
	if hint == "" {
		if len(candidates) == 1 {
			return candidates[0], true
		}
		return cargo.Target{}, false
	}

	want := normalizeHint(hint)
	for _, c := range candidates {
		if c.RelativePath == want {
			return c, true
		}
		if filepath.IsAbs(hint) && filepath.Clean(hint) == c.ManifestDir() {
			return c, true
		}
	}
	return cargo.Target{}, false
}

func normalizeHint(hint string) string {
	h := path.Clean(filepath.ToSlash(hint))
	h = strings.TrimPrefix(h, "./")
	h = strings.TrimSuffix(h, "/"+cargo.ManifestFile)
	if h == cargo.ManifestFile {
		return "."
	}
	return h
}

func relativePaths(targets []cargo.Target) []string {
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, t.RelativePath)
	}
	return out
}
