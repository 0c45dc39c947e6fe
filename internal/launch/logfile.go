package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harshul/brplaunch/internal/cargo"
)

const logPrefix = "brplaunch_"

// DefaultLogDir is where instance logs go when no directory is configured.
func DefaultLogDir() string {
	return filepath.Join(os.TempDir(), "brplaunch")
}

// LogFileName returns the deterministic log name for one instance.
func LogFileName(kind cargo.TargetKind, name, profile string, port uint16) string {
	return fmt.Sprintf("%s%s_%s_%s_port%d.log", logPrefix, kind, name, profile, port)
}

type logHeader struct {
	LaunchID string
	Target   cargo.Target
	Profile  string
	Command  string
	Dir      string
	Port     uint16
	Extra    string
}

// createLogFile truncates (or creates) the instance log, writes the header
// and returns the file opened for the child's output.
func createLogFile(dir string, h logHeader) (string, *os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create log directory: %w", err)
	}
	path := filepath.Join(dir, LogFileName(h.Target.Kind, h.Target.Name, h.Profile, h.Port))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("create log file: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== brplaunch %s ===\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Launch: %s\n", h.LaunchID)
	fmt.Fprintf(&b, "Target: %s (%s)\n", h.Target.Name, h.Target.Kind)
	fmt.Fprintf(&b, "Profile: %s\n", h.Profile)
	fmt.Fprintf(&b, "Command: %s\n", h.Command)
	fmt.Fprintf(&b, "Working directory: %s\n", h.Dir)
	fmt.Fprintf(&b, "Port: %d\n", h.Port)
	if h.Extra != "" {
		b.WriteString(h.Extra)
		b.WriteByte('\n')
	}
	b.WriteString("\n")
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return "", nil, fmt.Errorf("write log header: %w", err)
	}
	return path, f, nil
}

// LogEntry describes one instance log on disk.
type LogEntry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modified" yaml:"modified"`
	Kind    string    `json:"target_type" yaml:"target_type"`
	Target  string    `json:"target_name" yaml:"target_name"`
	Profile string    `json:"profile" yaml:"profile"`
	Port    int       `json:"port" yaml:"port"`
}

var logNamePattern = regexp.MustCompile(`^brplaunch_(app|example)_(.+)_(debug|release)_port(\d+)\.log$`)

// parseLogName splits a log file name into its parts.
func parseLogName(name string) (LogEntry, bool) {
	m := logNamePattern.FindStringSubmatch(name)
	if m == nil {
		return LogEntry{}, false
	}
	port, err := strconv.Atoi(m[4])
	if err != nil {
		return LogEntry{}, false
	}
	return LogEntry{Name: name, Kind: m[1], Target: m[2], Profile: m[3], Port: port}, true
}

// ListLogs returns the instance logs in dir, newest first. A non-empty
// filter keeps only logs whose target name contains it.
func ListLogs(dir, filter string) ([]LogEntry, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log directory: %w", err)
	}

	var logs []LogEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		le, ok := parseLogName(e.Name())
		if !ok || (filter != "" && !strings.Contains(le.Target, filter)) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		le.Path = filepath.Join(dir, e.Name())
		le.Size = info.Size()
		le.ModTime = info.ModTime()
		logs = append(logs, le)
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].ModTime.After(logs[j].ModTime) })
	return logs, nil
}

// CleanupLogs deletes instance logs older than olderThan (all of them when
// olderThan is zero) and returns what was removed.
func CleanupLogs(dir, filter string, olderThan time.Duration) ([]LogEntry, error) {
	logs, err := ListLogs(dir, filter)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-olderThan)
	var removed []LogEntry
	for _, le := range logs {
		if olderThan > 0 && le.ModTime.After(cutoff) {
			continue
		}
		if err := os.Remove(le.Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", le.Name, err)
		}
		removed = append(removed, le)
	}
	return removed, nil
}
