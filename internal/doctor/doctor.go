package doctor

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ToolStatus represents the status of a toolchain check
type ToolStatus struct {
	Name      string `json:"name" yaml:"name"`
	Installed bool   `json:"installed" yaml:"installed"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Hint      string `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// Diagnosis contains the full health check results
type Diagnosis struct {
	Host        HostInfo     `json:"host" yaml:"host"`
	Tools       []ToolStatus `json:"tools" yaml:"tools"`
	SearchRoots []string     `json:"search_roots" yaml:"search_roots"`
	LogDir      string       `json:"log_dir" yaml:"log_dir"`
	Healthy     bool         `json:"healthy" yaml:"healthy"`
	Issues      []string     `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// versionFunc runs "<tool> --version"; swapped in tests.
var versionFunc = func(tool string) (string, error) {
	out, err := exec.Command(tool, "--version").Output()
	return strings.TrimSpace(string(out)), err
}

var lookPath = exec.LookPath

const rustupHint = "install Rust with rustup: https://rustup.rs"

// Diagnose checks that cargo and rustc are usable, that the search roots
// exist and that logDir can be written.
func Diagnose(roots []string, logDir string) Diagnosis {
	d := Diagnosis{Host: Host(), SearchRoots: roots, LogDir: logDir, Healthy: true}

	for _, tool := range []string{"cargo", "rustc"} {
		status := checkTool(tool)
		d.Tools = append(d.Tools, status)
		if !status.Installed {
			d.Healthy = false
			d.Issues = append(d.Issues, tool+" is not installed ("+status.Hint+")")
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			d.Healthy = false
			d.Issues = append(d.Issues, "search root "+root+" is not a directory")
		}
	}

	if err := checkWritable(logDir); err != nil {
		d.Healthy = false
		d.Issues = append(d.Issues, "log directory "+logDir+" is not writable: "+err.Error())
	}
	return d
}

func checkTool(name string) ToolStatus {
	status := ToolStatus{Name: name}

	version, err := versionFunc(name)
	if err == nil {
		status.Installed = true
		status.Version = version
	} else {
		status.Hint = rustupHint
	}

	if path, err := lookPath(name); err == nil {
		status.Path = path
	}
	return status
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
