package launch

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/harshul/brplaunch/internal/cargo"
)

// loadDotEnv reads .env from the workspace root and then the package
// directory; package values override workspace ones. Missing files are fine.
func loadDotEnv(t cargo.Target) (map[string]string, error) {
	dirs := []string{t.WorkspaceRoot}
	if t.ManifestDir() != t.WorkspaceRoot {
		dirs = append(dirs, t.ManifestDir())
	}

	vars := make(map[string]string)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		m, err := godotenv.Read(filepath.Join(dir, ".env"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return vars, err
		}
		for k, v := range m {
			vars[k] = v
		}
	}
	return vars, nil
}
