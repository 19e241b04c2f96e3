// Package provision implements the idempotent stages that prepare
// filesystem state and configuration before the stack starts, and the
// pipeline that sequences them with orchestration, readiness, and
// dataset acquisition.
package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/maestria-datos/datalab/internal/logger"
	"github.com/maestria-datos/datalab/pkg/stack"
)

// EnsureDirectories creates every directory in dirs under root,
// parents included. Existing directories are left untouched and
// reported as such; repeated runs are no-ops. Only real filesystem
// failures (permissions, disk full) return an error, which aborts the
// whole pipeline.
func EnsureDirectories(root string, dirs []stack.Directory) error {
	for _, d := range dirs {
		path := filepath.Join(root, d.Path)

		if info, err := os.Stat(path); err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s exists but is not a directory", path)
			}
			logger.Info("directory already exists", "path", d.Path)
			continue
		}

		if err := os.MkdirAll(path, d.Mode); err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		logger.Info("directory created", "path", d.Path)
	}

	// The containers write into these as non-root users.
	for _, rootDir := range stack.PermissionRoots() {
		path := filepath.Join(root, rootDir)
		if err := os.Chmod(path, 0o755); err != nil {
			return fmt.Errorf("failed to set permissions on %s: %w", path, err)
		}
	}

	return nil
}
