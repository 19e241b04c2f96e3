// Package cleanup implements the destructive environment reset: stop
// the stack, delete its volumes and local mutable state, and prune
// unreferenced images. The operation is gated on an explicit
// confirmation and favors maximal cleanup over all-or-nothing
// semantics.
package cleanup

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/maestria-datos/datalab/internal/cli/prompt"
	"github.com/maestria-datos/datalab/internal/logger"
)

// ErrDeclined is returned when the user does not confirm. Nothing has
// been removed; callers treat it as a normal exit.
var ErrDeclined = errors.New("cleanup declined")

// Orchestrator is the slice of the compose layer the agent drives.
type Orchestrator interface {
	DownVolumes(ctx context.Context) error
	PruneImages(ctx context.Context) error
}

// Agent performs the irreversible reset.
type Agent struct {
	// ProjectRoot holds the mutable directories.
	ProjectRoot string

	// Roots are the directories whose contents are removed. The
	// directories themselves survive; the environment file and other
	// project configuration are deliberately untouched.
	Roots []string

	Orchestrator Orchestrator

	// Confirm gates the whole operation.
	Confirm prompt.Confirmer
}

// Run asks for confirmation and, if granted, executes the reset.
// Every step after confirmation is best effort: a failed step is
// logged and the next one still runs.
func (a *Agent) Run(ctx context.Context) error {
	ok, err := a.Confirm("This deletes all stack data, logs, backups and container volumes. Continue?")
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("cleanup declined, nothing was removed")
		return ErrDeclined
	}

	if err := a.Orchestrator.DownVolumes(ctx); err != nil {
		logger.Warn("failed to remove services and volumes", "error", err)
	} else {
		logger.Info("services and volumes removed")
	}

	for _, root := range a.Roots {
		path := filepath.Join(a.ProjectRoot, root)
		if err := clearDir(path); err != nil {
			logger.Warn("failed to clear directory", "path", path, "error", err)
			continue
		}
		logger.Info("directory cleared", "path", path)
	}

	if err := a.Orchestrator.PruneImages(ctx); err != nil {
		logger.Warn("failed to prune images", "error", err)
	} else {
		logger.Info("unused images pruned")
	}

	return nil
}

// clearDir removes the contents of dir but keeps the directory itself.
// A missing directory is not an error; there is nothing to clear.
func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
