package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maestria-datos/datalab/internal/cli/prompt"
	"github.com/maestria-datos/datalab/pkg/cleanup"
	"github.com/maestria-datos/datalab/pkg/compose"
	"github.com/maestria-datos/datalab/pkg/stack"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Destroy the stack and delete all of its local data",
	Long: `Stop and remove all services together with their volumes, clear the
contents of the data, logs and backups directories, and prune container
images no longer referenced by any container.

This is irreversible and requires interactive confirmation. The
environment file and notebooks are kept. Declining the prompt removes
nothing and exits normally.`,
	RunE: runCleanup,
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	orch := compose.New(
		&compose.ExecRunner{Dir: cfg.ProjectRoot},
		cfg.ComposeFilePath(),
		cfg.Compose.Project,
	)

	agent := &cleanup.Agent{
		ProjectRoot:  cfg.ProjectRoot,
		Roots:        stack.MutableRoots(),
		Orchestrator: orch,
		Confirm:      prompt.Confirm,
	}

	if err := agent.Run(cmd.Context()); err != nil {
		// Declining is a normal exit, not a failure.
		if errors.Is(err, cleanup.ErrDeclined) {
			return nil
		}
		return err
	}

	return nil
}
