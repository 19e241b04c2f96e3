package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maestria-datos/datalab/internal/cli/output"
	"github.com/maestria-datos/datalab/internal/logger"
	"github.com/maestria-datos/datalab/pkg/compose"
	"github.com/maestria-datos/datalab/pkg/config"
	"github.com/maestria-datos/datalab/pkg/dataset"
	"github.com/maestria-datos/datalab/pkg/provision"
	"github.com/maestria-datos/datalab/pkg/readiness"
	"github.com/maestria-datos/datalab/pkg/stack"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Provision and start the local data-analysis stack",
	Long: `Provision and start the full stack.

The pipeline is idempotent: directories, the environment file, and the
sample dataset are only created when missing, so re-running setup after
an interrupted run converges without manual repair. An existing .env is
never overwritten.

Examples:
  # Provision and start everything
  datalab setup

  # Longer readiness budget on a slow machine
  DATALAB_READINESS_MAX_ATTEMPTS=60 datalab setup`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	orch := compose.New(
		&compose.ExecRunner{Dir: cfg.ProjectRoot},
		cfg.ComposeFilePath(),
		cfg.Compose.Project,
	)

	poller := readiness.NewPoller(
		readiness.Policy{
			MaxAttempts: cfg.Readiness.MaxAttempts,
			Interval:    cfg.Readiness.Interval,
		},
		readiness.DatabasePing(orch, stack.DatabaseService),
	)

	acquirer := dataset.New(datasetSpec(cfg))

	pipe := &provision.Pipeline{
		Settings:       cfg,
		Orchestrator:   orch,
		WaitReady:      poller.Wait,
		ReportReady:    func() { printServiceReport(cfg) },
		AcquireDataset: acquirer.Acquire,
	}

	return pipe.Run(cmd.Context())
}

// datasetSpec builds the acquisition spec from the tool settings.
func datasetSpec(cfg *config.Settings) dataset.Spec {
	return dataset.Spec{
		Name:    cfg.Dataset.Name,
		URL:     cfg.Dataset.URL,
		Files:   cfg.Dataset.Files,
		DestDir: filepath.Join(cfg.ProjectRoot, stack.InitDir),
		Marker:  cfg.Dataset.Marker,
	}
}

// printServiceReport shows where each service listens, resolving port
// overrides from the environment file.
func printServiceReport(cfg *config.Settings) {
	env := map[string]string{}
	if e, err := config.LoadEnvFile(cfg.EnvFilePath()); err == nil {
		env = e.Map()
	} else {
		logger.Warn("could not read environment file for the report", "error", err)
	}

	fmt.Println("\nStack is up:")
	table := output.NewTableData("Service", "Description", "URL")
	for _, s := range stack.Services() {
		table.AddRow(s.Name, s.Description, s.URL("localhost", env))
	}
	_ = output.PrintTable(os.Stdout, table)
	fmt.Println()
}
