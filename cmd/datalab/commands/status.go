package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maestria-datos/datalab/internal/cli/output"
	"github.com/maestria-datos/datalab/pkg/compose"
	"github.com/maestria-datos/datalab/pkg/config"
	"github.com/maestria-datos/datalab/pkg/stack"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the service registry and current container state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	env := map[string]string{}
	if e, err := config.LoadEnvFile(cfg.EnvFilePath()); err == nil {
		env = e.Map()
	}

	table := output.NewTableData("Service", "Description", "URL")
	for _, s := range stack.Services() {
		table.AddRow(s.Name, s.Description, s.URL("localhost", env))
	}
	if err := output.PrintTable(os.Stdout, table); err != nil {
		return err
	}

	orch := compose.New(
		&compose.ExecRunner{Dir: cfg.ProjectRoot},
		cfg.ComposeFilePath(),
		cfg.Compose.Project,
	)

	ps, err := orch.PS(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query container state: %w", err)
	}
	fmt.Println()
	fmt.Print(ps)
	return nil
}
