// Package commands implements the CLI commands for the datalab stack
// orchestrator.
package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/maestria-datos/datalab/internal/logger"
	"github.com/maestria-datos/datalab/pkg/config"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "datalab",
	Short: "datalab - local data-analysis stack orchestrator",
	Long: `datalab provisions and tears down the local data-analysis stack used
in the Maestria en Datos course: MySQL, phpMyAdmin, Metabase, Superset,
a Streamlit explorer, a Jupyter notebook server, and a backup agent.

The stack itself runs under docker compose; datalab prepares filesystem
state and configuration, starts the services, waits for the database,
and loads the sample dataset.

Use "datalab [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: datalab.yaml in the working directory)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(downloadDatasetsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadSettings loads the tool settings and initializes the logger.
// Every invocation carries a short run id so interleaved logs from
// repeated runs stay distinguishable.
func loadSettings() (*config.Settings, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, err
	}

	logger.Debug("settings loaded", "run_id", uuid.NewString()[:8], "root", cfg.ProjectRoot)
	return cfg, nil
}
