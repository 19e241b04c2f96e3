package commands

import (
	"github.com/spf13/cobra"

	"github.com/maestria-datos/datalab/pkg/dataset"
)

var downloadDatasetsCmd = &cobra.Command{
	Use:   "download-datasets",
	Short: "Download the sample dataset into the database init directory",
	Long: `Download and place the sample dataset without running the rest of the
provisioning pipeline.

The operation is idempotent: when the dataset artifact is already in
place nothing is downloaded.`,
	RunE: runDownloadDatasets,
}

func runDownloadDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	return dataset.New(datasetSpec(cfg)).Acquire(cmd.Context())
}
