package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/wire"
)

// FilterCmd returns the filter-datasets command.
func FilterCmd() *cobra.Command {
	var tablePath string
	var candidates []string

	cmd := &cobra.Command{
		Use:   "filter-datasets",
		Short: "Print the datasets small and complete enough to sweep",
		Long: `Screen datasets by their meta-features and print the IDs that pass,
in table order. A dataset passes when under 10% of its cells are missing,
under 10% of its rows have missing values, and it has fewer than 5,000,000
cells.

Examples:
  automl filter-datasets
  automl filter-datasets --table resources/dataset-meta-features.csv --dataset 31 --dataset 179`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			wire.Configure(wire.Settings{Verbose: verbose})
			defer wire.Sync()

			_, err := wire.SweepAdapter().FilterDatasets(cmd.Context(), tablePath, candidates)
			return err
		},
	}

	cmd.Flags().StringVar(&tablePath, "table", config.DefaultSuitePath, "Meta-feature table of candidate datasets")
	cmd.Flags().StringSliceVar(&candidates, "dataset", nil, "Candidate dataset IDs (default: every dataset in the table)")
	return cmd
}
