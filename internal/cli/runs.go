package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/automl/internal/wire"
)

// RunsCmd returns the runs command.
func RunsCmd() *cobra.Command {
	var workspace string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List sweeps recorded in a workspace",
		Long: `List sweeps recorded in a workspace ledger, newest first.

Examples:
  automl runs --workspace ws
  automl runs show 3f2a... --workspace ws`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogger(cmd)
			defer wire.Sync()

			_, err := wire.SweepAdapter().ListRuns(cmd.Context(), workspace, limit)
			return err
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [sweep-id]",
		Short: "Show the entry outcomes of a recorded sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configureLogger(cmd)
			defer wire.Sync()

			_, err := wire.SweepAdapter().ShowRun(cmd.Context(), workspace, args[0])
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&workspace, "workspace", ".", "Workspace directory")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of sweeps to list (0 for all)")
	cmd.AddCommand(showCmd)
	return cmd
}

func configureLogger(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	wire.Configure(wire.Settings{Verbose: verbose})
}
