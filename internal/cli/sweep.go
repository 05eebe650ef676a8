package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/wire"
)

// RunCmd returns the run command.
func RunCmd() *cobra.Command {
	var noLedger bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the optimizer for every dataset and iteration",
		Long: `Run the optimizer once per (dataset, iteration), strictly in order.

Iteration 0 reads <workspace>/<dataset>/resources/guards.txt: the base rules
plus constraints derived from the dataset's meta-features (or the base rules
unchanged when the dataset has none). Iteration k reads
argumentation/complete_kb_k.txt, assembled from the kb_k and rules_k
fragments the previous run left behind.

A failed run skips the remaining iterations of its dataset; other datasets
still run. Outcomes are recorded in <workspace>/.automl/ledger.db.

Examples:
  automl run --workspace ws --fair-mode 0 --metric balanced_accuracy \
    --fair_metric demographic_parity --mode fair --batch_size 100 \
    --time_budget 900 --version 1.0 --iterations 3 --kb kb.txt --volume /data
  automl run --config sweep.yaml --dataset 31 --keep-going`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			settings := wire.Settings{Verbose: verbose, LogPaths: []string{config.LogPath(opts.Workspace)}}
			if verbose {
				settings.LogPaths = append(settings.LogPaths, "stderr")
			}
			wire.Configure(settings)
			defer wire.Sync()

			var progressOut io.Writer = os.Stderr
			if verbose {
				progressOut = nil
			}
			adapter := wire.SweepAdapterWithOutput(os.Stdout, progressOut)
			_, err = adapter.Run(cmd.Context(), opts, !noLedger)
			return err
		},
	}

	addSweepFlags(cmd)
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "Do not record the sweep in the workspace ledger")
	return cmd
}

// PlanCmd returns the plan command.
func PlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the planned optimizer commands without running them",
		Long: `Validate the options and print every planned (dataset, iteration) entry
with its knowledge base and command line. Nothing is written.

Examples:
  automl plan --config sweep.yaml
  automl plan --config sweep.yaml --dataset 179 --iterations 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveOptions(cmd)
			if err != nil {
				return err
			}

			verbose, _ := cmd.Flags().GetBool("verbose")
			wire.Configure(wire.Settings{Verbose: verbose})
			defer wire.Sync()

			_, err = wire.SweepAdapter().Plan(cmd.Context(), opts)
			return err
		},
	}

	addSweepFlags(cmd)
	return cmd
}
