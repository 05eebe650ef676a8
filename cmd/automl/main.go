package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/automl/internal/cli"
	"github.com/example/automl/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "automl",
		Short:   "automl - knowledge-base driven AutoML experiment sweeps",
		Version: version.String(),
		Long: `automl drives an external AutoML optimizer over a list of datasets for a
fixed number of iterations, assembling the knowledge base each run reads
from dataset meta-features and the rules mined by the previous run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.PlanCmd())
	rootCmd.AddCommand(cli.FilterCmd())
	rootCmd.AddCommand(cli.RunsCmd())

	// Interrupting kills the running optimizer and abandons the rest of the sweep.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
