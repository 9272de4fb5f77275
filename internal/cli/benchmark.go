package cli

import (
	"os"

	"github.com/spf13/cobra"

	"cpbar/internal/bench"
)

var benchmarkQuiet bool

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Detect the optimal parallel worker count",
	Long: `Copy a synthetic 100MB payload with different worker counts, three trials
each, and persist the fastest configuration as the default for -P.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, _, err := setup()
		if err != nil {
			return err
		}
		defer teardown(st)

		ctx, cancel := signalContext()
		defer cancel()

		_, err = bench.Run(ctx, st, benchmarkQuiet, os.Stdout)

		return err
	},
}

func init() {
	benchmarkCmd.Flags().BoolVarP(&benchmarkQuiet, "quiet", "q", false, "minimal output, only the final result")

	rootCmd.AddCommand(benchmarkCmd)
}
