package cli

import (
	"context"

	"github.com/spf13/cobra"

	"cpbar/internal/ops"
)

const defaultWorkers = 4

var (
	copyRecursive bool
	copyDryRun    bool
	copyParallel  int
)

var copyCmd = &cobra.Command{
	Use:   "copy <sources...> <destination>",
	Short: "Copy files with a progress bar",
	Long: `Copy files and directories with a unified progress bar, speed tracking,
and an optional parallel block mode for large files.

With -P, files above the parallel threshold (64MiB by default) are split
into blocks and copied by a bounded worker pool. Run "cpbar benchmark" to
detect the optimal worker count for this machine.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, model, err := setup()
		if err != nil {
			return err
		}
		defer teardown(st)

		workers := copyParallel
		if workers < 0 {
			// -P without a value: prefer the config override, then the
			// benchmarked count.
			workers = cfg.Workers
			if workers == 0 {
				workers = st.OptimalWorkers(defaultWorkers)
			}
		}

		sources, destination := args[:len(args)-1], args[len(args)-1]

		return ops.Copy(context.Background(), sources, destination, ops.CopyOptions{
			Recursive:         copyRecursive,
			DryRun:            copyDryRun,
			Workers:           workers,
			BufferSize:        cfg.BufferSize,
			BlockSize:         cfg.BlockSize,
			ParallelThreshold: cfg.ParallelThreshold,
			Model:             model,
		})
	},
}

func init() {
	copyCmd.Flags().BoolVarP(&copyRecursive, "recursive", "r", false, "copy directories recursively")
	copyCmd.Flags().BoolVarP(&copyDryRun, "dry-run", "n", false, "preview what would be copied without copying")
	copyCmd.Flags().IntVarP(&copyParallel, "parallel", "P", 0, "parallel workers for large files (no value: use benchmarked count)")
	copyCmd.Flags().Lookup("parallel").NoOptDefVal = "-1"

	rootCmd.AddCommand(copyCmd)
}
