package cli

import (
	"context"

	"github.com/spf13/cobra"

	"cpbar/internal/ops"
)

var (
	removeRecursive bool
	removeForce     bool
	removeDryRun    bool
)

var removeCmd = &cobra.Command{
	Use:   "remove <targets...>",
	Short: "Remove files with a progress bar",
	Long: `Remove files and directories with a unified progress bar and safety
confirmations: a short countdown plus an explicit prompt, unless -f is
given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, st, model, err := setup()
		if err != nil {
			return err
		}
		defer teardown(st)

		return ops.Remove(context.Background(), args, ops.RemoveOptions{
			Recursive:        removeRecursive,
			Force:            removeForce,
			DryRun:           removeDryRun,
			CountdownSeconds: cfg.CountdownSeconds,
			Model:            model,
		})
	},
}

func init() {
	removeCmd.Flags().BoolVarP(&removeRecursive, "recursive", "r", false, "remove directories and their contents recursively")
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "skip the countdown and confirmation")
	removeCmd.Flags().BoolVarP(&removeDryRun, "dry-run", "n", false, "preview what would be deleted without deleting")

	rootCmd.AddCommand(removeCmd)
}
