package cmd

import (
	"errors"
	"fmt"
	"os"

	"accent-detector/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove run directories left behind by interrupted runs",
	Long: `Remove every run directory under the configured work directory.

Runs in progress hold a shared lock on the work directory; clean refuses
to prune while any of them is active.

Example:
  accent-detector clean`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := GetConfig()
	if err != nil {
		return err
	}

	return RunCleanWithDependencies(filesystem.NewWorkspace(cfg.Paths.WorkDirectory), os.Stdout)
}

// RunCleanWithDependencies runs the clean command with injected dependencies (for testing)
func RunCleanWithDependencies(workspace *filesystem.Workspace, output OutputWriter) error {
	removed, err := workspace.Prune()
	if errors.Is(err, filesystem.ErrWorkspaceBusy) {
		return fmt.Errorf("runs are in progress in %s; try again once they finish", workspace.Root())
	}
	if err != nil {
		return err
	}

	if len(removed) == 0 {
		fmt.Fprintln(output, "Nothing to clean.")
		return nil
	}
	for _, id := range removed {
		fmt.Fprintf(output, "Removed run %s\n", id)
	}
	fmt.Fprintf(output, "Removed %d run directories from %s\n", len(removed), workspace.RunsDir())
	return nil
}
