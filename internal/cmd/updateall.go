package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateAllCmd = &cobra.Command{
	Use:   "update-all <branch>",
	Short: "Update every running instance to a branch",
	Long: `Update-all enumerates the registered instances in sorted order and updates
each one whose service is currently active; inactive instances are skipped.
Instances are processed one at a time and the first failure aborts the
batch, leaving the remaining instances untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdateAll,
}

func init() {
	rootCmd.AddCommand(updateAllCmd)
}

func runUpdateAll(cmd *cobra.Command, args []string) error {
	branch := args[0]

	if !confirm(fmt.Sprintf("Update every running instance to branch %q?", branch)) {
		fmt.Println("Update cancelled.")
		return nil
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := mgr.UpdateAll(cmd.Context(), branch)
	if result != nil {
		for _, name := range result.Skipped {
			printWarn("skipped %s (service not active)", name)
		}
		for _, name := range result.Updated {
			printSuccess("updated %s", name)
		}
	}
	if err != nil {
		return err
	}
	printSuccess("updated %d instance(s), skipped %d", len(result.Updated), len(result.Skipped))
	return nil
}
