package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update <name> <branch>",
	Short: "Update an instance to the remote tip of a branch",
	Long: `Update stops the instance's service, discards local modifications, fetches
all refs, switches to the given branch, hard-resets to its remote tip, and
starts the service again. If a git step fails the service is left stopped.`,
	Args: cobra.ExactArgs(2),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name, branch := args[0], args[1]

	if !confirm(fmt.Sprintf("Update instance %q to branch %q? Local changes will be discarded.", name, branch)) {
		fmt.Println("Update cancelled.")
		return nil
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Update(cmd.Context(), name, branch); err != nil {
		return err
	}
	printSuccess("instance %s updated to branch %s", name, branch)
	return nil
}
