package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Tear down an instance and all of its resources",
	Long: `Remove stops and deletes the instance's service unit, drops its database
and role, and deletes its directory. Each teardown step is best-effort: a
failing step is reported in the final summary and the remaining steps still
run, so as much as possible gets cleaned up.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	if !confirm(fmt.Sprintf("Remove instance %q? This deletes its service, database, and files.", name)) {
		fmt.Println("Remove cancelled.")
		return nil
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := mgr.Remove(cmd.Context(), name)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Removal summary"))
	for _, step := range summary {
		if step.OK() {
			printSuccess("%s", step.Step)
		} else {
			printWarn("%s: %v", step.Step, step.Err)
		}
	}
	if failed := summary.Failed(); failed > 0 {
		printWarn("instance %s removed with %d failed step(s); the resources above may need manual cleanup", name, failed)
	} else {
		printSuccess("instance %s removed", name)
	}
	return nil
}
