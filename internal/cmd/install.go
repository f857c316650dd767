package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <name> <branch>",
	Short: "Provision and start a new instance",
	Long: `Install provisions a new subscription instance: clones the given branch
into the instance directory, creates a dedicated Postgres role and database,
renders the instance .env file, and registers, enables, and starts its
systemd service.

There is no rollback. If a step fails the completed steps are reported and
the partial state can be cleared with 'subctl remove <name>'.`,
	Args: cobra.ExactArgs(2),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	name, branch := args[0], args[1]

	if !confirm(fmt.Sprintf("Install instance %q from branch %q?", name, branch)) {
		fmt.Println("Install cancelled.")
		return nil
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	// The rendered environment is shown before the service is registered
	// and started, so the operator can review it while it still matters.
	result, err := mgr.Create(cmd.Context(), name, branch, func(envContents string) {
		printInfo("rendered environment for %s:", name)
		fmt.Println(envContents)
	})
	if err != nil {
		return err
	}

	printInfo("webhook host: https://%s", result.WebhookHost)
	printSuccess("instance %s installed and started", name)
	return nil
}
