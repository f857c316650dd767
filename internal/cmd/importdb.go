package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <name> <sqlFilePath>",
	Short: "Replace an instance's database contents from a SQL file",
	Long: `Import drops and recreates the instance's database with its original
owner, regrants privileges, and executes the given SQL file as the
instance's database user. The service is stopped during the import and
restarted only if it had been running.

Destructive: the previous database contents are not backed up.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	name, sqlPath := args[0], args[1]

	if !confirm(fmt.Sprintf("Replace the database of %q with %s? Existing data is lost.", name, sqlPath)) {
		fmt.Println("Import cancelled.")
		return nil
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := mgr.Import(cmd.Context(), name, sqlPath); err != nil {
		return err
	}
	printSuccess("database of %s imported from %s", name, sqlPath)
	return nil
}
