package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show whether an instance's service is running",
	Long: `Status queries the service supervisor for the given instance. With no
argument it lists every registered instance and its state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 1 {
		active, err := mgr.Status(args[0])
		if err != nil {
			return err
		}
		if active {
			fmt.Printf("%s: %s\n", args[0], activeStyle.Render("active"))
		} else {
			fmt.Printf("%s: %s\n", args[0], downStyle.Render("inactive"))
		}
		return nil
	}

	statuses, err := mgr.StatusAll()
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Println("No instances installed.")
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-34s %-10s %s", "INSTANCE", "STATE", "DIRECTORY")))
	for _, s := range statuses {
		// Pad before styling so the ANSI codes don't skew the columns.
		state := downStyle.Render(fmt.Sprintf("%-10s", "inactive"))
		if s.Active {
			state = activeStyle.Render(fmt.Sprintf("%-10s", "active"))
		}
		fmt.Printf("%-34s %s %s\n", s.Instance.Name, state, s.Instance.Dir())
	}
	return nil
}
