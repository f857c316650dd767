package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start an instance's service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, cleanup, err := buildManager()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := mgr.Start(args[0]); err != nil {
			return err
		}
		printSuccess("instance %s started", args[0])
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop an instance's service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Stop instance %q?", args[0])) {
			fmt.Println("Stop cancelled.")
			return nil
		}
		mgr, cleanup, err := buildManager()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := mgr.Stop(args[0]); err != nil {
			return err
		}
		printSuccess("instance %s stopped", args[0])
		return nil
	},
}

var restartCmd = &cobra.Command{
	Use:   "restart <name>",
	Short: "Restart an instance's service",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(fmt.Sprintf("Restart instance %q?", args[0])) {
			fmt.Println("Restart cancelled.")
			return nil
		}
		mgr, cleanup, err := buildManager()
		if err != nil {
			return err
		}
		defer cleanup()
		if err := mgr.Restart(args[0]); err != nil {
			return err
		}
		printSuccess("instance %s restarted", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(restartCmd)
}
