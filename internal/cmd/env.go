package cmd

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:   "env <name>",
	Short: "Edit an instance's environment file",
	Long: `Env opens the instance's .env file in $EDITOR (falling back to vi). The
service is not restarted automatically; run 'subctl restart <name>' for the
changes to take effect.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnv,
}

func init() {
	rootCmd.AddCommand(envCmd)
}

func runEnv(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	inst, err := mgr.Registry().Get(args[0])
	if err != nil {
		return err
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	edit := exec.Command(editor, inst.EnvPath())
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return err
	}
	printInfo("restart the instance for env changes to take effect: subctl restart %s", args[0])
	return nil
}
