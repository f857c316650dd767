package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/moguard/subctl/internal/config"
	"github.com/moguard/subctl/internal/errors"
)

var scriptInstallCmd = &cobra.Command{
	Use:   "script-install",
	Short: "Copy the subctl executable into the configured bin directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := installedPath()
		if _, err := os.Stat(target); err == nil {
			return errors.NewAlreadyExistsError("executable", target)
		}
		if err := copySelf(target); err != nil {
			return err
		}
		printSuccess("installed %s", target)
		return nil
	},
}

var scriptUpdateCmd = &cobra.Command{
	Use:   "script-update",
	Short: "Overwrite the installed subctl executable with this one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := installedPath()
		if err := copySelf(target); err != nil {
			return err
		}
		printSuccess("updated %s", target)
		return nil
	},
}

var scriptRemoveCmd = &cobra.Command{
	Use:   "script-remove",
	Short: "Delete the installed subctl executable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := installedPath()
		if !confirm(fmt.Sprintf("Delete %s?", target)) {
			fmt.Println("Remove cancelled.")
			return nil
		}
		if err := os.Remove(target); err != nil {
			if os.IsNotExist(err) {
				return errors.NewNotFoundError("executable", target).WithCause(err)
			}
			return errors.Wrapf(err, "failed to remove %s", target)
		}
		printSuccess("removed %s", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scriptInstallCmd)
	rootCmd.AddCommand(scriptUpdateCmd)
	rootCmd.AddCommand(scriptRemoveCmd)
}

// installedPath resolves the install target from the bin_dir setting,
// falling back to the default when no valid config is present.
func installedPath() string {
	return filepath.Join(config.Get().Paths.BinDir, "subctl")
}

// copySelf copies the running executable to target. The copy goes through a
// temp file and rename so a running installed copy is replaced atomically.
func copySelf(target string) error {
	self, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "failed to locate the running executable")
	}
	src, err := os.Open(self)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", self)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(target), ".subctl-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", filepath.Dir(target))
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to copy executable to %s", tmp.Name())
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to set executable permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to finish writing executable")
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.Wrapf(err, "failed to move executable to %s", target)
	}
	return nil
}
