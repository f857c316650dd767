package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moguard/subctl/internal/errors"
)

// defaultLogLines is printed when no count argument is given.
const defaultLogLines = 20

var logsFollow bool

var logsCmd = &cobra.Command{
	Use:   "logs <name> [lineCount]",
	Short: "Show the tail of an instance's log and follow new output",
	Long: `Logs prints the last lineCount lines (default 20) of the instance's log
file, then follows new output until interrupted. Use --follow=false to print
the tail and exit.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", true, "Keep streaming new log output")
}

// parseLineCount validates the optional count argument. It runs before any
// filesystem access so a bad count never touches the log file.
func parseLineCount(args []string) (int, error) {
	if len(args) < 2 {
		return defaultLogLines, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, errors.NewValidationError("line count must be a non-negative integer").
			WithField("lineCount").
			WithValue(args[1])
	}
	return n, nil
}

func runLogs(cmd *cobra.Command, args []string) error {
	name := args[0]

	count, err := parseLineCount(args)
	if err != nil {
		return err
	}

	mgr, cleanup, err := buildManager()
	if err != nil {
		return err
	}
	defer cleanup()

	inst, err := mgr.Registry().Get(name)
	if err != nil {
		return err
	}
	logPath := inst.LogPath()
	if _, err := os.Stat(logPath); err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("log file", logPath).WithCause(err)
		}
		return errors.Wrapf(err, "failed to check log file %s", logPath)
	}

	if err := printTail(logPath, count); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}
	return followFile(cmd.Context(), logPath, os.Stdout)
}

// printTail prints the last n lines of the file at path.
func printTail(path string, n int) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read log file %s", path)
	}
	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// followFile streams output appended to path into w until the context is
// cancelled. The context is checked on every iteration so cancellation is
// honored even while the file keeps growing.
func followFile(ctx context.Context, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open log file %s", path)
	}
	defer f.Close()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return errors.Wrapf(err, "failed to seek log file %s", path)
	}

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := f.Read(buf)
		if n > 0 {
			w.Write(buf[:n])
		}
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "failed to read log file %s", path)
		}
		if err == io.EOF {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(500 * time.Millisecond):
			}
		}
	}
}
