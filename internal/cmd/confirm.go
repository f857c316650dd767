package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirm prompts [y/N] on stdin and reports whether the operator accepted.
// The --yes flag skips the prompt. A declined prompt is not an error; callers
// print a cancellation notice and return nil so the process exits 0.
func confirm(prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
