package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	downStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", successStyle.Render("[ok]"), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("%s %s\n", errorStyle.Render("[error]"), fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...any) {
	fmt.Printf("%s %s\n", warnStyle.Render("[warn]"), fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("%s %s\n", infoStyle.Render("[info]"), fmt.Sprintf(format, args...))
}
