package systemd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/moguard/subctl/internal/errors"
)

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command and returns combined output.
	Run(name string, args ...string) ([]byte, error)

	// RunQuiet executes a command and returns only the error.
	RunQuiet(name string, args ...string) error
}

// CLICommandExecutor executes commands using os/exec.
type CLICommandExecutor struct{}

// NewCLICommandExecutor creates a new CLI command executor.
func NewCLICommandExecutor() *CLICommandExecutor {
	return &CLICommandExecutor{}
}

// Run executes a command and returns combined output.
func (e *CLICommandExecutor) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// RunQuiet executes a command and returns only the error.
func (e *CLICommandExecutor) RunQuiet(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// Manager defines the supervisor operations the lifecycle manager needs.
type Manager interface {
	// WriteUnit writes the unit file for unit with the given definition.
	WriteUnit(unit string, def UnitDefinition) error

	// RemoveUnit deletes the unit file. Removing a missing unit is not an error.
	RemoveUnit(unit string) error

	// UnitExists reports whether a unit file is registered for unit.
	UnitExists(unit string) bool

	// DaemonReload reloads the supervisor configuration.
	DaemonReload() error

	// Enable marks the unit to start at boot.
	Enable(unit string) error

	// Disable unmarks the unit from starting at boot.
	Disable(unit string) error

	// Start starts the unit.
	Start(unit string) error

	// Stop stops the unit.
	Stop(unit string) error

	// IsActive reports whether the unit is currently active.
	IsActive(unit string) bool
}

// CLIManager implements Manager with systemctl and direct unit-file writes.
type CLIManager struct {
	unitDir  string
	executor CommandExecutor
}

// NewCLIManager creates a manager writing unit files into unitDir
// (normally /etc/systemd/system).
func NewCLIManager(unitDir string) *CLIManager {
	return &CLIManager{
		unitDir:  unitDir,
		executor: NewCLICommandExecutor(),
	}
}

// NewCLIManagerWithExecutor creates a CLIManager with a custom executor.
// This is primarily useful for testing.
func NewCLIManagerWithExecutor(unitDir string, executor CommandExecutor) *CLIManager {
	return &CLIManager{
		unitDir:  unitDir,
		executor: executor,
	}
}

// UnitPath returns the path of the unit file for unit.
func (m *CLIManager) UnitPath(unit string) string {
	return filepath.Join(m.unitDir, unit)
}

// WriteUnit writes the unit file for unit with the given definition.
func (m *CLIManager) WriteUnit(unit string, def UnitDefinition) error {
	if err := os.MkdirAll(m.unitDir, 0755); err != nil {
		return errors.NewServiceError("failed to create unit directory", err).WithUnit(unit)
	}
	if err := os.WriteFile(m.UnitPath(unit), []byte(def.Render()), 0644); err != nil {
		return errors.NewServiceError("failed to write unit file", err).WithUnit(unit)
	}
	return nil
}

// RemoveUnit deletes the unit file. Removing a missing unit is not an error.
func (m *CLIManager) RemoveUnit(unit string) error {
	if err := os.Remove(m.UnitPath(unit)); err != nil && !os.IsNotExist(err) {
		return errors.NewServiceError("failed to remove unit file", err).WithUnit(unit)
	}
	return nil
}

// UnitExists reports whether a unit file is registered for unit.
func (m *CLIManager) UnitExists(unit string) bool {
	_, err := os.Stat(m.UnitPath(unit))
	return err == nil
}

// DaemonReload reloads the supervisor configuration.
func (m *CLIManager) DaemonReload() error {
	output, err := m.executor.Run("systemctl", "daemon-reload")
	if err != nil {
		return errors.NewServiceError("failed to reload supervisor configuration", err).
			WithOutput(string(output))
	}
	return nil
}

// Enable marks the unit to start at boot.
func (m *CLIManager) Enable(unit string) error {
	output, err := m.executor.Run("systemctl", "enable", unit)
	if err != nil {
		return errors.NewServiceError("failed to enable unit", err).
			WithUnit(unit).
			WithOutput(string(output))
	}
	return nil
}

// Disable unmarks the unit from starting at boot.
// Disabling an already-disabled unit is not an error.
func (m *CLIManager) Disable(unit string) error {
	output, err := m.executor.Run("systemctl", "disable", unit)
	if err != nil {
		return errors.NewServiceError("failed to disable unit", err).
			WithUnit(unit).
			WithOutput(string(output))
	}
	return nil
}

// Start starts the unit.
func (m *CLIManager) Start(unit string) error {
	output, err := m.executor.Run("systemctl", "start", unit)
	if err != nil {
		return errors.NewServiceError("failed to start unit", err).
			WithUnit(unit).
			WithOutput(string(output))
	}
	return nil
}

// Stop stops the unit.
func (m *CLIManager) Stop(unit string) error {
	output, err := m.executor.Run("systemctl", "stop", unit)
	if err != nil {
		return errors.NewServiceError("failed to stop unit", err).
			WithUnit(unit).
			WithOutput(string(output))
	}
	return nil
}

// IsActive reports whether the unit is currently active.
// systemctl is-active exits non-zero for inactive units, so only the
// output is inspected.
func (m *CLIManager) IsActive(unit string) bool {
	output, _ := m.executor.Run("systemctl", "is-active", unit)
	return strings.TrimSpace(string(output)) == "active"
}

// Ensure CLIManager satisfies the interface at compile time.
var _ Manager = (*CLIManager)(nil)
