// Package systemd wraps systemctl and unit-file management for per-instance
// services. Each instance gets a unit named "<prefix>-<name>.service" that
// runs the managed application in the instance directory and appends stdout
// and stderr to the instance log file.
package systemd

import (
	"fmt"
	"strings"
)

// UnitName returns the service unit name for an instance.
// Unit names follow the format "<prefix>-<name>.service".
func UnitName(prefix, name string) string {
	return prefix + "-" + name + ".service"
}

// InstanceFromUnit extracts the instance name from a unit name with the
// given prefix. Returns empty string if the unit does not match.
func InstanceFromUnit(prefix, unit string) string {
	trimmed, ok := strings.CutSuffix(unit, ".service")
	if !ok {
		return ""
	}
	if name, found := strings.CutPrefix(trimmed, prefix+"-"); found {
		return name
	}
	return ""
}

// UnitDefinition holds everything rendered into a unit file.
type UnitDefinition struct {
	// Description shown by the supervisor
	Description string
	// WorkingDir is the instance directory
	WorkingDir string
	// ExecStart is the command the service runs
	ExecStart string
	// User is the system user the service runs as
	User string
	// LogPath receives stdout and stderr, append-only
	LogPath string
}

// Render produces the unit file contents.
func (d UnitDefinition) Render() string {
	var sb strings.Builder

	sb.WriteString("[Unit]\n")
	fmt.Fprintf(&sb, "Description=%s\n", d.Description)
	sb.WriteString("After=network.target postgresql.service\n")
	sb.WriteString("\n")

	sb.WriteString("[Service]\n")
	sb.WriteString("Type=simple\n")
	if d.User != "" {
		fmt.Fprintf(&sb, "User=%s\n", d.User)
	}
	fmt.Fprintf(&sb, "WorkingDirectory=%s\n", d.WorkingDir)
	fmt.Fprintf(&sb, "ExecStart=%s\n", d.ExecStart)
	sb.WriteString("Restart=always\n")
	sb.WriteString("RestartSec=5\n")
	fmt.Fprintf(&sb, "StandardOutput=append:%s\n", d.LogPath)
	fmt.Fprintf(&sb, "StandardError=append:%s\n", d.LogPath)
	sb.WriteString("\n")

	sb.WriteString("[Install]\n")
	sb.WriteString("WantedBy=multi-user.target\n")

	return sb.String()
}
