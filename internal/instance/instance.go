// Package instance implements the lifecycle manager for subscription
// instances: the mapping from a name to its directory, database, service
// unit, env file, and log file, and the operations that create, update,
// inspect, and tear those resources down.
package instance

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/moguard/subctl/internal/errors"
	"github.com/moguard/subctl/internal/systemd"
)

// MaxNameLength bounds instance names so derived database roles and unit
// names stay well inside Postgres and systemd identifier limits.
const MaxNameLength = 32

// nameRegex accepts lowercase names safe for filesystems, DNS labels, and
// (after hyphen mapping) Postgres identifiers.
var nameRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateName reports whether name is acceptable as an instance name.
func ValidateName(name string) error {
	if name == "" {
		return errors.NewValidationError("instance name cannot be empty").
			WithField("name").
			WithCause(errors.ErrInvalidName)
	}
	if len(name) > MaxNameLength {
		return errors.NewValidationError(
			fmt.Sprintf("instance name exceeds %d characters", MaxNameLength)).
			WithField("name").
			WithValue(name).
			WithCause(errors.ErrInvalidName)
	}
	if !nameRegex.MatchString(name) {
		return errors.NewValidationError(
			"instance name must be lowercase letters, digits, and inner hyphens").
			WithField("name").
			WithValue(name).
			WithCause(errors.ErrInvalidName)
	}
	return nil
}

// Instance identifies one managed deployment. Every resource path and
// identifier is derived from the name, the base directory, and the
// configured prefix.
type Instance struct {
	Name    string
	BaseDir string
	Prefix  string
}

// Dir returns the instance's working directory.
func (i Instance) Dir() string {
	return filepath.Join(i.BaseDir, i.Name)
}

// Database returns the instance's database name.
func (i Instance) Database() string {
	return i.dbIdent()
}

// DBUser returns the instance's database role. Role and database share the
// same derived identifier.
func (i Instance) DBUser() string {
	return i.dbIdent()
}

func (i Instance) dbIdent() string {
	return i.Prefix + "_" + strings.ReplaceAll(i.Name, "-", "_")
}

// Unit returns the instance's systemd unit name.
func (i Instance) Unit() string {
	return systemd.UnitName(i.Prefix, i.Name)
}

// LogPath returns the instance's append-only log file, shared by the
// service's stdout and stderr.
func (i Instance) LogPath() string {
	return filepath.Join(i.Dir(), i.Name+".log")
}

// EnvPath returns the instance's environment file.
func (i Instance) EnvPath() string {
	return filepath.Join(i.Dir(), ".env")
}

// WebhookHost returns the hostname the panel registers for webhooks,
// one subdomain per instance.
func (i Instance) WebhookHost(domain string) string {
	return i.Name + "." + domain
}
