package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "deploy.base_dir")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// prefixRegex validates the resource prefix. The prefix ends up in unit
// names, database identifiers, and filesystem paths, so it is restricted to
// a leading letter followed by alphanumerics.
var prefixRegex = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// domainRegex is a loose check on the webhook parent domain
var domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9.-]*[a-z0-9])?$`)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDeploy()...)
	errors = append(errors, c.validateDatabase()...)
	errors = append(errors, c.validateWebhook()...)
	errors = append(errors, c.validatePaths()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateDeploy validates the DeployConfig
func (c *Config) validateDeploy() []ValidationError {
	var errors []ValidationError

	if c.Deploy.BaseDir == "" {
		errors = append(errors, ValidationError{
			Field:   "deploy.base_dir",
			Value:   c.Deploy.BaseDir,
			Message: "cannot be empty",
		})
	} else if !strings.HasPrefix(c.Deploy.BaseDir, "/") {
		errors = append(errors, ValidationError{
			Field:   "deploy.base_dir",
			Value:   c.Deploy.BaseDir,
			Message: "must be an absolute path",
		})
	}

	if c.Deploy.Prefix == "" {
		errors = append(errors, ValidationError{
			Field:   "deploy.prefix",
			Value:   c.Deploy.Prefix,
			Message: "cannot be empty",
		})
	} else if !prefixRegex.MatchString(c.Deploy.Prefix) {
		errors = append(errors, ValidationError{
			Field:   "deploy.prefix",
			Value:   c.Deploy.Prefix,
			Message: "must start with a lowercase letter and contain only lowercase alphanumerics",
		})
	}

	// Unit names and database identifiers built from the prefix have
	// length limits; keep the prefix short enough for both.
	const maxPrefixLength = 20
	if len(c.Deploy.Prefix) > maxPrefixLength {
		errors = append(errors, ValidationError{
			Field:   "deploy.prefix",
			Value:   c.Deploy.Prefix,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", maxPrefixLength),
		})
	}

	if c.Deploy.StartCommand == "" {
		errors = append(errors, ValidationError{
			Field:   "deploy.start_command",
			Value:   c.Deploy.StartCommand,
			Message: "cannot be empty",
		})
	}

	if c.Deploy.CloneDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "deploy.clone_depth",
			Value:   c.Deploy.CloneDepth,
			Message: "must be non-negative (0 = full history)",
		})
	}

	return errors
}

// validateDatabase validates the DatabaseConfig
func (c *Config) validateDatabase() []ValidationError {
	var errors []ValidationError

	if c.Database.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Value:   c.Database.Host,
			Message: "cannot be empty",
		})
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Value:   c.Database.Port,
			Message: "must be between 1 and 65535",
		})
	}

	return errors
}

// validateWebhook validates the WebhookConfig
func (c *Config) validateWebhook() []ValidationError {
	var errors []ValidationError

	if c.Webhook.Domain != "" && !domainRegex.MatchString(c.Webhook.Domain) {
		errors = append(errors, ValidationError{
			Field:   "webhook.domain",
			Value:   c.Webhook.Domain,
			Message: "must be a valid lowercase domain name",
		})
	}

	return errors
}

// validatePaths validates the PathsConfig
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	for _, p := range []struct {
		field string
		value string
	}{
		{"paths.unit_dir", c.Paths.UnitDir},
		{"paths.bin_dir", c.Paths.BinDir},
	} {
		if p.value == "" {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Value:   p.value,
				Message: "cannot be empty",
			})
			continue
		}
		if !strings.HasPrefix(p.value, "/") {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Value:   p.value,
				Message: "must be an absolute path",
			})
		}
	}

	if strings.ContainsRune(c.Paths.TemplatePath, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "paths.template_path",
			Value:   c.Paths.TemplatePath,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
