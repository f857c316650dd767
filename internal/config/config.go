// Package config holds the process-wide subctl configuration. It is populated
// once at startup from the config file and SUBCTL_* environment variables via
// viper. Credentials (the Postgres admin DSN and the git deploy token) are
// only ever read from the environment or the config file, never embedded in
// source.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete subctl configuration
type Config struct {
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Database DatabaseConfig `mapstructure:"database"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DeployConfig controls how instances are provisioned
type DeployConfig struct {
	// BaseDir is the directory under which all instance directories live
	BaseDir string `mapstructure:"base_dir"`
	// RepoURL is the git URL of the managed application repository
	RepoURL string `mapstructure:"repo_url"`
	// Token is the deploy token injected into the clone URL at call time.
	// Set it via SUBCTL_DEPLOY_TOKEN; it is never written to disk.
	Token string `mapstructure:"token"`
	// Prefix is the per-instance resource prefix used for unit names
	// (<prefix>-<name>.service) and database role/name (<prefix>_<name>)
	Prefix string `mapstructure:"prefix"`
	// StartCommand is the command the service unit runs in the instance dir
	StartCommand string `mapstructure:"start_command"`
	// ServiceUser is the system user the service unit runs as
	ServiceUser string `mapstructure:"service_user"`
	// CloneDepth limits clone history; 0 means full history
	CloneDepth int `mapstructure:"clone_depth"`
}

// DatabaseConfig controls the Postgres administration connection and the
// values rendered into instance env files
type DatabaseConfig struct {
	// AdminDSN is the superuser connection string used for role/database
	// administration. Set it via SUBCTL_DATABASE_ADMIN_DSN.
	AdminDSN string `mapstructure:"admin_dsn"`
	// Host is the database host rendered into instance env files
	Host string `mapstructure:"host"`
	// Port is the database port rendered into instance env files
	Port int `mapstructure:"port"`
}

// WebhookConfig controls the per-instance webhook host
type WebhookConfig struct {
	// Domain is the parent domain; each instance answers on <name>.<domain>
	Domain string `mapstructure:"domain"`
}

// PathsConfig controls where subctl writes files outside the base directory
type PathsConfig struct {
	// TemplatePath points at the env template; empty uses the built-in template
	TemplatePath string `mapstructure:"template_path"`
	// UnitDir is where service unit files are written
	UnitDir string `mapstructure:"unit_dir"`
	// BinDir is where script-install places the subctl executable
	BinDir string `mapstructure:"bin_dir"`
}

// LoggingConfig controls subctl's own structured log
type LoggingConfig struct {
	// Enabled controls whether the JSON operation log is written
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error"
	Level string `mapstructure:"level"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Deploy: DeployConfig{
			BaseDir:      "/var/lib/moguard",
			RepoURL:      "",
			Token:        "",
			Prefix:       "moguard",
			StartCommand: "/usr/bin/python3 run.py",
			ServiceUser:  "moguard",
			CloneDepth:   1,
		},
		Database: DatabaseConfig{
			AdminDSN: "",
			Host:     "localhost",
			Port:     5432,
		},
		Webhook: WebhookConfig{
			Domain: "",
		},
		Paths: PathsConfig{
			TemplatePath: "",
			UnitDir:      "/etc/systemd/system",
			BinDir:       "/usr/local/bin",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("deploy.base_dir", defaults.Deploy.BaseDir)
	viper.SetDefault("deploy.repo_url", defaults.Deploy.RepoURL)
	viper.SetDefault("deploy.token", defaults.Deploy.Token)
	viper.SetDefault("deploy.prefix", defaults.Deploy.Prefix)
	viper.SetDefault("deploy.start_command", defaults.Deploy.StartCommand)
	viper.SetDefault("deploy.service_user", defaults.Deploy.ServiceUser)
	viper.SetDefault("deploy.clone_depth", defaults.Deploy.CloneDepth)

	viper.SetDefault("database.admin_dsn", defaults.Database.AdminDSN)
	viper.SetDefault("database.host", defaults.Database.Host)
	viper.SetDefault("database.port", defaults.Database.Port)

	viper.SetDefault("webhook.domain", defaults.Webhook.Domain)

	viper.SetDefault("paths.template_path", defaults.Paths.TemplatePath)
	viper.SetDefault("paths.unit_dir", defaults.Paths.UnitDir)
	viper.SetDefault("paths.bin_dir", defaults.Paths.BinDir)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subctl")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".subctl"
	}
	return filepath.Join(home, ".config", "subctl")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
