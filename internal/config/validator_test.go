package config

import (
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() config should validate, got %v", errs)
	}
}

func TestValidateDeploy(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "empty base dir",
			mutate:    func(c *Config) { c.Deploy.BaseDir = "" },
			wantField: "deploy.base_dir",
		},
		{
			name:      "relative base dir",
			mutate:    func(c *Config) { c.Deploy.BaseDir = "var/lib/moguard" },
			wantField: "deploy.base_dir",
		},
		{
			name:      "prefix with hyphen",
			mutate:    func(c *Config) { c.Deploy.Prefix = "mo-guard" },
			wantField: "deploy.prefix",
		},
		{
			name:      "prefix too long",
			mutate:    func(c *Config) { c.Deploy.Prefix = strings.Repeat("a", 21) },
			wantField: "deploy.prefix",
		},
		{
			name:      "empty start command",
			mutate:    func(c *Config) { c.Deploy.StartCommand = "" },
			wantField: "deploy.start_command",
		},
		{
			name:      "negative clone depth",
			mutate:    func(c *Config) { c.Deploy.CloneDepth = -1 },
			wantField: "deploy.clone_depth",
		},
		{
			name:      "bad port",
			mutate:    func(c *Config) { c.Database.Port = 0 },
			wantField: "database.port",
		},
		{
			name:      "bad webhook domain",
			mutate:    func(c *Config) { c.Webhook.Domain = "Not A Domain" },
			wantField: "webhook.domain",
		},
		{
			name:      "relative unit dir",
			mutate:    func(c *Config) { c.Paths.UnitDir = "etc/systemd" },
			wantField: "paths.unit_dir",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) == 0 {
				t.Fatal("Validate() = no errors, want at least one")
			}
			found := false
			for _, e := range errs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors %v missing field %s", errs, tt.wantField)
			}
		})
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "deploy.base_dir", Value: "", Message: "cannot be empty"},
		{Field: "database.port", Value: 0, Message: "must be between 1 and 65535"},
	}
	msg := errs.Error()
	if !strings.Contains(msg, "2 validation errors") {
		t.Errorf("Error() = %q, want count header", msg)
	}
	if !strings.Contains(msg, "deploy.base_dir") || !strings.Contains(msg, "database.port") {
		t.Errorf("Error() = %q, want both fields", msg)
	}
}

func TestValidateEmptyWebhookDomainAllowed(t *testing.T) {
	cfg := Default()
	cfg.Webhook.Domain = ""
	for _, e := range cfg.Validate() {
		if e.Field == "webhook.domain" {
			t.Errorf("empty webhook domain should be allowed, got %v", e)
		}
	}
}
