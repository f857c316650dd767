package instance

import (
	"strings"
	"testing"

	"github.com/moguard/subctl/internal/errors"
)

func TestValidateName(t *testing.T) {
	valid := []string{"acme", "acme-staging", "a", "client42", "a1-b2-c3"}
	for _, name := range valid {
		if err := ValidateName(name); err != nil {
			t.Errorf("ValidateName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"Acme",
		"acme_staging",
		"-acme",
		"acme-",
		"acme client",
		"acme/../etc",
		strings.Repeat("a", MaxNameLength+1),
	}
	for _, name := range invalid {
		err := ValidateName(name)
		if err == nil {
			t.Errorf("ValidateName(%q) = nil, want error", name)
			continue
		}
		if !errors.Is(err, errors.ErrInvalidName) {
			t.Errorf("ValidateName(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestInstanceDerivations(t *testing.T) {
	inst := Instance{Name: "acme-staging", BaseDir: "/srv/panel", Prefix: "moguard"}

	if got := inst.Dir(); got != "/srv/panel/acme-staging" {
		t.Errorf("Dir() = %q", got)
	}
	if got := inst.Database(); got != "moguard_acme_staging" {
		t.Errorf("Database() = %q", got)
	}
	if got := inst.DBUser(); got != "moguard_acme_staging" {
		t.Errorf("DBUser() = %q", got)
	}
	if got := inst.Unit(); got != "moguard-acme-staging.service" {
		t.Errorf("Unit() = %q", got)
	}
	if got := inst.LogPath(); got != "/srv/panel/acme-staging/acme-staging.log" {
		t.Errorf("LogPath() = %q", got)
	}
	if got := inst.EnvPath(); got != "/srv/panel/acme-staging/.env" {
		t.Errorf("EnvPath() = %q", got)
	}
	if got := inst.WebhookHost("panel.example.com"); got != "acme-staging.panel.example.com" {
		t.Errorf("WebhookHost() = %q", got)
	}
}
