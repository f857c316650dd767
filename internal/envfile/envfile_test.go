package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moguard/subctl/internal/errors"
)

func TestRenderSubstitutesValues(t *testing.T) {
	values := Values{
		KeyDatabaseName:     "moguard_acme",
		KeyDatabaseUsername: "moguard_acme",
		KeyDatabasePassword: "s3cret",
		KeyDatabaseHost:     "localhost",
		KeyDatabasePort:     "5432",
		KeyWebhookHost:      "acme.example.com",
		KeyJWTSecret:        "jwtsecret",
	}
	rendered := Render(DefaultTemplate, values)

	for _, want := range []string{
		"DATABASE_NAME=moguard_acme",
		"DATABASE_USERNAME=moguard_acme",
		"DATABASE_PASSWORD=s3cret",
		"WEBHOOK_HOST=acme.example.com",
		"JWT_SECRET_KEY=jwtsecret",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() missing %q:\n%s", want, rendered)
		}
	}

	// Untouched application settings survive.
	if !strings.Contains(rendered, "UVICORN_PORT=8000") {
		t.Errorf("Render() dropped unrelated key:\n%s", rendered)
	}
}

func TestRenderReplacesExistingValues(t *testing.T) {
	template := "DATABASE_NAME=old_value\nOTHER=keep\n"
	rendered := Render(template, Values{KeyDatabaseName: "new_value"})

	if strings.Contains(rendered, "old_value") {
		t.Errorf("Render() kept the template value:\n%s", rendered)
	}
	if !strings.Contains(rendered, "DATABASE_NAME=new_value") {
		t.Errorf("Render() did not substitute:\n%s", rendered)
	}
	if !strings.Contains(rendered, "OTHER=keep") {
		t.Errorf("Render() mangled unrelated line:\n%s", rendered)
	}
}

func TestRenderAppendsMissingKeys(t *testing.T) {
	template := "DATABASE_NAME=\n"
	rendered := Render(template, Values{
		KeyDatabaseName: "moguard_acme",
		KeyJWTSecret:    "jwtsecret",
	})
	if !strings.Contains(rendered, "JWT_SECRET_KEY=jwtsecret") {
		t.Errorf("Render() did not append missing key:\n%s", rendered)
	}
}

func TestRenderPreservesCommentsAndBlanks(t *testing.T) {
	template := "# database settings\n\nDATABASE_NAME=\n"
	rendered := Render(template, Values{KeyDatabaseName: "x"})
	if !strings.Contains(rendered, "# database settings") {
		t.Errorf("Render() dropped comment:\n%s", rendered)
	}
}

func TestLoadAndDatabaseValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	contents := Render(DefaultTemplate, Values{
		KeyDatabaseName:     "moguard_acme",
		KeyDatabaseUsername: "moguard_acme",
		KeyDatabasePassword: "s3cret",
		KeyDatabaseHost:     "localhost",
		KeyDatabasePort:     "5432",
	})
	if err := Write(path, contents); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat env file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("env file permissions = %o, want 600", perm)
	}

	vars, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	name, user, password, host, port, err := DatabaseValues(vars)
	if err != nil {
		t.Fatalf("DatabaseValues() error = %v", err)
	}
	if name != "moguard_acme" || user != "moguard_acme" || password != "s3cret" ||
		host != "localhost" || port != "5432" {
		t.Errorf("DatabaseValues() = %q %q %q %q %q", name, user, password, host, port)
	}
}

func TestDatabaseValuesMissingKey(t *testing.T) {
	vars := map[string]string{
		KeyDatabaseName:     "moguard_acme",
		KeyDatabaseUsername: "moguard_acme",
		// password missing
		KeyDatabaseHost: "localhost",
		KeyDatabasePort: "5432",
	}
	_, _, _, _, _, err := DatabaseValues(vars)
	if err == nil {
		t.Fatal("DatabaseValues() expected error for missing password")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("DatabaseValues() error = %v, want validation error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope", ".env"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
