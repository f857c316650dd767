package pgadmin

import (
	"testing"

	"github.com/moguard/subctl/internal/errors"
)

func TestCredentialsDSN(t *testing.T) {
	creds := Credentials{
		Host:     "localhost",
		Port:     5432,
		Database: "moguard_acme",
		User:     "moguard_acme",
		Password: "s3cret",
	}
	want := "host=localhost port=5432 dbname=moguard_acme user=moguard_acme password=s3cret sslmode=disable"
	if got := creds.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect("")
	if err == nil {
		t.Fatal("Connect(\"\") expected error")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Connect(\"\") error = %v, want validation error", err)
	}
}
