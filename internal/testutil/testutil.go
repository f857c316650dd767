// Package testutil provides testing utilities for subctl tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupBaseDir creates a temporary base directory for instance layouts.
// It is cleaned up when the test completes.
func SetupBaseDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// SetupInstanceDir creates an instance directory under baseDir with an env
// file and a log file, the layout a successful install produces.
func SetupInstanceDir(t *testing.T, baseDir, name, envContents string) string {
	t.Helper()

	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create instance dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(envContents), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".log"), nil, 0o644); err != nil {
		t.Fatalf("failed to create log file: %v", err)
	}
	return dir
}

// EnvContents returns a complete instance env file for tests.
func EnvContents(name string) string {
	return "DATABASE_NAME=moguard_" + name + "\n" +
		"DATABASE_USERNAME=moguard_" + name + "\n" +
		"DATABASE_PASSWORD=secret\n" +
		"DATABASE_HOST=localhost\n" +
		"DATABASE_PORT=5432\n" +
		"WEBHOOK_HOST=" + name + ".example.com\n" +
		"JWT_SECRET_KEY=testsecret\n"
}
