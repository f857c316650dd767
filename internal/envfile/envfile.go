// Package envfile renders and reads per-instance .env files.
package envfile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/moguard/subctl/internal/errors"
)

// Keys the renderer substitutes into the template.
const (
	KeyDatabaseName     = "DATABASE_NAME"
	KeyDatabaseUsername = "DATABASE_USERNAME"
	KeyDatabasePassword = "DATABASE_PASSWORD"
	KeyDatabaseHost     = "DATABASE_HOST"
	KeyDatabasePort     = "DATABASE_PORT"
	KeyWebhookHost      = "WEBHOOK_HOST"
	KeyJWTSecret        = "JWT_SECRET_KEY"
)

// DefaultTemplate is used when no template file is configured. It carries
// the full set of keys the application reads, with placeholders for the
// per-instance values.
const DefaultTemplate = `DATABASE_NAME=
DATABASE_USERNAME=
DATABASE_PASSWORD=
DATABASE_HOST=localhost
DATABASE_PORT=5432

UVICORN_HOST=0.0.0.0
UVICORN_PORT=8000

WEBHOOK_HOST=
JWT_SECRET_KEY=
`

// Values maps env keys to the per-instance values to substitute.
type Values map[string]string

// Render substitutes values into the template line by line. A line whose key
// appears in values has its value replaced; comments, blank lines, and
// unrelated keys pass through untouched. Keys missing from the template are
// appended so the rendered file is always complete.
func Render(template string, values Values) string {
	seen := make(map[string]bool, len(values))
	lines := strings.Split(template, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if value, found := values[key]; found {
			lines[i] = key + "=" + value
			seen[key] = true
		}
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	missing := make([]string, 0, len(values))
	for key := range values {
		if !seen[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	for _, key := range missing {
		out += key + "=" + values[key] + "\n"
	}
	return out
}

// LoadTemplate reads the template file at path, falling back to
// DefaultTemplate when path is empty.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate, nil
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read env template %s", path)
	}
	return string(contents), nil
}

// Write writes the rendered contents to path. The file carries database
// credentials, so it is created readable by the owner only.
func Write(path, contents string) error {
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return errors.Wrapf(err, "failed to write env file %s", path)
	}
	return nil
}

// Load parses the env file at path into a key/value map.
func Load(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("env file", path).WithCause(err)
		}
		return nil, errors.Wrapf(err, "failed to parse env file %s", path)
	}
	return vars, nil
}

// DatabaseValues extracts the database connection keys from a parsed env
// file, erroring on any that are missing or blank.
func DatabaseValues(vars map[string]string) (name, user, password, host, port string, err error) {
	required := []string{
		KeyDatabaseName,
		KeyDatabaseUsername,
		KeyDatabasePassword,
		KeyDatabaseHost,
		KeyDatabasePort,
	}
	for _, key := range required {
		if strings.TrimSpace(vars[key]) == "" {
			return "", "", "", "", "", errors.NewValidationError(
				fmt.Sprintf("env file is missing %s", key)).WithField(key)
		}
	}
	return vars[KeyDatabaseName], vars[KeyDatabaseUsername], vars[KeyDatabasePassword],
		vars[KeyDatabaseHost], vars[KeyDatabasePort], nil
}
