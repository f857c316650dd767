// Package pgadmin performs Postgres administration for instance databases:
// role and database provisioning, teardown, and SQL imports.
//
// Role and database names cannot be bound as query parameters, so they are
// quoted with pq.QuoteIdentifier (and passwords with pq.QuoteLiteral) before
// interpolation. All names are derived from validated instance names, but the
// quoting keeps the statements safe regardless.
package pgadmin

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/moguard/subctl/internal/errors"
)

// Credentials identifies a per-instance database connection.
type Credentials struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// DSN returns the lib/pq connection string for the credentials.
func (c Credentials) DSN() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		c.Host, c.Port, c.Database, c.User, c.Password)
}

// Admin defines the database administration operations the lifecycle
// manager needs.
type Admin interface {
	// CreateRole creates a login role with the given password.
	CreateRole(ctx context.Context, role, password string) error

	// CreateDatabase creates a database owned by the given role.
	CreateDatabase(ctx context.Context, name, owner string) error

	// DropDatabase drops the database if it exists.
	DropDatabase(ctx context.Context, name string) error

	// DropRole drops the role if it exists.
	DropRole(ctx context.Context, role string) error

	// TerminateConnections kills every live connection to the database.
	TerminateConnections(ctx context.Context, name string) error

	// GrantAll grants all privileges on the database to the role.
	GrantAll(ctx context.Context, name, role string) error

	// ExecFileAs executes the SQL file at path connected as the given
	// credentials, so imported objects are owned by the instance role.
	ExecFileAs(ctx context.Context, creds Credentials, path string) error

	// Close releases the administration connection.
	Close() error
}

// SQLAdmin implements Admin over an administration (superuser) connection.
type SQLAdmin struct {
	db *sqlx.DB
}

// Connect opens the administration connection using the given DSN.
func Connect(adminDSN string) (*SQLAdmin, error) {
	if adminDSN == "" {
		return nil, errors.NewValidationError("database admin DSN is not configured").
			WithField("database.admin_dsn")
	}
	db, err := sqlx.Connect("postgres", adminDSN)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to connect to database server", err)
	}
	return &SQLAdmin{db: db}, nil
}

// Close releases the administration connection.
func (a *SQLAdmin) Close() error {
	return a.db.Close()
}

// CreateRole creates a login role with the given password.
func (a *SQLAdmin) CreateRole(ctx context.Context, role, password string) error {
	stmt := fmt.Sprintf("CREATE ROLE %s WITH LOGIN PASSWORD %s",
		pq.QuoteIdentifier(role), pq.QuoteLiteral(password))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewDatabaseError("failed to create role", err).WithRole(role)
	}
	return nil
}

// CreateDatabase creates a database owned by the given role.
func (a *SQLAdmin) CreateDatabase(ctx context.Context, name, owner string) error {
	stmt := fmt.Sprintf("CREATE DATABASE %s WITH OWNER %s",
		pq.QuoteIdentifier(name), pq.QuoteIdentifier(owner))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewDatabaseError("failed to create database", err).
			WithDatabase(name).
			WithRole(owner)
	}
	return nil
}

// DropDatabase drops the database if it exists.
func (a *SQLAdmin) DropDatabase(ctx context.Context, name string) error {
	stmt := fmt.Sprintf("DROP DATABASE IF EXISTS %s", pq.QuoteIdentifier(name))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewDatabaseError("failed to drop database", err).WithDatabase(name)
	}
	return nil
}

// DropRole drops the role if it exists.
func (a *SQLAdmin) DropRole(ctx context.Context, role string) error {
	stmt := fmt.Sprintf("DROP ROLE IF EXISTS %s", pq.QuoteIdentifier(role))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewDatabaseError("failed to drop role", err).WithRole(role)
	}
	return nil
}

// TerminateConnections kills every live connection to the database.
// Required before dropping a database that the service may still hold open.
func (a *SQLAdmin) TerminateConnections(ctx context.Context, name string) error {
	const stmt = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()`
	if _, err := a.db.ExecContext(ctx, stmt, name); err != nil {
		return errors.NewDatabaseError("failed to terminate connections", err).WithDatabase(name)
	}
	return nil
}

// GrantAll grants all privileges on the database to the role.
func (a *SQLAdmin) GrantAll(ctx context.Context, name, role string) error {
	stmt := fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s",
		pq.QuoteIdentifier(name), pq.QuoteIdentifier(role))
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return errors.NewDatabaseError("failed to grant privileges", err).
			WithDatabase(name).
			WithRole(role)
	}
	return nil
}

// ExecFileAs executes the SQL file at path connected as the given
// credentials. Running as the instance role rather than the superuser keeps
// every imported object owned by the instance's database user.
func (a *SQLAdmin) ExecFileAs(ctx context.Context, creds Credentials, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return errors.NewDatabaseError("failed to read SQL file", err).
			WithDatabase(creds.Database)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", creds.DSN())
	if err != nil {
		return errors.NewDatabaseError("failed to connect as instance user", err).
			WithDatabase(creds.Database).
			WithRole(creds.User)
	}
	defer db.Close()

	// lib/pq uses the simple query protocol for parameterless Exec, so a
	// multi-statement dump executes in one round trip.
	if _, err := db.ExecContext(ctx, string(contents)); err != nil {
		return errors.NewDatabaseError("failed to execute SQL file",
			errors.Join(errors.ErrImportFailed, err)).
			WithDatabase(creds.Database).
			WithRole(creds.User)
	}
	return nil
}

// Ensure SQLAdmin satisfies the interface at compile time.
var _ Admin = (*SQLAdmin)(nil)
