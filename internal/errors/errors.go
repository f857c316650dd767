// Package errors provides centralized error definitions and error handling
// utilities for the subctl codebase. It defines domain-specific errors for the
// external collaborators (git, service supervisor, database), semantic error
// types, constructors with context wrapping, and classification helpers.
//
// Domain-specific errors represent failures of a specific collaborator:
//   - GitError: version-control operations (clone, fetch, checkout, reset)
//   - ServiceError: service supervisor operations (units, start/stop, state)
//   - DatabaseError: database administration (roles, databases, SQL import)
//
// Semantic errors represent common conditions:
//   - NotFoundError: resource not found
//   - AlreadyExistsError: resource already exists
//   - ValidationError: invalid input or state
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrInstanceNotFound) { ... }
//
//	var gitErr *errors.GitError
//	if errors.As(err, &gitErr) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Instance-related sentinel errors
var (
	// ErrInstanceNotFound indicates that no instance directory exists for a name.
	ErrInstanceNotFound = New("instance not found")
	// ErrInstanceExists indicates that an instance with the name already exists.
	ErrInstanceExists = New("instance already exists")
	// ErrInstanceLocked indicates that another invocation holds the instance lock.
	ErrInstanceLocked = New("instance is locked by another invocation")
	// ErrInvalidName indicates an instance name that is not filesystem/DNS safe.
	ErrInvalidName = New("invalid instance name")
)

// Git-related sentinel errors
var (
	// ErrBranchNotFound indicates that a branch does not exist on the remote.
	ErrBranchNotFound = New("branch not found on remote")
	// ErrCloneFailed indicates that cloning the repository failed.
	ErrCloneFailed = New("clone failed")
)

// Service-related sentinel errors
var (
	// ErrUnitNotFound indicates that no service unit is registered for an instance.
	ErrUnitNotFound = New("service unit not found")
	// ErrServiceInactive indicates that a service is not currently active.
	ErrServiceInactive = New("service is not active")
)

// Database-related sentinel errors
var (
	// ErrDatabaseExists indicates that a database with the name already exists.
	ErrDatabaseExists = New("database already exists")
	// ErrImportFailed indicates that executing a SQL import failed.
	ErrImportFailed = New("sql import failed")
)

// General sentinel errors
var (
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
	// ErrOperationFailed indicates a general operation failure.
	ErrOperationFailed = New("operation failed")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsUserFacing returns whether the error is safe to show operators verbatim.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// GitError represents errors from version-control operations.
//
// Example:
//
//	err := errors.NewGitError("failed to clone", cause).
//	    WithBranch("develop").
//	    WithGitOutput(string(output))
type GitError struct {
	baseError
	Branch    string
	Dir       string
	GitOutput string // Captured git command output
}

// NewGitError creates a new GitError.
func NewGitError(message string, cause error) *GitError {
	return &GitError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithBranch adds a branch name to the error context.
func (e *GitError) WithBranch(branch string) *GitError {
	e.Branch = branch
	return e
}

// WithDir adds the working directory to the error context.
func (e *GitError) WithDir(dir string) *GitError {
	e.Dir = dir
	return e
}

// WithGitOutput adds captured git output to the error context.
func (e *GitError) WithGitOutput(output string) *GitError {
	e.GitOutput = strings.TrimSpace(output)
	return e
}

// Error returns the formatted error message.
func (e *GitError) Error() string {
	var parts []string
	if e.Branch != "" {
		parts = append(parts, fmt.Sprintf("branch=%s", e.Branch))
	}
	if e.Dir != "" {
		parts = append(parts, fmt.Sprintf("dir=%s", e.Dir))
	}

	prefix := "git error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("git error [%s]", strings.Join(parts, ", "))
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.GitOutput != "" {
		msg = fmt.Sprintf("%s\ngit output: %s", msg, e.GitOutput)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *GitError) Is(target error) bool {
	if _, ok := target.(*GitError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ServiceError represents errors from the service supervisor.
//
// Example:
//
//	err := errors.NewServiceError("failed to start unit", cause).WithUnit("moguard-acme.service")
type ServiceError struct {
	baseError
	Unit   string
	Output string // Captured systemctl output
}

// NewServiceError creates a new ServiceError.
func NewServiceError(message string, cause error) *ServiceError {
	return &ServiceError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithUnit adds a unit name to the error context.
func (e *ServiceError) WithUnit(unit string) *ServiceError {
	e.Unit = unit
	return e
}

// WithOutput adds captured supervisor output to the error context.
func (e *ServiceError) WithOutput(output string) *ServiceError {
	e.Output = strings.TrimSpace(output)
	return e
}

// Error returns the formatted error message.
func (e *ServiceError) Error() string {
	prefix := "service error"
	if e.Unit != "" {
		prefix = fmt.Sprintf("service error [unit=%s]", e.Unit)
	}

	msg := e.message
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s\nsupervisor output: %s", msg, e.Output)
	}

	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Is checks if this error matches the target.
func (e *ServiceError) Is(target error) bool {
	if _, ok := target.(*ServiceError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// DatabaseError represents errors from database administration.
//
// Example:
//
//	err := errors.NewDatabaseError("failed to create role", cause).WithDatabase("moguard_acme")
type DatabaseError struct {
	baseError
	Database string
	Role     string
}

// NewDatabaseError creates a new DatabaseError.
func NewDatabaseError(message string, cause error) *DatabaseError {
	return &DatabaseError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			userFacing: true,
		},
	}
}

// WithDatabase adds a database name to the error context.
func (e *DatabaseError) WithDatabase(name string) *DatabaseError {
	e.Database = name
	return e
}

// WithRole adds a role name to the error context.
func (e *DatabaseError) WithRole(role string) *DatabaseError {
	e.Role = role
	return e
}

// Error returns the formatted error message.
func (e *DatabaseError) Error() string {
	var parts []string
	if e.Database != "" {
		parts = append(parts, fmt.Sprintf("database=%s", e.Database))
	}
	if e.Role != "" {
		parts = append(parts, fmt.Sprintf("role=%s", e.Role))
	}

	prefix := "database error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("database error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *DatabaseError) Is(target error) bool {
	if _, ok := target.(*DatabaseError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Semantic Errors
// -----------------------------------------------------------------------------

// NotFoundError represents a resource that could not be found.
//
// Example:
//
//	err := errors.NewNotFoundError("instance", "acme")
//	fmt.Println(err) // "instance 'acme' not found"
type NotFoundError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resourceType, resourceID string) *NotFoundError {
	return &NotFoundError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' not found", resourceType, resourceID),
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *NotFoundError) WithCause(cause error) *NotFoundError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *NotFoundError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' not found: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' not found", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *NotFoundError) Is(target error) bool {
	if _, ok := target.(*NotFoundError); ok {
		return true
	}
	if errors.Is(target, ErrInstanceNotFound) && e.ResourceType == "instance" {
		return true
	}
	return e.baseError.Is(target)
}

// AlreadyExistsError represents a resource that already exists.
//
// Example:
//
//	err := errors.NewAlreadyExistsError("instance", "acme")
//	fmt.Println(err) // "instance 'acme' already exists"
type AlreadyExistsError struct {
	baseError
	ResourceType string
	ResourceID   string
}

// NewAlreadyExistsError creates a new AlreadyExistsError.
func NewAlreadyExistsError(resourceType, resourceID string) *AlreadyExistsError {
	return &AlreadyExistsError{
		baseError: baseError{
			message:    fmt.Sprintf("%s '%s' already exists", resourceType, resourceID),
			userFacing: true,
		},
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
}

// WithCause adds a cause to the error.
func (e *AlreadyExistsError) WithCause(cause error) *AlreadyExistsError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *AlreadyExistsError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s '%s' already exists: %v", e.ResourceType, e.ResourceID, e.cause)
	}
	return fmt.Sprintf("%s '%s' already exists", e.ResourceType, e.ResourceID)
}

// Is checks if this error matches the target.
func (e *AlreadyExistsError) Is(target error) bool {
	if _, ok := target.(*AlreadyExistsError); ok {
		return true
	}
	if errors.Is(target, ErrInstanceExists) && e.ResourceType == "instance" {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents invalid input or state.
//
// Example:
//
//	err := errors.NewValidationError("line count must be a non-negative integer").
//	    WithField("lineCount").WithValue("abc")
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:    message,
			userFacing: true,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	if errors.Is(target, ErrInvalidInput) {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// userFacer is implemented by errors that know whether they are safe to show.
type userFacer interface {
	IsUserFacing() bool
}

// IsUserFacing returns true if the error message is safe to display to
// operators verbatim. Unknown errors are treated as internal.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}

	var uf userFacer
	if As(err, &uf) {
		return uf.IsUserFacing()
	}

	var notFound *NotFoundError
	var alreadyExists *AlreadyExistsError
	var validation *ValidationError

	return As(err, &notFound) || As(err, &alreadyExists) || As(err, &validation)
}

// IsDomainError returns true if the error is a collaborator-specific error
// (GitError, ServiceError, or DatabaseError).
func IsDomainError(err error) bool {
	if err == nil {
		return false
	}

	var gitErr *GitError
	var svcErr *ServiceError
	var dbErr *DatabaseError

	return As(err, &gitErr) || As(err, &svcErr) || As(err, &dbErr)
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to provision instance")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
//
// Example:
//
//	err := errors.Wrapf(baseErr, "failed to provision instance %s", name)
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
