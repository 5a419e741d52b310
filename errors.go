// Package graphkb implements the query-compilation and record-access core
// of a biomedical knowledge-base API that sits in front of a multi-model
// graph store: schema validation, a JSON-to-SQL query builder, soft-delete
// record operations, session pooling, and class/record permissions.
package graphkb

import (
	"errors"
	"fmt"
)

// Sentinel decisions. Every concrete error type below is Is-compatible
// with exactly one of these, so callers can branch with errors.Is without
// needing the concrete type.
var (
	// ErrValidation marks a bad input shape, bad cast, or an unknown
	// property/operator/edge/class reference.
	ErrValidation = errors.New("graphkb: validation error")

	// ErrNoRecordFound marks a select that required at least one result
	// but returned none, or a reference to an unknown record identifier.
	ErrNoRecordFound = errors.New("graphkb: no record found")

	// ErrMultipleRecordsFound marks a select that required exactly one
	// result but returned more than one.
	ErrMultipleRecordsFound = errors.New("graphkb: multiple records found")

	// ErrRecordExists marks an active-index collision or a store-level
	// unique constraint violation on create.
	ErrRecordExists = errors.New("graphkb: record exists")

	// ErrPermission marks a denial from the class-level permission
	// bitmask or a record's group restrictions.
	ErrPermission = errors.New("graphkb: permission denied")

	// ErrAuthentication marks a missing or invalid credential. Token
	// minting itself is an external collaborator; this sentinel exists
	// so the record/session layers can surface an auth failure they
	// observe (e.g. an expired session) in the same taxonomy.
	ErrAuthentication = errors.New("graphkb: authentication error")

	// ErrNotImplemented marks an operation that is structurally
	// forbidden, such as updating an edge class in place.
	ErrNotImplemented = errors.New("graphkb: not implemented")

	// ErrDatabaseConnection marks a session-pool or driver failure.
	ErrDatabaseConnection = errors.New("graphkb: database connection error")
)

// ValidationError reports a bad input shape, bad cast, or unknown
// property/operator/edge/class reference. Payload carries the offending
// value so callers can render a precise message without re-deriving it.
type ValidationError struct {
	// Subject names what was being validated, e.g. a property name,
	// an operator, or an edge-class name.
	Subject string
	// Value is the offending input, if any.
	Value any
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("graphkb: validation error: %s", e.Reason)
	}
	return fmt.Sprintf("graphkb: validation error: %s: %s (value=%v)", e.Subject, e.Reason, e.Value)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a ValidationError for subject with reason.
func NewValidationError(subject, reason string, value any) *ValidationError {
	return &ValidationError{Subject: subject, Value: value, Reason: reason}
}

// NoRecordFoundError reports that a select expecting at least N results
// returned fewer, or that a recordId does not resolve.
type NoRecordFoundError struct {
	Class string
	Query string // rendered SQL or recordId, for diagnostics
}

func (e *NoRecordFoundError) Error() string {
	if e.Class == "" {
		return "graphkb: no record found"
	}
	return fmt.Sprintf("graphkb: no record found for class %q", e.Class)
}

// Is reports whether target is ErrNoRecordFound.
func (e *NoRecordFoundError) Is(target error) bool { return target == ErrNoRecordFound }

// NewNoRecordFoundError returns a NoRecordFoundError for class.
func NewNoRecordFoundError(class, query string) *NoRecordFoundError {
	return &NoRecordFoundError{Class: class, Query: query}
}

// MultipleRecordsFoundError reports that a select expecting exactly one
// result (exactlyN=1) returned more than one.
type MultipleRecordsFoundError struct {
	Class string
	Count int
}

func (e *MultipleRecordsFoundError) Error() string {
	return fmt.Sprintf("graphkb: multiple records found for class %q (got %d, expected 1)", e.Class, e.Count)
}

// Is reports whether target is ErrMultipleRecordsFound.
func (e *MultipleRecordsFoundError) Is(target error) bool {
	return target == ErrMultipleRecordsFound
}

// NewMultipleRecordsFoundError returns a MultipleRecordsFoundError.
func NewMultipleRecordsFoundError(class string, count int) *MultipleRecordsFoundError {
	return &MultipleRecordsFoundError{Class: class, Count: count}
}

// RecordExistsError reports an active-index collision detected by a
// pre-select, or a store-level unique-constraint violation surfaced after
// losing a create race.
type RecordExistsError struct {
	Class       string
	ActiveProps map[string]any
}

func (e *RecordExistsError) Error() string {
	return fmt.Sprintf("graphkb: active record already exists for class %q with %v", e.Class, e.ActiveProps)
}

// Is reports whether target is ErrRecordExists.
func (e *RecordExistsError) Is(target error) bool { return target == ErrRecordExists }

// NewRecordExistsError returns a RecordExistsError.
func NewRecordExistsError(class string, activeProps map[string]any) *RecordExistsError {
	return &RecordExistsError{Class: class, ActiveProps: activeProps}
}

// PermissionError reports a class-permission bitmask or record
// group-restriction denial.
type PermissionError struct {
	Class string
	Op    string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("graphkb: permission denied: %s on %s", e.Op, e.Class)
}

// Is reports whether target is ErrPermission.
func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

// NewPermissionError returns a PermissionError.
func NewPermissionError(class, op string) *PermissionError {
	return &PermissionError{Class: class, Op: op}
}

// AuthenticationError reports a missing or invalid credential observed by
// this module (minting/verifying tokens is an external collaborator).
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("graphkb: authentication error: %s", e.Reason)
}

// Is reports whether target is ErrAuthentication.
func (e *AuthenticationError) Is(target error) bool { return target == ErrAuthentication }

// NewAuthenticationError returns an AuthenticationError.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{Reason: reason}
}

// NotImplementedError reports an operation that is structurally
// forbidden, e.g. updating an edge class in place.
type NotImplementedError struct {
	Op     string
	Reason string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("graphkb: not implemented: %s: %s", e.Op, e.Reason)
}

// Is reports whether target is ErrNotImplemented.
func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }

// NewNotImplementedError returns a NotImplementedError.
func NewNotImplementedError(op, reason string) *NotImplementedError {
	return &NotImplementedError{Op: op, Reason: reason}
}

// DatabaseConnectionError reports a session-pool or driver failure.
// These are infrastructure errors; the session layer returns them to the
// caller without retrying.
type DatabaseConnectionError struct {
	Err error
}

func (e *DatabaseConnectionError) Error() string {
	return fmt.Sprintf("graphkb: database connection error: %v", e.Err)
}

// Unwrap returns the underlying driver error.
func (e *DatabaseConnectionError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDatabaseConnection.
func (e *DatabaseConnectionError) Is(target error) bool { return target == ErrDatabaseConnection }

// NewDatabaseConnectionError returns a DatabaseConnectionError wrapping err.
func NewDatabaseConnectionError(err error) *DatabaseConnectionError {
	return &DatabaseConnectionError{Err: err}
}

// HTTPStatus maps an error from this taxonomy to the HTTP status code the
// (external) routing layer should return for it, per spec §7. Errors
// outside the taxonomy map to 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrValidation):
		return 400
	case errors.Is(err, ErrAuthentication):
		return 401
	case errors.Is(err, ErrPermission):
		return 403
	case errors.Is(err, ErrNoRecordFound):
		return 404
	case errors.Is(err, ErrRecordExists):
		return 409
	case errors.Is(err, ErrNotImplemented):
		return 501
	default:
		return 500
	}
}

// IsRecoverable reports whether err is one of the six recoverable kinds
// (returned to the caller unchanged) as opposed to an infrastructure
// error (AuthenticationError, DatabaseConnectionError). The session layer
// does not retry either kind.
func IsRecoverable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNoRecordFound),
		errors.Is(err, ErrMultipleRecordsFound),
		errors.Is(err, ErrRecordExists),
		errors.Is(err, ErrPermission),
		errors.Is(err, ErrNotImplemented):
		return true
	default:
		return false
	}
}
