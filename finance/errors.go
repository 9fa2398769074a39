/*
errors.go - Centralized error types for the obligation engine

ERROR CATEGORIES:
  1. Validation errors - Rejected before any write, never partially applied
  2. Not-found errors  - Referencing a missing parent entity
  3. Conflicts         - Duplicate document numbers / duplicate reminders

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, finance.ErrDuplicateNumber) { ... }

  The API layer uses IsClientError / IsNotFound / IsConflict to pick
  HTTP status codes.
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrObligationNotFound is returned when a referenced obligation
	// doesn't exist.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrPayableNotFound is returned when a referenced payable doesn't exist.
	ErrPayableNotFound = errors.New("payable not found")

	// ErrReceivableNotFound is returned when a referenced receivable
	// doesn't exist.
	ErrReceivableNotFound = errors.New("receivable not found")

	// ErrReminderNotFound is returned when a referenced reminder doesn't exist.
	ErrReminderNotFound = errors.New("reminder not found")

	// ErrDuplicateNumber is returned when a document number collides with
	// one already issued. The ledger retries allocation once with a fresh
	// read before surfacing this.
	ErrDuplicateNumber = errors.New("duplicate document number")

	// ErrDuplicateReminder is returned when a (parent, kind) reminder pair
	// already exists.
	ErrDuplicateReminder = errors.New("duplicate reminder for parent and kind")

	// ErrReminderAlreadySent is returned on a second mark-sent attempt.
	// The sent transition is one-way.
	ErrReminderAlreadySent = errors.New("reminder already sent")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a business-rule violation on a named field.
// Always raised before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NumberConflictError reports a sequence collision that survived the retry.
// Recurring collisions indicate a genuine persistent problem, not a race.
type NumberConflictError struct {
	Kind   DocumentKind
	Number string
}

func (e *NumberConflictError) Error() string {
	return fmt.Sprintf("document number %s already issued for %s after retry", e.Number, e.Kind)
}

func (e *NumberConflictError) Unwrap() error { return ErrDuplicateNumber }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrObligationNotFound) ||
		errors.Is(err, ErrPayableNotFound) ||
		errors.Is(err, ErrReceivableNotFound) ||
		errors.Is(err, ErrReminderNotFound)
}

// IsConflict returns true if the error indicates a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateNumber) ||
		errors.Is(err, ErrDuplicateReminder) ||
		errors.Is(err, ErrReminderAlreadySent)
}
