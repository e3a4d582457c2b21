// Package domainerr defines the typed error taxonomy shared by the employee
// and survey slices. Controllers classify these with errors.As to choose a
// response status; anything outside the taxonomy is treated as internal.
package domainerr

import "fmt"

// ValidationError reports input that fails schema validation or a cross-field
// business rule. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// NotFoundError reports a referenced entity that does not exist or is outside
// the caller's organization scope.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports a state collision: duplicate email, an already
// inactive employee, a repeated survey response.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string { return e.Reason }

// StateTransitionError reports an attempt to move an entity through a
// transition its state machine does not permit.
type StateTransitionError struct {
	Entity string
	From   string
	To     string
	// Reason, when set, replaces the generic transition message.
	Reason string
}

func (e StateTransitionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s cannot transition from %q to %q", e.Entity, e.From, e.To)
}

// NotAvailableError reports an operation attempted outside its validity
// window, such as a response to a survey before its start date.
type NotAvailableError struct {
	Reason string
}

func (e NotAvailableError) Error() string { return e.Reason }
