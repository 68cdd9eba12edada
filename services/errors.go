// services/errors.go - error kinds shared by the service layer
package services

import "errors"

var (
	// ErrValidation marks malformed or constraint-violating input.
	ErrValidation = errors.New("validation failed")

	// ErrAccessDenied marks a failed ownership or role check.
	ErrAccessDenied = errors.New("access denied")

	// ErrConflict marks resource conflicts: server in use, quota exceeded.
	ErrConflict = errors.New("resource conflict")

	// ErrNotFound marks a lookup miss with no side effects.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState marks a lifecycle transition out of a terminal state.
	ErrInvalidState = errors.New("invalid match state")
)
