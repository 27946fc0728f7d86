package repository

import "errors"

// Store-level failure kinds. Handlers map these onto HTTP statuses; the
// mover returns them unchanged so callers can tell recoverable conflicts
// apart from broken data.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrBoardNotFound = errors.New("board not found")
	ErrListNotFound  = errors.New("list not found")
	ErrCardNotFound  = errors.New("card not found")

	// ErrLockTimeout is returned when a row lock could not be acquired
	// within the configured wait bound. The caller may retry.
	ErrLockTimeout = errors.New("row lock wait exceeded")

	// ErrStaleReference is returned when a referenced parent vanished or was
	// tombstoned between request and validation.
	ErrStaleReference = errors.New("referenced parent no longer available")

	// ErrInvariant is returned when a foreign key points at a missing row.
	// Always a bug in storage, never a user error; operators should alert
	// on it.
	ErrInvariant = errors.New("hierarchy invariant violated")
)
