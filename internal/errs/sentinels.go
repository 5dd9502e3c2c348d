// Package errs contains sentinel errors shared by stores, services and handlers
// so that HTTP status mapping stays stable across layers.
package errs

import "errors"

var (
	// ErrInvalidInput marks a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyExists indicates a unique constraint violation (email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated caller acting on someone else's data.
	ErrForbidden = errors.New("forbidden")

	// ErrLedgerSync indicates a message was stored but a contact ledger
	// upsert failed afterwards.
	ErrLedgerSync = errors.New("contact ledger out of sync")
)
