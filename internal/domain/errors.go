package domain

import "errors"

var (
	// ErrUnauthorized is returned when the backend rejects the session token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoSession is returned when no valid session is stored.
	ErrNoSession = errors.New("no active session")

	// ErrMissingField is returned when a required form field is blank.
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownTown is returned when a town is not in the registry.
	ErrUnknownTown = errors.New("unknown town")
	// ErrUnknownExport is returned for an unrecognised export kind.
	ErrUnknownExport = errors.New("unknown export")
)
