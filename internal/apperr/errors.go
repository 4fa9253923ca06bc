package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// Catalog load failures. All are fatal: no partial catalog is ever
	// returned. The typed errors in internal/catalog wrap these and carry
	// the offending record.
	ErrMalformedManifest  = errors.New("malformed manifest")
	ErrDuplicateSkill     = errors.New("duplicate skill")
	ErrDanglingEscalation = errors.New("dangling escalation")
)
