package course

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup key.
	ErrNotFound = errors.New("course: not found")

	// ErrSchemaNotReady is returned when the `courses` or `domains` table
	// does not exist yet, e.g. before the installer has run migrations.
	ErrSchemaNotReady = errors.New("course: schema not ready")
)
