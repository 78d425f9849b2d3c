package types

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)
	ErrDocumentNotFound     = fmt.Errorf("document %w", ErrNotFound)
	ErrRevisionNotFound     = fmt.Errorf("revision %w", ErrNotFound)
	ErrTransmittalNotFound  = fmt.Errorf("transmittal %w", ErrNotFound)

	ErrOrganizationExists = fmt.Errorf("organization name %w", ErrConflict)
	ErrEmailTaken         = fmt.Errorf("email %w", ErrConflict)
	ErrDocumentExists     = fmt.Errorf("document number %w in project", ErrConflict)
	ErrRevisionLinked     = fmt.Errorf("transmittal revision link %w", ErrConflict)

	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError wraps ErrValidation with a message describing the field or
// rule that failed.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
