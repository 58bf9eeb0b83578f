// Package integrity names the write-failure kinds shared by every entity
// service. A failing write surfaces exactly one of these and leaves no
// persisted side effects.
package integrity

import (
	"errors"
	"fmt"

	"github.com/smallbiznis/storefront/pkg/db"
	"gorm.io/gorm"
)

var (
	// ErrReferentialIntegrity reports a foreign reference that does not resolve.
	ErrReferentialIntegrity = errors.New("referential_integrity")

	// ErrProtectedReference reports a delete blocked by a protect-on-delete dependent.
	ErrProtectedReference = errors.New("protected_reference")

	// ErrUniquenessViolation reports a unique-field or unique-pair collision.
	ErrUniquenessViolation = errors.New("uniqueness_violation")

	// ErrValidation reports a field that fails its declared constraints.
	ErrValidation = errors.New("validation")

	// ErrNotFound reports a record that does not exist.
	ErrNotFound = errors.New("not_found")
)

// Validationf builds a validation error for a named field.
func Validationf(field, code string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, code)
}

// Protectedf builds a protected-reference error naming the blocking dependent.
func Protectedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProtectedReference, fmt.Sprintf(format, args...))
}

// Translate maps driver-level constraint failures onto the shared kinds.
// Uniqueness and referential checks live in the schema as well as in the
// services, so concurrent writers racing past the service checks still
// surface the right kind.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsDuplicateKeyErr(err):
		return fmt.Errorf("%w: %v", ErrUniquenessViolation, err)
	case db.IsForeignKeyErr(err):
		return fmt.Errorf("%w: %v", ErrReferentialIntegrity, err)
	case db.IsCheckConstraintErr(err):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return err
	}
}
