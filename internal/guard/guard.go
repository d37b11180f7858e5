// Package guard implements the reusable access checks applied in front of
// request handlers. Role comparison is ordinal; ownership is never baked in
// here but passed as a boolean condition computed by the caller, which keeps
// the guard generic across every owned resource type.
package guard

import (
	"fmt"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

// Require fails when no subject was resolved or the subject's role does not
// reach the required ordinal level.
func Require(subject *models.Subject, required models.Role) error {
	if subject == nil {
		return appErrors.ErrUnauthorized
	}
	if !subject.Role.AtLeast(required) {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("requires %s role", required))
	}
	return nil
}

// RequireOr passes when the role requirement holds or the extra condition is
// true. Used for owner-or-moderator style checks.
func RequireOr(subject *models.Subject, required models.Role, condition bool) error {
	if subject == nil {
		return appErrors.ErrUnauthorized
	}
	if condition || subject.Role.AtLeast(required) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("requires %s role or ownership", required))
}

// RequireAnd passes only when both the role requirement and the extra
// condition hold.
func RequireAnd(subject *models.Subject, required models.Role, condition bool) error {
	if subject == nil {
		return appErrors.ErrUnauthorized
	}
	if condition && subject.Role.AtLeast(required) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("requires %s role", required))
}
