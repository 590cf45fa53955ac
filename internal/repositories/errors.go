package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"debo-engineering/job-portal/internal/apperrors"
)

// wrapError maps driver errors to typed failures and wraps the rest.
func wrapError(err error, resource, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NewNotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewConflict(fmt.Sprintf("%s already exists", resource))
	default:
		if _, ok := apperrors.As(err); ok {
			return err
		}
		return fmt.Errorf("failed to %s: %w", action, err)
	}
}
