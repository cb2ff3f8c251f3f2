package handlers

import (
	"errors"

	"github.com/spec-kit/dealership/internal/service"
	apperrors "github.com/spec-kit/dealership/pkg/util"
)

// serviceError translates service sentinels into the HTTP error taxonomy.
// Anything unrecognised passes through and ends up as an internal error.
func serviceError(err error) error {
	var verr *service.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		return apperrors.NewValidationError(verr.Error(), map[string]any{verr.Field: verr.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized(service.ErrInvalidCredentials.Error())
	case errors.Is(err, service.ErrLoginThrottled):
		return apperrors.NewTooManyRequests(err.Error())
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, service.ErrInvalidRole):
		return apperrors.NewValidationError(err.Error(), map[string]any{"role": "must be one of customer, staff, super_staff"})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrSelfModification):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, service.ErrIdentityNotFound):
		return apperrors.NewNotFound("identity", nil)
	case errors.Is(err, service.ErrVehicleNotFound):
		return apperrors.NewNotFound("vehicle", nil)
	}
	return err
}
