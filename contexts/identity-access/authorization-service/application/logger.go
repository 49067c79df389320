package application

import (
	"errors"
	"log/slog"

	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
)

const ModuleName = "identity-access/authorization-service"

var callerErrors = []error{
	domainerrors.ErrInvalidPermission,
	domainerrors.ErrInvalidBatchSize,
	domainerrors.ErrInvalidUserID,
	domainerrors.ErrInvalidRoleID,
	domainerrors.ErrInvalidAdminID,
	domainerrors.ErrInvalidExpiry,
	domainerrors.ErrIdempotencyKeyRequired,
	domainerrors.ErrRoleNotFound,
	domainerrors.ErrRoleAlreadyAssigned,
	domainerrors.ErrRoleNotAssigned,
	domainerrors.ErrIdempotencyConflict,
	domainerrors.ErrForbidden,
}

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// FailureLevel is Warn for rejected requests and Error for storage or cache
// faults.
func FailureLevel(err error) slog.Level {
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return slog.LevelWarn
		}
	}
	return slog.LevelError
}
