package application

import (
	"log/slog"

	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
)

const ModuleName = "governance/treasury-governor"

// ResolveLogger guarantees a non-nil logger for application/worker code paths.
func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogFailure records a failed operation. Caller mistakes and rejected state
// transitions are warnings; infrastructure faults and ledger inconsistencies
// are errors.
func LogFailure(logger *slog.Logger, msg string, event string, err error, attrs ...any) {
	kind := domainerrors.KindOf(err)
	args := append([]any{
		"event", event,
		"module", ModuleName,
		"layer", "application",
		"error_kind", string(kind),
		"error", err.Error(),
	}, attrs...)
	switch kind {
	case domainerrors.KindInternal, domainerrors.KindLedgerInconsistency:
		ResolveLogger(logger).Error(msg, args...)
	default:
		ResolveLogger(logger).Warn(msg, args...)
	}
}
