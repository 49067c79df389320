package workers

import (
	"context"
	"log/slog"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

// LedgerAuditor re-checks that category balances add up to the treasury
// total. A mismatch is fatal and needs a manual audit. Stores that rebuild
// the aggregate from a persisted snapshot already reject an unbalanced one
// while loading; that rejection comes back from View and is reported as the
// same fatal inconsistency.
type LedgerAuditor struct {
	Store  ports.LedgerStore
	Logger *slog.Logger
}

func (a LedgerAuditor) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(a.Logger)
	var snapshot entities.TreasurySnapshot
	if err := a.Store.View(ctx, func(g *services.Governance) error {
		snapshot = g.Treasury.Snapshot()
		return nil
	}); err != nil {
		if domainerrors.IsFatal(err) {
			logger.Error("governance ledger inconsistency detected",
				"event", "governance_ledger_inconsistent",
				"module", application.ModuleName,
				"layer", "worker",
				"source", "snapshot_load",
				"error", err.Error(),
			)
			return err
		}
		logger.Error("governance ledger audit read failed",
			"event", "governance_ledger_audit_read_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	var sum uint64
	for _, category := range snapshot.Categories {
		next := sum + category.Balance
		if next < sum {
			sum = 0
			break
		}
		sum = next
	}
	if sum != snapshot.Total {
		logger.Error("governance ledger inconsistency detected",
			"event", "governance_ledger_inconsistent",
			"module", application.ModuleName,
			"layer", "worker",
			"total", snapshot.Total,
			"category_sum", sum,
		)
		return domainerrors.ErrLedgerInconsistency
	}
	logger.Debug("governance ledger audit passed",
		"event", "governance_ledger_audit_passed",
		"module", application.ModuleName,
		"layer", "worker",
		"total", snapshot.Total,
	)
	return nil
}
