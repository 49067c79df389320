package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

var (
	errMissingIDGenerator   = errors.New("id generator is not configured")
	errMissingValueTransfer = errors.New("value transfer is not configured")
)

// ensureCapability denies the call unless the oracle grants capability to
// actor. A missing oracle denies everything.
func ensureCapability(
	ctx context.Context,
	oracle ports.PermissionOracle,
	capability entities.Capability,
	actor string,
	logger *slog.Logger,
) error {
	actor = strings.TrimSpace(actor)
	if oracle == nil || actor == "" {
		return domainerrors.ErrUnauthorized
	}
	allowed, err := oracle.HasCapability(ctx, capability, actor)
	if err != nil {
		application.ResolveLogger(logger).Error("governance capability lookup failed",
			"event", "governance_capability_lookup_failed",
			"module", application.ModuleName,
			"layer", "application",
			"capability", string(capability),
			"actor", actor,
			"error", err.Error(),
		)
		return err
	}
	if !allowed {
		return domainerrors.ErrUnauthorized
	}
	return nil
}

func resolveNow(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}

func resolveHeight(heights ports.HeightSource) uint64 {
	if heights == nil {
		return 0
	}
	return heights.Height()
}

func nextID(ctx context.Context, idgen ports.IDGenerator) (string, error) {
	if idgen == nil {
		return "", errMissingIDGenerator
	}
	return idgen.NewID(ctx)
}

func sendValue(ctx context.Context, transfers ports.ValueTransfer, instruction ports.TransferInstruction) error {
	if transfers == nil {
		return errMissingValueTransfer
	}
	return transfers.Transfer(ctx, instruction)
}
