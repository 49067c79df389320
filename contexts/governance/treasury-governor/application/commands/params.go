package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

// UpdateParamsCommand changes any subset of one type's thresholds. Nil fields
// keep their current value; the resulting set is validated as a whole.
type UpdateParamsCommand struct {
	Actor        string
	Type         entities.ProposalType
	QuorumBps    *uint32
	ApprovalBps  *uint32
	Timelock     *time.Duration
	VotingWindow *uint64
}

type ParamsUseCase struct {
	Store  ports.LedgerStore
	Oracle ports.PermissionOracle
	Events ports.EventSink
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (uc ParamsUseCase) Update(ctx context.Context, cmd UpdateParamsCommand) (entities.GovernanceParams, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityAdmin, actor, logger); err != nil {
		application.LogFailure(logger, "governance params update forbidden", "governance_params_update_forbidden", err,
			"actor", actor,
		)
		return entities.GovernanceParams{}, err
	}

	var updated entities.GovernanceParams
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		params, err := g.Proposals.Params(cmd.Type)
		if err != nil {
			return err
		}
		if cmd.QuorumBps != nil {
			params.QuorumBps = *cmd.QuorumBps
		}
		if cmd.ApprovalBps != nil {
			params.ApprovalBps = *cmd.ApprovalBps
		}
		if cmd.Timelock != nil {
			params.Timelock = *cmd.Timelock
		}
		if cmd.VotingWindow != nil {
			params.VotingWindow = *cmd.VotingWindow
		}
		if err := g.Proposals.SetParams(cmd.Type, params); err != nil {
			return err
		}
		updated = params
		events = append(events, record(g, entities.Event{
			Type:  entities.EventParamsUpdated,
			Actor: actor,
			Attributes: map[string]string{
				"proposal_type": string(cmd.Type),
				"quorum_bps":    strconv.FormatUint(uint64(params.QuorumBps), 10),
				"approval_bps":  strconv.FormatUint(uint64(params.ApprovalBps), 10),
				"timelock":      params.Timelock.String(),
				"voting_window": strconv.FormatUint(params.VotingWindow, 10),
			},
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "governance params update rejected", "governance_params_update_failed", err,
			"actor", actor,
			"proposal_type", string(cmd.Type),
		)
		return entities.GovernanceParams{}, err
	}

	eventEmitter{Events: uc.Events, IDGen: uc.IDGen, Logger: uc.Logger}.emit(ctx, events...)
	logger.Info("governance params updated",
		"event", "governance_params_updated",
		"module", application.ModuleName,
		"layer", "application",
		"actor", actor,
		"proposal_type", string(cmd.Type),
	)
	return updated, nil
}
