package commands

import (
	"context"
	"log/slog"
	"strings"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

type CreateProposalCommand struct {
	Proposer    string
	Recipient   string
	Amount      uint64
	Description string
	Type        entities.ProposalType
}

type CastVoteCommand struct {
	ProposalID uint64
	Voter      string
	Option     entities.VoteOption
}

// ProposalActionCommand targets an existing proposal on behalf of Actor.
type ProposalActionCommand struct {
	ProposalID uint64
	Actor      string
}

type VoteResult struct {
	ProposalID uint64
	Voter      string
	Receipt    entities.VoteReceipt
	Tally      entities.Tally
	State      entities.ProposalState
}

// ProposalUseCase drives the proposal lifecycle from creation to payout.
type ProposalUseCase struct {
	Store     ports.LedgerStore
	Oracle    ports.PermissionOracle
	Transfers ports.ValueTransfer
	Events    ports.EventSink
	Clock     ports.Clock
	Heights   ports.HeightSource
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ProposalUseCase) Create(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposer := strings.TrimSpace(cmd.Proposer)
	now := resolveNow(uc.Clock)
	height := resolveHeight(uc.Heights)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityPropose, proposer, logger); err != nil {
		application.LogFailure(logger, "proposal create forbidden", "governance_proposal_create_forbidden", err,
			"proposer", proposer,
		)
		return entities.Proposal{}, err
	}

	var proposal entities.Proposal
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		created, err := g.Proposals.Create(services.CreateProposalInput{
			Proposer:    proposer,
			Recipient:   strings.TrimSpace(cmd.Recipient),
			Amount:      cmd.Amount,
			Description: cmd.Description,
			Type:        cmd.Type,
			Height:      height,
			Now:         now,
		})
		if err != nil {
			return err
		}
		proposal = created
		events = append(events, record(g, entities.Event{
			Type:       entities.EventProposalCreated,
			Actor:      proposer,
			Recipient:  created.Recipient,
			ProposalID: proposalRef(created.ProposalID),
			Amount:     created.Amount,
			Height:     height,
			Attributes: map[string]string{"proposal_type": string(created.Type)},
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "proposal create rejected", "governance_proposal_create_failed", err,
			"proposer", proposer,
			"proposal_type", string(cmd.Type),
			"amount", cmd.Amount,
		)
		return entities.Proposal{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", application.ModuleName,
		"layer", "application",
		"proposal_id", proposal.ProposalID,
		"proposer", proposer,
		"proposal_type", string(proposal.Type),
		"end_height", proposal.EndHeight,
	)
	return proposal, nil
}

func (uc ProposalUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	now := resolveNow(uc.Clock)
	height := resolveHeight(uc.Heights)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityVote, voter, logger); err != nil {
		application.LogFailure(logger, "proposal vote forbidden", "governance_proposal_vote_forbidden", err,
			"proposal_id", cmd.ProposalID,
			"voter", voter,
		)
		return VoteResult{}, err
	}

	var result VoteResult
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		receipt, err := g.Proposals.CastVote(cmd.ProposalID, voter, cmd.Option, height)
		if err != nil {
			return err
		}
		proposal, err := g.Proposals.Proposal(cmd.ProposalID)
		if err != nil {
			return err
		}
		result = VoteResult{
			ProposalID: cmd.ProposalID,
			Voter:      voter,
			Receipt:    receipt,
			Tally:      proposal.Tally,
			State:      proposal.EffectiveState(height),
		}
		events = append(events, record(g, entities.Event{
			Type:       entities.EventProposalVoted,
			Actor:      voter,
			Account:    voter,
			ProposalID: proposalRef(cmd.ProposalID),
			Amount:     receipt.Power,
			Option:     receipt.Option,
			Height:     height,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "proposal vote rejected", "governance_proposal_vote_failed", err,
			"proposal_id", cmd.ProposalID,
			"voter", voter,
			"option", string(cmd.Option),
			"height", height,
		)
		return VoteResult{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("proposal vote cast",
		"event", "governance_proposal_voted",
		"module", application.ModuleName,
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"voter", voter,
		"option", string(result.Receipt.Option),
		"power", result.Receipt.Power,
	)
	return result, nil
}

func (uc ProposalUseCase) Queue(ctx context.Context, cmd ProposalActionCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)
	height := resolveHeight(uc.Heights)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityExecute, actor, logger); err != nil {
		application.LogFailure(logger, "proposal queue forbidden", "governance_proposal_queue_forbidden", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
		)
		return entities.Proposal{}, err
	}

	var proposal entities.Proposal
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		queued, err := g.Proposals.Queue(cmd.ProposalID, height, now)
		if err != nil {
			return err
		}
		proposal = queued
		events = append(events, record(g, entities.Event{
			Type:       entities.EventProposalQueued,
			Actor:      actor,
			ProposalID: proposalRef(cmd.ProposalID),
			Amount:     queued.Amount,
			Height:     height,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "proposal queue rejected", "governance_proposal_queue_failed", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
			"height", height,
		)
		return entities.Proposal{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("proposal queued",
		"event", "governance_proposal_queued",
		"module", application.ModuleName,
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"actor", actor,
	)
	return proposal, nil
}

// Execute pays a queued proposal once its timelock has elapsed. The payout,
// the ledger drawdown and the state change commit together or not at all.
func (uc ProposalUseCase) Execute(ctx context.Context, cmd ProposalActionCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityExecute, actor, logger); err != nil {
		application.LogFailure(logger, "proposal execute forbidden", "governance_proposal_execute_forbidden", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
		)
		return entities.Proposal{}, err
	}

	transferID, err := nextID(ctx, uc.IDGen)
	if err != nil {
		application.LogFailure(logger, "proposal execute id generation failed", "governance_proposal_execute_failed", err,
			"proposal_id", cmd.ProposalID,
		)
		return entities.Proposal{}, err
	}

	var proposal entities.Proposal
	var events []entities.Event
	err = uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		ready, err := g.Proposals.CheckExecutable(cmd.ProposalID, now)
		if err != nil {
			return err
		}
		draws, err := payOut(ctx, g, uc.Transfers, ports.TransferInstruction{
			TransferID:  transferID,
			Source:      ports.TransferSourceTreasury,
			Recipient:   ready.Recipient,
			Amount:      ready.Amount,
			ProposalID:  proposalRef(ready.ProposalID),
			RequestedAt: now,
		})
		if err != nil {
			return err
		}
		executed, err := g.Proposals.MarkExecuted(cmd.ProposalID, now)
		if err != nil {
			return err
		}
		proposal = executed
		events = append(events,
			record(g, entities.Event{
				Type:       entities.EventTreasuryTransferred,
				Actor:      actor,
				Recipient:  executed.Recipient,
				ProposalID: proposalRef(executed.ProposalID),
				Amount:     executed.Amount,
				Attributes: drawAttributes(transferID, draws),
			}, now),
			record(g, entities.Event{
				Type:       entities.EventProposalExecuted,
				Actor:      actor,
				Recipient:  executed.Recipient,
				ProposalID: proposalRef(executed.ProposalID),
				Amount:     executed.Amount,
			}, now),
		)
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "proposal execute rejected", "governance_proposal_execute_failed", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
		)
		return entities.Proposal{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("proposal executed",
		"event", "governance_proposal_executed",
		"module", application.ModuleName,
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"actor", actor,
		"recipient", proposal.Recipient,
		"amount", proposal.Amount,
		"transfer_id", transferID,
	)
	return proposal, nil
}

func (uc ProposalUseCase) Cancel(ctx context.Context, cmd ProposalActionCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityGuardian, actor, logger); err != nil {
		application.LogFailure(logger, "proposal cancel forbidden", "governance_proposal_cancel_forbidden", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
		)
		return entities.Proposal{}, err
	}

	var proposal entities.Proposal
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		cancelled, err := g.Proposals.Cancel(cmd.ProposalID)
		if err != nil {
			return err
		}
		proposal = cancelled
		events = append(events, record(g, entities.Event{
			Type:       entities.EventProposalCancelled,
			Actor:      actor,
			ProposalID: proposalRef(cmd.ProposalID),
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "proposal cancel rejected", "governance_proposal_cancel_failed", err,
			"proposal_id", cmd.ProposalID,
			"actor", actor,
		)
		return entities.Proposal{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("proposal cancelled",
		"event", "governance_proposal_cancelled",
		"module", application.ModuleName,
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"actor", actor,
	)
	return proposal, nil
}

func (uc ProposalUseCase) emitter() eventEmitter {
	return eventEmitter{Events: uc.Events, IDGen: uc.IDGen, Logger: uc.Logger}
}
