package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "commonwealth/contexts/governance/treasury-governor/application"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

type ReceiveCommand struct {
	Sender         string
	Amount         uint64
	IdempotencyKey string
}

type AllocateCommand struct {
	Actor    string
	Category entities.Category
	Amount   uint64
}

type TransferFundsCommand struct {
	Actor          string
	Recipient      string
	Amount         uint64
	IdempotencyKey string
}

type SetCategoryLimitCommand struct {
	Actor    string
	Category entities.Category
	Limit    uint64
}

type TransferResult struct {
	TransferID string
	Recipient  string
	Amount     uint64
	Draws      []entities.Draw
	Treasury   entities.TreasurySnapshot
	Replayed   bool
}

// TreasuryUseCase moves funds into, across and out of the treasury ledger.
type TreasuryUseCase struct {
	Store          ports.LedgerStore
	Oracle         ports.PermissionOracle
	Transfers      ports.ValueTransfer
	Events         ports.EventSink
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

// Receive credits an inflow to the default category. It is open to anyone
// and accepted while the treasury is paused.
func (uc TreasuryUseCase) Receive(ctx context.Context, cmd ReceiveCommand) (entities.TreasurySnapshot, error) {
	logger := application.ResolveLogger(uc.Logger)
	sender := strings.TrimSpace(cmd.Sender)
	now := resolveNow(uc.Clock)
	requestHash := hashRequest("receive", sender, strconv.FormatUint(cmd.Amount, 10))
	guard := replayGuard{Store: uc.Idempotency, TTL: uc.IdempotencyTTL}

	replayed, found, err := lookupReplay[entities.TreasurySnapshot](ctx, guard, cmd.IdempotencyKey, requestHash, now)
	if err != nil {
		application.LogFailure(logger, "treasury receive replay lookup failed", "governance_treasury_receive_replay_failed", err,
			"sender", sender,
		)
		return entities.TreasurySnapshot{}, err
	}
	if found {
		return replayed, nil
	}

	var snapshot entities.TreasurySnapshot
	var events []entities.Event
	err = uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Treasury.Receive(cmd.Amount); err != nil {
			return err
		}
		snapshot = g.Treasury.Snapshot()
		events = append(events, record(g, entities.Event{
			Type:     entities.EventTreasuryReceived,
			Actor:    sender,
			Account:  sender,
			Amount:   cmd.Amount,
			Category: entities.DefaultCategory,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "treasury receive rejected", "governance_treasury_receive_failed", err,
			"sender", sender,
			"amount", cmd.Amount,
		)
		return entities.TreasurySnapshot{}, err
	}

	uc.emitter().emit(ctx, events...)
	if err := rememberReplay(ctx, guard, cmd.IdempotencyKey, requestHash, snapshot, now); err != nil {
		uc.logRememberFailure(logger, err)
	}
	logger.Info("treasury funds received",
		"event", "governance_treasury_received",
		"module", application.ModuleName,
		"layer", "application",
		"sender", sender,
		"amount", cmd.Amount,
		"total", snapshot.Total,
	)
	return snapshot, nil
}

func (uc TreasuryUseCase) Allocate(ctx context.Context, cmd AllocateCommand) (entities.TreasurySnapshot, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityAdmin, actor, logger); err != nil {
		application.LogFailure(logger, "treasury allocate forbidden", "governance_treasury_allocate_forbidden", err,
			"actor", actor,
		)
		return entities.TreasurySnapshot{}, err
	}

	var snapshot entities.TreasurySnapshot
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Treasury.Allocate(cmd.Category, cmd.Amount); err != nil {
			return err
		}
		snapshot = g.Treasury.Snapshot()
		events = append(events, record(g, entities.Event{
			Type:     entities.EventTreasuryAllocated,
			Actor:    actor,
			Amount:   cmd.Amount,
			Category: cmd.Category,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "treasury allocate rejected", "governance_treasury_allocate_failed", err,
			"actor", actor,
			"category", string(cmd.Category),
			"amount", cmd.Amount,
		)
		return entities.TreasurySnapshot{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("treasury funds allocated",
		"event", "governance_treasury_allocated",
		"module", application.ModuleName,
		"layer", "application",
		"actor", actor,
		"category", string(cmd.Category),
		"amount", cmd.Amount,
	)
	return snapshot, nil
}

// TransferFunds pays out of the treasury outside the proposal flow. The
// waterfall drawdown is committed only after the value transfer succeeds.
func (uc TreasuryUseCase) TransferFunds(ctx context.Context, cmd TransferFundsCommand) (TransferResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	recipient := strings.TrimSpace(cmd.Recipient)
	now := resolveNow(uc.Clock)
	requestHash := hashRequest("transfer", actor, recipient, strconv.FormatUint(cmd.Amount, 10))
	guard := replayGuard{Store: uc.Idempotency, TTL: uc.IdempotencyTTL}

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityExecute, actor, logger); err != nil {
		application.LogFailure(logger, "treasury transfer forbidden", "governance_treasury_transfer_forbidden", err,
			"actor", actor,
		)
		return TransferResult{}, err
	}

	replayed, found, err := lookupReplay[TransferResult](ctx, guard, cmd.IdempotencyKey, requestHash, now)
	if err != nil {
		application.LogFailure(logger, "treasury transfer replay lookup failed", "governance_treasury_transfer_replay_failed", err,
			"actor", actor,
		)
		return TransferResult{}, err
	}
	if found {
		replayed.Replayed = true
		return replayed, nil
	}

	transferID, err := nextID(ctx, uc.IDGen)
	if err != nil {
		application.LogFailure(logger, "treasury transfer id generation failed", "governance_treasury_transfer_failed", err,
			"actor", actor,
		)
		return TransferResult{}, err
	}

	var result TransferResult
	var events []entities.Event
	err = uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		draws, err := payOut(ctx, g, uc.Transfers, ports.TransferInstruction{
			TransferID:  transferID,
			Source:      ports.TransferSourceTreasury,
			Recipient:   recipient,
			Amount:      cmd.Amount,
			RequestedAt: now,
		})
		if err != nil {
			return err
		}
		result = TransferResult{
			TransferID: transferID,
			Recipient:  recipient,
			Amount:     cmd.Amount,
			Draws:      draws,
			Treasury:   g.Treasury.Snapshot(),
		}
		events = append(events, record(g, entities.Event{
			Type:       entities.EventTreasuryTransferred,
			Actor:      actor,
			Recipient:  recipient,
			Amount:     cmd.Amount,
			Attributes: drawAttributes(transferID, draws),
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "treasury transfer rejected", "governance_treasury_transfer_failed", err,
			"actor", actor,
			"recipient", recipient,
			"amount", cmd.Amount,
		)
		return TransferResult{}, err
	}

	uc.emitter().emit(ctx, events...)
	if err := rememberReplay(ctx, guard, cmd.IdempotencyKey, requestHash, result, now); err != nil {
		uc.logRememberFailure(logger, err)
	}
	logger.Info("treasury funds transferred",
		"event", "governance_treasury_transferred",
		"module", application.ModuleName,
		"layer", "application",
		"actor", actor,
		"recipient", recipient,
		"amount", cmd.Amount,
		"transfer_id", transferID,
	)
	return result, nil
}

func (uc TreasuryUseCase) Pause(ctx context.Context, actor string) (entities.TreasurySnapshot, error) {
	return uc.togglePause(ctx, actor, true)
}

func (uc TreasuryUseCase) Resume(ctx context.Context, actor string) (entities.TreasurySnapshot, error) {
	return uc.togglePause(ctx, actor, false)
}

func (uc TreasuryUseCase) togglePause(ctx context.Context, actor string, pause bool) (entities.TreasurySnapshot, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor = strings.TrimSpace(actor)
	now := resolveNow(uc.Clock)
	action, eventType := "resume", entities.EventTreasuryResumed
	if pause {
		action, eventType = "pause", entities.EventTreasuryPaused
	}

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityGuardian, actor, logger); err != nil {
		application.LogFailure(logger, "treasury "+action+" forbidden", "governance_treasury_"+action+"_forbidden", err,
			"actor", actor,
		)
		return entities.TreasurySnapshot{}, err
	}

	var snapshot entities.TreasurySnapshot
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		toggle := g.Treasury.Resume
		if pause {
			toggle = g.Treasury.Pause
		}
		if err := toggle(); err != nil {
			return err
		}
		snapshot = g.Treasury.Snapshot()
		events = append(events, record(g, entities.Event{Type: eventType, Actor: actor}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "treasury "+action+" rejected", "governance_treasury_"+action+"_failed", err,
			"actor", actor,
		)
		return entities.TreasurySnapshot{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("treasury "+action+" applied",
		"event", "governance_treasury_"+action+"d",
		"module", application.ModuleName,
		"layer", "application",
		"actor", actor,
	)
	return snapshot, nil
}

func (uc TreasuryUseCase) SetCategoryLimit(ctx context.Context, cmd SetCategoryLimitCommand) (entities.TreasurySnapshot, error) {
	logger := application.ResolveLogger(uc.Logger)
	actor := strings.TrimSpace(cmd.Actor)
	now := resolveNow(uc.Clock)

	if err := ensureCapability(ctx, uc.Oracle, entities.CapabilityAdmin, actor, logger); err != nil {
		application.LogFailure(logger, "treasury limit change forbidden", "governance_treasury_limit_forbidden", err,
			"actor", actor,
		)
		return entities.TreasurySnapshot{}, err
	}

	var snapshot entities.TreasurySnapshot
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Treasury.SetLimit(cmd.Category, cmd.Limit); err != nil {
			return err
		}
		snapshot = g.Treasury.Snapshot()
		events = append(events, record(g, entities.Event{
			Type:     entities.EventTreasuryLimitChanged,
			Actor:    actor,
			Amount:   cmd.Limit,
			Category: cmd.Category,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "treasury limit change rejected", "governance_treasury_limit_failed", err,
			"actor", actor,
			"category", string(cmd.Category),
			"limit", cmd.Limit,
		)
		return entities.TreasurySnapshot{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("treasury category limit changed",
		"event", "governance_treasury_limit_changed",
		"module", application.ModuleName,
		"layer", "application",
		"actor", actor,
		"category", string(cmd.Category),
		"limit", cmd.Limit,
	)
	return snapshot, nil
}

func (uc TreasuryUseCase) emitter() eventEmitter {
	return eventEmitter{Events: uc.Events, IDGen: uc.IDGen, Logger: uc.Logger}
}

func (uc TreasuryUseCase) logRememberFailure(logger *slog.Logger, err error) {
	logger.Warn("treasury idempotency record failed",
		"event", "governance_treasury_idempotency_record_failed",
		"module", application.ModuleName,
		"layer", "application",
		"error", err.Error(),
	)
}

// payOut plans the drawdown, moves the value, then commits the plan. Nothing
// is committed when the transfer fails.
func payOut(
	ctx context.Context,
	g *services.Governance,
	transfers ports.ValueTransfer,
	instruction ports.TransferInstruction,
) ([]entities.Draw, error) {
	plan, err := g.Treasury.PlanTransfer(instruction.Recipient, instruction.Amount)
	if err != nil {
		return nil, err
	}
	if err := sendValue(ctx, transfers, instruction); err != nil {
		return nil, fmt.Errorf("treasury transfer: %w", err)
	}
	if err := g.Treasury.Commit(plan); err != nil {
		return nil, err
	}
	return plan.Draws, nil
}

func drawAttributes(transferID string, draws []entities.Draw) map[string]string {
	attributes := make(map[string]string, len(draws)+1)
	attributes["transfer_id"] = transferID
	for _, draw := range draws {
		attributes["draw_"+string(draw.Category)] = strconv.FormatUint(draw.Amount, 10)
	}
	return attributes
}
