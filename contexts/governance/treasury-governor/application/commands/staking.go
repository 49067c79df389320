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

type DepositCommand struct {
	Account        string
	Amount         uint64
	IdempotencyKey string
}

type WithdrawCommand struct {
	Account        string
	Amount         uint64
	IdempotencyKey string
}

type DelegateCommand struct {
	From string
	To   string
}

// StakeResult reports an account's position after a stake change.
type StakeResult struct {
	Account     string
	Stake       uint64
	VotingPower uint64
	TotalStake  uint64
	Replayed    bool
}

// StakingUseCase owns deposits, withdrawals and delegation. None of these
// operations require a capability.
type StakingUseCase struct {
	Store          ports.LedgerStore
	Transfers      ports.ValueTransfer
	Events         ports.EventSink
	Idempotency    ports.IdempotencyStore
	IdempotencyTTL time.Duration
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

func (uc StakingUseCase) Deposit(ctx context.Context, cmd DepositCommand) (StakeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	now := resolveNow(uc.Clock)
	requestHash := hashRequest("deposit", account, strconv.FormatUint(cmd.Amount, 10))

	replayed, found, err := lookupReplay[StakeResult](ctx, uc.replayGuard(), cmd.IdempotencyKey, requestHash, now)
	if err != nil {
		application.LogFailure(logger, "stake deposit replay lookup failed", "governance_stake_deposit_replay_failed", err,
			"account", account,
		)
		return StakeResult{}, err
	}
	if found {
		replayed.Replayed = true
		return replayed, nil
	}

	var result StakeResult
	var events []entities.Event
	err = uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Power.Deposit(account, cmd.Amount); err != nil {
			return err
		}
		result = stakeResult(g, account)
		events = append(events, record(g, entities.Event{
			Type:    entities.EventStakeDeposited,
			Actor:   account,
			Account: account,
			Amount:  cmd.Amount,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "stake deposit rejected", "governance_stake_deposit_failed", err,
			"account", account,
			"amount", cmd.Amount,
		)
		return StakeResult{}, err
	}

	uc.emitter().emit(ctx, events...)
	uc.remember(ctx, logger, cmd.IdempotencyKey, requestHash, result, now)
	logger.Info("stake deposited",
		"event", "governance_stake_deposited",
		"module", application.ModuleName,
		"layer", "application",
		"account", account,
		"amount", cmd.Amount,
		"stake", result.Stake,
	)
	return result, nil
}

// Withdraw pays stake back to the account through the value transfer port.
// The stake is only reduced once the transfer succeeds.
func (uc StakingUseCase) Withdraw(ctx context.Context, cmd WithdrawCommand) (StakeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	account := strings.TrimSpace(cmd.Account)
	now := resolveNow(uc.Clock)
	requestHash := hashRequest("withdraw", account, strconv.FormatUint(cmd.Amount, 10))

	replayed, found, err := lookupReplay[StakeResult](ctx, uc.replayGuard(), cmd.IdempotencyKey, requestHash, now)
	if err != nil {
		application.LogFailure(logger, "stake withdraw replay lookup failed", "governance_stake_withdraw_replay_failed", err,
			"account", account,
		)
		return StakeResult{}, err
	}
	if found {
		replayed.Replayed = true
		return replayed, nil
	}

	transferID, err := nextID(ctx, uc.IDGen)
	if err != nil {
		application.LogFailure(logger, "stake withdraw id generation failed", "governance_stake_withdraw_failed", err,
			"account", account,
		)
		return StakeResult{}, err
	}

	var result StakeResult
	var events []entities.Event
	err = uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Power.CheckWithdraw(account, cmd.Amount); err != nil {
			return err
		}
		if err := sendValue(ctx, uc.Transfers, ports.TransferInstruction{
			TransferID:  transferID,
			Source:      ports.TransferSourceStake,
			Recipient:   account,
			Amount:      cmd.Amount,
			RequestedAt: now,
		}); err != nil {
			return fmt.Errorf("stake withdrawal transfer: %w", err)
		}
		if err := g.Power.Withdraw(account, cmd.Amount); err != nil {
			return err
		}
		result = stakeResult(g, account)
		events = append(events, record(g, entities.Event{
			Type:    entities.EventStakeWithdrawn,
			Actor:   account,
			Account: account,
			Amount:  cmd.Amount,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "stake withdraw rejected", "governance_stake_withdraw_failed", err,
			"account", account,
			"amount", cmd.Amount,
		)
		return StakeResult{}, err
	}

	uc.emitter().emit(ctx, events...)
	uc.remember(ctx, logger, cmd.IdempotencyKey, requestHash, result, now)
	logger.Info("stake withdrawn",
		"event", "governance_stake_withdrawn",
		"module", application.ModuleName,
		"layer", "application",
		"account", account,
		"amount", cmd.Amount,
		"transfer_id", transferID,
		"stake", result.Stake,
	)
	return result, nil
}

func (uc StakingUseCase) Delegate(ctx context.Context, cmd DelegateCommand) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	from := strings.TrimSpace(cmd.From)
	to := strings.TrimSpace(cmd.To)
	now := resolveNow(uc.Clock)

	var member entities.Member
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := g.Power.Delegate(from, to); err != nil {
			return err
		}
		member = g.Power.Member(from)
		events = append(events, record(g, entities.Event{
			Type:      entities.EventDelegationSet,
			Actor:     from,
			Account:   from,
			Recipient: to,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "delegation rejected", "governance_delegation_failed", err,
			"from", from,
			"to", to,
		)
		return entities.Member{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("delegation set",
		"event", "governance_delegation_set",
		"module", application.ModuleName,
		"layer", "application",
		"from", from,
		"to", to,
	)
	return member, nil
}

func (uc StakingUseCase) RevokeDelegation(ctx context.Context, from string) (entities.Member, error) {
	logger := application.ResolveLogger(uc.Logger)
	from = strings.TrimSpace(from)
	now := resolveNow(uc.Clock)

	var member entities.Member
	var events []entities.Event
	err := uc.Store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		previous, _ := g.Power.DelegateOf(from)
		if err := g.Power.RevokeDelegation(from); err != nil {
			return err
		}
		member = g.Power.Member(from)
		events = append(events, record(g, entities.Event{
			Type:      entities.EventDelegationRevoked,
			Actor:     from,
			Account:   from,
			Recipient: previous,
		}, now))
		return nil
	})
	if err != nil {
		application.LogFailure(logger, "delegation revoke rejected", "governance_delegation_revoke_failed", err,
			"from", from,
		)
		return entities.Member{}, err
	}

	uc.emitter().emit(ctx, events...)
	logger.Info("delegation revoked",
		"event", "governance_delegation_revoked",
		"module", application.ModuleName,
		"layer", "application",
		"from", from,
	)
	return member, nil
}

func stakeResult(g *services.Governance, account string) StakeResult {
	return StakeResult{
		Account:     account,
		Stake:       g.Power.StakeOf(account),
		VotingPower: g.Power.VotingPower(account),
		TotalStake:  g.Power.TotalStake(),
	}
}

func (uc StakingUseCase) replayGuard() replayGuard {
	return replayGuard{Store: uc.Idempotency, TTL: uc.IdempotencyTTL}
}

func (uc StakingUseCase) emitter() eventEmitter {
	return eventEmitter{Events: uc.Events, IDGen: uc.IDGen, Logger: uc.Logger}
}

func (uc StakingUseCase) remember(ctx context.Context, logger *slog.Logger, key string, requestHash string, result StakeResult, now time.Time) {
	if err := rememberReplay(ctx, uc.replayGuard(), key, requestHash, result, now); err != nil {
		logger.Warn("stake idempotency record failed",
			"event", "governance_stake_idempotency_record_failed",
			"module", application.ModuleName,
			"layer", "application",
			"error", err.Error(),
		)
	}
}
