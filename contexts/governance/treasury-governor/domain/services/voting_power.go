package services

import (
	"sort"
	"strings"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
)

const DefaultMinProposalStake uint64 = 100

// VotingPowerEngine tracks stake and single-level delegation. Voting power is
// the dampened stake of an account that has not delegated.
type VotingPowerEngine struct {
	stakes           map[string]uint64
	delegates        map[string]string
	totalStake       uint64
	minProposalStake uint64
}

func NewVotingPowerEngine(minProposalStake uint64) *VotingPowerEngine {
	return &VotingPowerEngine{
		stakes:           make(map[string]uint64),
		delegates:        make(map[string]string),
		minProposalStake: minProposalStake,
	}
}

func validAccount(account string) bool {
	return strings.TrimSpace(account) != ""
}

func (e *VotingPowerEngine) Deposit(account string, amount uint64) error {
	if !validAccount(account) {
		return domainerrors.ErrInvalidAccount
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	total, ok := addChecked(e.totalStake, amount)
	if !ok {
		return domainerrors.ErrAmountOverflow
	}
	e.stakes[account] += amount
	e.totalStake = total
	return nil
}

// CheckWithdraw validates a withdrawal without applying it.
func (e *VotingPowerEngine) CheckWithdraw(account string, amount uint64) error {
	if !validAccount(account) {
		return domainerrors.ErrInvalidAccount
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if e.stakes[account] < amount {
		return domainerrors.ErrInsufficientStake
	}
	return nil
}

func (e *VotingPowerEngine) Withdraw(account string, amount uint64) error {
	if err := e.CheckWithdraw(account, amount); err != nil {
		return err
	}
	e.stakes[account] -= amount
	e.totalStake -= amount
	return nil
}

func (e *VotingPowerEngine) StakeOf(account string) uint64 {
	return e.stakes[account]
}

func (e *VotingPowerEngine) TotalStake() uint64 {
	return e.totalStake
}

func (e *VotingPowerEngine) VotingPower(account string) uint64 {
	if _, delegated := e.delegates[account]; delegated {
		return 0
	}
	return Dampen(e.stakes[account])
}

// TotalVotingPower dampens the aggregate stake, so it is not the sum of the
// individual voting powers.
func (e *VotingPowerEngine) TotalVotingPower() uint64 {
	return Dampen(e.totalStake)
}

func (e *VotingPowerEngine) CanPropose(account string) bool {
	return e.stakes[account] >= e.minProposalStake
}

func (e *VotingPowerEngine) MinProposalStake() uint64 {
	return e.minProposalStake
}

// Delegate records from -> to, replacing any earlier edge. Delegated power is
// not credited to the delegate.
func (e *VotingPowerEngine) Delegate(from, to string) error {
	if !validAccount(from) {
		return domainerrors.ErrInvalidAccount
	}
	if !validAccount(to) || to == from {
		return domainerrors.ErrInvalidDelegate
	}
	if e.stakes[from] == 0 {
		return domainerrors.ErrNoStake
	}
	e.delegates[from] = to
	return nil
}

func (e *VotingPowerEngine) RevokeDelegation(from string) error {
	if _, ok := e.delegates[from]; !ok {
		return domainerrors.ErrNoDelegation
	}
	delete(e.delegates, from)
	return nil
}

func (e *VotingPowerEngine) DelegateOf(account string) (string, bool) {
	to, ok := e.delegates[account]
	return to, ok
}

// ReceivedDelegations is always zero: the engine keeps no reverse index.
func (e *VotingPowerEngine) ReceivedDelegations(string) uint64 {
	return 0
}

func (e *VotingPowerEngine) Member(account string) entities.Member {
	delegate := e.delegates[account]
	return entities.Member{
		Account:             account,
		Stake:               e.stakes[account],
		VotingPower:         e.VotingPower(account),
		Delegate:            delegate,
		ReceivedDelegations: e.ReceivedDelegations(account),
		CanPropose:          e.CanPropose(account),
	}
}

func (e *VotingPowerEngine) clone() *VotingPowerEngine {
	stakes := make(map[string]uint64, len(e.stakes))
	for account, stake := range e.stakes {
		stakes[account] = stake
	}
	delegates := make(map[string]string, len(e.delegates))
	for from, to := range e.delegates {
		delegates[from] = to
	}
	return &VotingPowerEngine{
		stakes:           stakes,
		delegates:        delegates,
		totalStake:       e.totalStake,
		minProposalStake: e.minProposalStake,
	}
}

// StakeEntry is a flattened stake/delegation row used by snapshots.
type StakeEntry struct {
	Account  string
	Stake    uint64
	Delegate string
}

func (e *VotingPowerEngine) Entries() []StakeEntry {
	seen := make(map[string]struct{}, len(e.stakes)+len(e.delegates))
	rows := make([]StakeEntry, 0, len(e.stakes))
	add := func(account string) {
		if _, ok := seen[account]; ok {
			return
		}
		seen[account] = struct{}{}
		rows = append(rows, StakeEntry{
			Account:  account,
			Stake:    e.stakes[account],
			Delegate: e.delegates[account],
		})
	}
	for account := range e.stakes {
		add(account)
	}
	for account := range e.delegates {
		add(account)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Account < rows[j].Account })
	return rows
}

// Restore replaces the engine state with rows taken from Entries.
func (e *VotingPowerEngine) Restore(rows []StakeEntry) error {
	stakes := make(map[string]uint64, len(rows))
	delegates := make(map[string]string)
	var total uint64
	for _, row := range rows {
		if !validAccount(row.Account) {
			return domainerrors.ErrInvalidAccount
		}
		next, ok := addChecked(total, row.Stake)
		if !ok {
			return domainerrors.ErrAmountOverflow
		}
		total = next
		stakes[row.Account] = row.Stake
		if row.Delegate != "" {
			delegates[row.Account] = row.Delegate
		}
	}
	e.stakes = stakes
	e.delegates = delegates
	e.totalStake = total
	return nil
}
