package services

import (
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
)

// DefaultCategoryLimits keeps the 10:2:1 ratio between general, grants and
// operations.
func DefaultCategoryLimits() map[entities.Category]uint64 {
	return map[entities.Category]uint64{
		entities.CategoryGeneral:    10_000_000,
		entities.CategoryGrants:     2_000_000,
		entities.CategoryOperations: 1_000_000,
	}
}

// TreasuryLedger holds categorized balances. The sum of category balances
// always equals the recorded total.
type TreasuryLedger struct {
	balances map[entities.Category]uint64
	limits   map[entities.Category]uint64
	total    uint64
	paused   bool
}

func NewTreasuryLedger(limits map[entities.Category]uint64) *TreasuryLedger {
	defaults := DefaultCategoryLimits()
	resolved := make(map[entities.Category]uint64, len(entities.DrawdownOrder))
	for _, category := range entities.DrawdownOrder {
		resolved[category] = defaults[category]
		if limit, ok := limits[category]; ok && limit > 0 {
			resolved[category] = limit
		}
	}
	return &TreasuryLedger{
		balances: make(map[entities.Category]uint64, len(entities.DrawdownOrder)),
		limits:   resolved,
	}
}

func (l *TreasuryLedger) clone() *TreasuryLedger {
	balances := make(map[entities.Category]uint64, len(l.balances))
	for category, balance := range l.balances {
		balances[category] = balance
	}
	limits := make(map[entities.Category]uint64, len(l.limits))
	for category, limit := range l.limits {
		limits[category] = limit
	}
	return &TreasuryLedger{balances: balances, limits: limits, total: l.total, paused: l.paused}
}

// Receive credits the default category. Inflows are accepted while paused
// and are not checked against the default category cap.
func (l *TreasuryLedger) Receive(amount uint64) error {
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	total, ok := addChecked(l.total, amount)
	if !ok {
		return domainerrors.ErrAmountOverflow
	}
	l.balances[entities.DefaultCategory] += amount
	l.total = total
	return nil
}

// Allocate moves funds from the default category into category.
func (l *TreasuryLedger) Allocate(category entities.Category, amount uint64) error {
	if !category.Valid() || category == entities.DefaultCategory {
		return domainerrors.ErrInvalidCategory
	}
	if amount == 0 {
		return domainerrors.ErrInvalidAmount
	}
	if l.balances[entities.DefaultCategory] < amount {
		return domainerrors.ErrInsufficientCategoryFunds
	}
	next, ok := addChecked(l.balances[category], amount)
	if !ok || next > l.limits[category] {
		return domainerrors.ErrCategoryLimitExceeded
	}
	l.balances[entities.DefaultCategory] -= amount
	l.balances[category] = next
	return nil
}

// TransferPlan is a validated drawdown that has not been applied yet.
type TransferPlan struct {
	Recipient string
	Amount    uint64
	Draws     []entities.Draw
}

// PlanTransfer validates an outgoing transfer and computes the waterfall
// drawdown across categories without mutating the ledger.
func (l *TreasuryLedger) PlanTransfer(recipient string, amount uint64) (TransferPlan, error) {
	if l.paused {
		return TransferPlan{}, domainerrors.ErrTreasuryPaused
	}
	if !validAccount(recipient) {
		return TransferPlan{}, domainerrors.ErrInvalidRecipient
	}
	if amount == 0 {
		return TransferPlan{}, domainerrors.ErrInvalidAmount
	}
	if l.total < amount {
		return TransferPlan{}, domainerrors.ErrInsufficientTreasury
	}
	remaining := amount
	draws := make([]entities.Draw, 0, len(entities.DrawdownOrder))
	for _, category := range entities.DrawdownOrder {
		if remaining == 0 {
			break
		}
		available := l.balances[category]
		if available == 0 {
			continue
		}
		take := min(available, remaining)
		draws = append(draws, entities.Draw{Category: category, Amount: take})
		remaining -= take
	}
	if remaining > 0 {
		return TransferPlan{}, domainerrors.ErrLedgerInconsistency
	}
	return TransferPlan{Recipient: recipient, Amount: amount, Draws: draws}, nil
}

// Commit applies a plan produced by PlanTransfer under the same lock.
func (l *TreasuryLedger) Commit(plan TransferPlan) error {
	for _, draw := range plan.Draws {
		if l.balances[draw.Category] < draw.Amount {
			return domainerrors.ErrLedgerInconsistency
		}
	}
	if l.total < plan.Amount {
		return domainerrors.ErrLedgerInconsistency
	}
	for _, draw := range plan.Draws {
		l.balances[draw.Category] -= draw.Amount
	}
	l.total -= plan.Amount
	return nil
}

func (l *TreasuryLedger) Pause() error {
	if l.paused {
		return domainerrors.ErrAlreadyPaused
	}
	l.paused = true
	return nil
}

func (l *TreasuryLedger) Resume() error {
	if !l.paused {
		return domainerrors.ErrNotPaused
	}
	l.paused = false
	return nil
}

// SetLimit changes a category cap. The new cap may not be zero nor below the
// category's current balance.
func (l *TreasuryLedger) SetLimit(category entities.Category, limit uint64) error {
	if !category.Valid() {
		return domainerrors.ErrInvalidCategory
	}
	if limit == 0 || limit < l.balances[category] {
		return domainerrors.ErrInvalidLimit
	}
	l.limits[category] = limit
	return nil
}

func (l *TreasuryLedger) Balance(category entities.Category) (uint64, error) {
	if !category.Valid() {
		return 0, domainerrors.ErrInvalidCategory
	}
	return l.balances[category], nil
}

func (l *TreasuryLedger) Limit(category entities.Category) (uint64, error) {
	if !category.Valid() {
		return 0, domainerrors.ErrInvalidCategory
	}
	return l.limits[category], nil
}

func (l *TreasuryLedger) TotalBalance() uint64 {
	return l.total
}

func (l *TreasuryLedger) Paused() bool {
	return l.paused
}

func (l *TreasuryLedger) Snapshot() entities.TreasurySnapshot {
	categories := make([]entities.CategoryBalance, 0, len(entities.DrawdownOrder))
	for _, category := range entities.DrawdownOrder {
		categories = append(categories, entities.CategoryBalance{
			Category: category,
			Balance:  l.balances[category],
			Limit:    l.limits[category],
		})
	}
	return entities.TreasurySnapshot{
		Total:      l.total,
		Paused:     l.paused,
		Categories: categories,
	}
}

// Restore loads a snapshot, rejecting one whose balances do not sum to its
// total.
func (l *TreasuryLedger) Restore(snapshot entities.TreasurySnapshot) error {
	balances := make(map[entities.Category]uint64, len(entities.DrawdownOrder))
	limits := DefaultCategoryLimits()
	var sum uint64
	for _, row := range snapshot.Categories {
		if !row.Category.Valid() {
			return domainerrors.ErrInvalidCategory
		}
		next, ok := addChecked(sum, row.Balance)
		if !ok {
			return domainerrors.ErrLedgerInconsistency
		}
		sum = next
		balances[row.Category] = row.Balance
		if row.Limit > 0 {
			limits[row.Category] = row.Limit
		}
	}
	if sum != snapshot.Total {
		return domainerrors.ErrLedgerInconsistency
	}
	l.balances = balances
	l.limits = limits
	l.total = snapshot.Total
	l.paused = snapshot.Paused
	return nil
}
