package services

import (
	"testing"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundedLedger(t *testing.T, general, grants, operations uint64) *TreasuryLedger {
	t.Helper()
	ledger := NewTreasuryLedger(nil)
	require.NoError(t, ledger.Receive(general+grants+operations))
	if grants > 0 {
		require.NoError(t, ledger.Allocate(entities.CategoryGrants, grants))
	}
	if operations > 0 {
		require.NoError(t, ledger.Allocate(entities.CategoryOperations, operations))
	}
	return ledger
}

func assertBalances(t *testing.T, ledger *TreasuryLedger, general, grants, operations uint64) {
	t.Helper()
	for category, want := range map[entities.Category]uint64{
		entities.CategoryGeneral:    general,
		entities.CategoryGrants:     grants,
		entities.CategoryOperations: operations,
	} {
		got, err := ledger.Balance(category)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "balance of %s", category)
	}
	assert.Equal(t, general+grants+operations, ledger.TotalBalance())
}

func TestTransferDrawsDownInFixedOrder(t *testing.T) {
	ledger := fundedLedger(t, 5, 10, 20)

	plan, err := ledger.PlanTransfer("vendor", 12)
	require.NoError(t, err)
	assert.Equal(t, []entities.Draw{
		{Category: entities.CategoryGeneral, Amount: 5},
		{Category: entities.CategoryGrants, Amount: 7},
	}, plan.Draws)
	assertBalances(t, ledger, 5, 10, 20)

	require.NoError(t, ledger.Commit(plan))
	assertBalances(t, ledger, 0, 3, 20)
}

func TestTransferGuards(t *testing.T) {
	ledger := fundedLedger(t, 10, 0, 0)

	_, err := ledger.PlanTransfer("", 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRecipient)
	_, err = ledger.PlanTransfer("vendor", 0)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidAmount)
	_, err = ledger.PlanTransfer("vendor", 11)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientTreasury)

	require.NoError(t, ledger.Pause())
	_, err = ledger.PlanTransfer("vendor", 1)
	assert.ErrorIs(t, err, domainerrors.ErrTreasuryPaused)
	assert.Equal(t, domainerrors.KindPaused, domainerrors.KindOf(err))
}

func TestPauseResumeFailLoudly(t *testing.T) {
	ledger := NewTreasuryLedger(nil)
	assert.ErrorIs(t, ledger.Resume(), domainerrors.ErrNotPaused)
	require.NoError(t, ledger.Pause())
	assert.ErrorIs(t, ledger.Pause(), domainerrors.ErrAlreadyPaused)

	require.NoError(t, ledger.Receive(50))
	require.NoError(t, ledger.Allocate(entities.CategoryGrants, 20))
	require.NoError(t, ledger.Resume())
	assertBalances(t, ledger, 30, 20, 0)
}

func TestAllocateRespectsCaps(t *testing.T) {
	ledger := NewTreasuryLedger(map[entities.Category]uint64{entities.CategoryGrants: 15})
	require.NoError(t, ledger.Receive(40))

	assert.ErrorIs(t, ledger.Allocate(entities.CategoryGrants, 16), domainerrors.ErrCategoryLimitExceeded)
	require.NoError(t, ledger.Allocate(entities.CategoryGrants, 15))
	assert.ErrorIs(t, ledger.Allocate(entities.CategoryOperations, 26), domainerrors.ErrInsufficientCategoryFunds)
	assert.ErrorIs(t, ledger.Allocate(entities.CategoryGeneral, 1), domainerrors.ErrInvalidCategory)
	assert.ErrorIs(t, ledger.Allocate("reserve", 1), domainerrors.ErrInvalidCategory)
	assertBalances(t, ledger, 25, 15, 0)
}

func TestSetLimitCannotDropBelowBalance(t *testing.T) {
	ledger := fundedLedger(t, 0, 10, 0)
	assert.ErrorIs(t, ledger.SetLimit(entities.CategoryGrants, 9), domainerrors.ErrInvalidLimit)
	assert.ErrorIs(t, ledger.SetLimit(entities.CategoryGrants, 0), domainerrors.ErrInvalidLimit)
	require.NoError(t, ledger.SetLimit(entities.CategoryGrants, 10))
	limit, err := ledger.Limit(entities.CategoryGrants)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), limit)
}

func TestReceiveIgnoresDefaultCap(t *testing.T) {
	ledger := NewTreasuryLedger(map[entities.Category]uint64{entities.CategoryGeneral: 5})
	require.NoError(t, ledger.Receive(50))
	assertBalances(t, ledger, 50, 0, 0)
}

func TestRestoreRejectsUnbalancedSnapshot(t *testing.T) {
	ledger := NewTreasuryLedger(nil)
	err := ledger.Restore(entities.TreasurySnapshot{
		Total:      10,
		Categories: []entities.CategoryBalance{{Category: entities.CategoryGeneral, Balance: 9}},
	})
	assert.ErrorIs(t, err, domainerrors.ErrLedgerInconsistency)
	assert.True(t, domainerrors.IsFatal(err))
}
