package services

import (
	"math/rand"
	"testing"

	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositAndWithdrawTrackTotals(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)

	require.NoError(t, engine.Deposit("alice", 400))
	require.NoError(t, engine.Deposit("bob", 500))
	assert.Equal(t, uint64(900), engine.TotalStake())
	assert.Equal(t, uint64(20), engine.VotingPower("alice"))
	assert.Equal(t, uint64(30), engine.TotalVotingPower())

	require.NoError(t, engine.Withdraw("alice", 400))
	assert.Equal(t, uint64(0), engine.StakeOf("alice"))
	assert.Equal(t, uint64(500), engine.TotalStake())

	assert.ErrorIs(t, engine.Withdraw("bob", 501), domainerrors.ErrInsufficientStake)
	assert.ErrorIs(t, engine.Deposit("bob", 0), domainerrors.ErrInvalidAmount)
	assert.ErrorIs(t, engine.Deposit("", 5), domainerrors.ErrInvalidAccount)
	assert.Equal(t, uint64(500), engine.TotalStake())
}

func TestDepositOverflowIsRejected(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", ^uint64(0)))
	assert.ErrorIs(t, engine.Deposit("bob", 1), domainerrors.ErrAmountOverflow)
	assert.Equal(t, uint64(0), engine.StakeOf("bob"))
}

func TestDelegationRemovesPowerWithoutCreditingDelegate(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", 100))
	require.NoError(t, engine.Deposit("bob", 100))

	require.NoError(t, engine.Delegate("alice", "bob"))
	assert.Equal(t, uint64(0), engine.VotingPower("alice"))
	assert.Equal(t, uint64(10), engine.VotingPower("bob"))
	assert.Equal(t, uint64(0), engine.ReceivedDelegations("bob"))
	assert.Equal(t, uint64(14), engine.TotalVotingPower())

	require.NoError(t, engine.Delegate("alice", "carol"))
	to, ok := engine.DelegateOf("alice")
	require.True(t, ok)
	assert.Equal(t, "carol", to)

	require.NoError(t, engine.RevokeDelegation("alice"))
	assert.Equal(t, uint64(10), engine.VotingPower("alice"))
	assert.ErrorIs(t, engine.RevokeDelegation("alice"), domainerrors.ErrNoDelegation)
}

func TestDelegateValidation(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", 10))

	assert.ErrorIs(t, engine.Delegate("alice", "alice"), domainerrors.ErrInvalidDelegate)
	assert.ErrorIs(t, engine.Delegate("alice", ""), domainerrors.ErrInvalidDelegate)
	assert.ErrorIs(t, engine.Delegate("bob", "alice"), domainerrors.ErrNoStake)
}

func TestCanProposeUsesRawStake(t *testing.T) {
	engine := NewVotingPowerEngine(100)
	require.NoError(t, engine.Deposit("alice", 99))
	assert.False(t, engine.CanPropose("alice"))
	require.NoError(t, engine.Deposit("alice", 1))
	assert.True(t, engine.CanPropose("alice"))
}

func TestVotingPowerRestoreRoundTrip(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", 49))
	require.NoError(t, engine.Deposit("bob", 16))
	require.NoError(t, engine.Delegate("bob", "alice"))

	restored := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, restored.Restore(engine.Entries()))
	assert.Equal(t, engine.TotalStake(), restored.TotalStake())
	assert.Equal(t, uint64(7), restored.VotingPower("alice"))
	assert.Equal(t, uint64(0), restored.VotingPower("bob"))
}

func TestTotalPowerDampensAggregateStake(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", 100))
	require.NoError(t, engine.Deposit("bob", 1))

	sum := engine.VotingPower("alice") + engine.VotingPower("bob")
	assert.Equal(t, uint64(11), sum)
	assert.Equal(t, uint64(10), engine.TotalVotingPower())
}

func TestTotalPowerTracksStakeAcrossRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	accounts := []string{"alice", "bob", "carol", "dave"}
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	stakes := make(map[string]uint64, len(accounts))

	for i := 0; i < 2000; i++ {
		account := accounts[rng.Intn(len(accounts))]
		amount := uint64(rng.Intn(500) + 1)
		if rng.Intn(3) == 0 {
			err := engine.Withdraw(account, amount)
			if stakes[account] < amount {
				require.ErrorIs(t, err, domainerrors.ErrInsufficientStake)
			} else {
				require.NoError(t, err)
				stakes[account] -= amount
			}
		} else {
			require.NoError(t, engine.Deposit(account, amount))
			stakes[account] += amount
		}

		var sum uint64
		for _, stake := range stakes {
			sum += stake
		}
		require.Equal(t, sum, engine.TotalStake())
		require.Equal(t, Dampen(sum), engine.TotalVotingPower())
	}
}

func TestWithdrawKeepsZeroStakeRecord(t *testing.T) {
	engine := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, engine.Deposit("alice", 25))
	require.NoError(t, engine.Withdraw("alice", 25))

	entries := engine.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, StakeEntry{Account: "alice"}, entries[0])

	restored := NewVotingPowerEngine(DefaultMinProposalStake)
	require.NoError(t, restored.Restore(entries))
	assert.Len(t, restored.Entries(), 1)
	assert.Equal(t, uint64(0), restored.TotalStake())
}
