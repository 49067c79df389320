package services

import (
	"testing"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestGovernance(t *testing.T, treasury uint64) *Governance {
	t.Helper()
	g := NewGovernance(DefaultGovernanceConfig())
	if treasury > 0 {
		require.NoError(t, g.Treasury.Receive(treasury))
	}
	return g
}

func createStandard(t *testing.T, g *Governance, proposer string, amount uint64, height uint64) entities.Proposal {
	t.Helper()
	proposal, err := g.Proposals.Create(CreateProposalInput{
		Proposer:    proposer,
		Recipient:   "vendor",
		Amount:      amount,
		Description: "fund the audit",
		Type:        entities.ProposalTypeStandard,
		Height:      height,
		Now:         epoch,
	})
	require.NoError(t, err)
	return proposal
}

func TestCreateValidatesInput(t *testing.T) {
	g := newTestGovernance(t, 0)
	require.NoError(t, g.Power.Deposit("alice", 100))
	require.NoError(t, g.Power.Deposit("bob", 99))

	base := CreateProposalInput{
		Proposer: "alice", Recipient: "vendor", Amount: 1,
		Description: "x", Type: entities.ProposalTypeStandard, Height: 10,
	}
	cases := []struct {
		name   string
		mutate func(*CreateProposalInput)
		want   error
	}{
		{"below threshold", func(in *CreateProposalInput) { in.Proposer = "bob" }, domainerrors.ErrBelowProposalThreshold},
		{"zero amount", func(in *CreateProposalInput) { in.Amount = 0 }, domainerrors.ErrInvalidAmount},
		{"no recipient", func(in *CreateProposalInput) { in.Recipient = "" }, domainerrors.ErrInvalidRecipient},
		{"blank description", func(in *CreateProposalInput) { in.Description = "  " }, domainerrors.ErrInvalidDescription},
		{"unknown type", func(in *CreateProposalInput) { in.Type = "ordinary" }, domainerrors.ErrInvalidProposalType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := base
			tc.mutate(&input)
			_, err := g.Proposals.Create(input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, uint64(0), g.Proposals.Count())

	proposal, err := g.Proposals.Create(base)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), proposal.ProposalID)
	assert.Equal(t, uint64(10), proposal.StartHeight)
	assert.Equal(t, uint64(10+40320), proposal.EndHeight)
	assert.Equal(t, entities.ProposalStatePending, proposal.State)
}

func TestVotingRules(t *testing.T) {
	g := newTestGovernance(t, 1000)
	require.NoError(t, g.Power.Deposit("alice", 400))
	proposal := createStandard(t, g, "alice", 10, 0)

	receipt, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), receipt.Power)

	state, err := g.Proposals.State(proposal.ProposalID, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateActive, state)

	_, err = g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionAgainst, 1)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)

	// zero-power voters are floored to one
	receipt, err = g.Proposals.CastVote(proposal.ProposalID, "nobody", entities.VoteOptionAbstain, proposal.EndHeight)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Power)

	_, err = g.Proposals.CastVote(proposal.ProposalID, "late", entities.VoteOptionFor, proposal.EndHeight+1)
	assert.ErrorIs(t, err, domainerrors.ErrVotingClosed)
	_, err = g.Proposals.CastVote(proposal.ProposalID, "bob", "maybe", 1)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidVoteOption)
	_, err = g.Proposals.CastVote(99, "bob", entities.VoteOptionFor, 1)
	assert.ErrorIs(t, err, domainerrors.ErrProposalNotFound)

	stored, err := g.Proposals.Proposal(proposal.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, entities.Tally{For: 20, Abstain: 1}, stored.Tally)
}

func TestDerivedStates(t *testing.T) {
	g := newTestGovernance(t, 1000)
	require.NoError(t, g.Power.Deposit("alice", 400))
	silent := createStandard(t, g, "alice", 10, 0)
	voted := createStandard(t, g, "alice", 10, 0)
	_, err := g.Proposals.CastVote(voted.ProposalID, "alice", entities.VoteOptionFor, 5)
	require.NoError(t, err)

	after := silent.EndHeight + 1
	state, err := g.Proposals.State(silent.ProposalID, after)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateExpired, state)

	state, err = g.Proposals.State(voted.ProposalID, after)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateDefeated, state)

	stored, err := g.Proposals.Proposal(voted.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateActive, stored.State)

	_, err = g.Proposals.Queue(silent.ProposalID, after, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrProposalNotActive)
}

func TestQuorumBoundary(t *testing.T) {
	run := func(t *testing.T, voterStake uint64) error {
		g := newTestGovernance(t, 1000)
		// total stake 10000 gives total voting power 100; quorum is 40
		require.NoError(t, g.Power.Deposit("voter", voterStake))
		require.NoError(t, g.Power.Deposit("whale", 10000-voterStake))
		require.NoError(t, g.Power.Delegate("whale", "voter"))
		proposal := createStandard(t, g, "voter", 10, 0)
		_, err := g.Proposals.CastVote(proposal.ProposalID, "voter", entities.VoteOptionFor, 1)
		require.NoError(t, err)
		_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
		return err
	}

	t.Run("39 of 100 fails", func(t *testing.T) {
		err := run(t, 39*39)
		assert.ErrorIs(t, err, domainerrors.ErrQuorumNotMet)
	})
	t.Run("40 of 100 passes", func(t *testing.T) {
		assert.NoError(t, run(t, 40*40))
	})
}

func TestTieIsDefeated(t *testing.T) {
	g := newTestGovernance(t, 1000)
	require.NoError(t, g.Power.Deposit("alice", 100))
	require.NoError(t, g.Power.Deposit("bob", 100))
	proposal := createStandard(t, g, "alice", 10, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)
	_, err = g.Proposals.CastVote(proposal.ProposalID, "bob", entities.VoteOptionAgainst, 1)
	require.NoError(t, err)

	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrProposalDefeated)
}

func TestApprovalThresholdCountsAbstain(t *testing.T) {
	g := newTestGovernance(t, 1000)
	require.NoError(t, g.Power.Deposit("alice", 100))
	require.NoError(t, g.Power.Deposit("bob", 400))
	proposal := createStandard(t, g, "alice", 10, 0)
	// for=10, abstain=20: for > against but below 50% of participation
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)
	_, err = g.Proposals.CastVote(proposal.ProposalID, "bob", entities.VoteOptionAbstain, 1)
	require.NoError(t, err)

	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrApprovalNotMet)
}

func TestQueueAndExecuteLifecycle(t *testing.T) {
	g := newTestGovernance(t, 100)
	require.NoError(t, g.Power.Deposit("alice", 400))
	proposal := createStandard(t, g, "alice", 60, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)

	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrVotingNotClosed)

	_, err = g.Proposals.CheckExecutable(proposal.ProposalID, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrProposalNotQueued)

	queued, err := g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateQueued, queued.State)
	require.NotNil(t, queued.QueuedAt)

	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+2, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyQueued)

	_, err = g.Proposals.CheckExecutable(proposal.ProposalID, epoch.Add(47*time.Hour))
	assert.ErrorIs(t, err, domainerrors.ErrTimelockNotElapsed)

	readyAt := epoch.Add(48 * time.Hour)
	ready, err := g.Proposals.CheckExecutable(proposal.ProposalID, readyAt)
	require.NoError(t, err)
	plan, err := g.Treasury.PlanTransfer(ready.Recipient, ready.Amount)
	require.NoError(t, err)
	require.NoError(t, g.Treasury.Commit(plan))
	executed, err := g.Proposals.MarkExecuted(proposal.ProposalID, readyAt)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateExecuted, executed.State)
	assert.Equal(t, uint64(40), g.Treasury.TotalBalance())

	_, err = g.Proposals.CheckExecutable(proposal.ProposalID, readyAt)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExecuted)
	_, err = g.Proposals.Cancel(proposal.ProposalID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExecuted)
}

func TestQueueRequiresTreasuryCoverage(t *testing.T) {
	g := newTestGovernance(t, 10)
	require.NoError(t, g.Power.Deposit("alice", 400))
	proposal := createStandard(t, g, "alice", 11, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)
	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrInsufficientTreasury)
}

func TestCancelOverridesEveryState(t *testing.T) {
	g := newTestGovernance(t, 100)
	require.NoError(t, g.Power.Deposit("alice", 400))
	proposal := createStandard(t, g, "alice", 10, 0)

	cancelled, err := g.Proposals.Cancel(proposal.ProposalID)
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.Equal(t, entities.ProposalStateCancelled, cancelled.EffectiveState(proposal.EndHeight+1))

	_, err = g.Proposals.Cancel(proposal.ProposalID)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyCancelled)
	_, err = g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	assert.ErrorIs(t, err, domainerrors.ErrProposalCancelled)
}

func TestParamsAreLive(t *testing.T) {
	g := newTestGovernance(t, 100)
	require.NoError(t, g.Power.Deposit("alice", 400))
	require.NoError(t, g.Power.Deposit("bob", 9600))
	proposal := createStandard(t, g, "alice", 10, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)

	// alice holds 20 of 100 total power
	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrQuorumNotMet)

	require.NoError(t, g.Proposals.SetQuorumBps(entities.ProposalTypeStandard, 2000))
	_, err = g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	require.NoError(t, err)

	assert.ErrorIs(t, g.Proposals.SetQuorumBps(entities.ProposalTypeStandard, 0), domainerrors.ErrInvalidBasisPoints)
	assert.ErrorIs(t, g.Proposals.SetApprovalBps(entities.ProposalTypeStandard, 10001), domainerrors.ErrInvalidBasisPoints)
	assert.ErrorIs(t, g.Proposals.SetTimelock(entities.ProposalTypeStandard, 0), domainerrors.ErrInvalidDuration)
	assert.ErrorIs(t, g.Proposals.SetVotingWindow("ordinary", 10), domainerrors.ErrInvalidProposalType)
}

func TestGovernanceSnapshotRestore(t *testing.T) {
	g := newTestGovernance(t, 100)
	require.NoError(t, g.Power.Deposit("alice", 400))
	proposal := createStandard(t, g, "alice", 10, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)
	g.NextSequence()

	restored, err := RestoreGovernance(g.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), restored.Sequence())
	assert.Equal(t, g.Treasury.Snapshot(), restored.Treasury.Snapshot())
	receipt, err := restored.Proposals.Receipt(proposal.ProposalID, "alice")
	require.NoError(t, err)
	assert.True(t, receipt.HasVoted)
	_, err = restored.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 2)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyVoted)
}

func TestCloneLeavesOriginalUntouched(t *testing.T) {
	g := newTestGovernance(t, 100)
	require.NoError(t, g.Power.Deposit("alice", 400))
	require.NoError(t, g.Power.Deposit("bob", 100))
	proposal := createStandard(t, g, "alice", 60, 0)
	_, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)

	working := g.Clone()
	_, err = working.Proposals.CastVote(proposal.ProposalID, "bob", entities.VoteOptionAgainst, 1)
	require.NoError(t, err)
	require.NoError(t, working.Power.Deposit("carol", 9))
	require.NoError(t, working.Treasury.Receive(5))
	working.NextSequence()
	createStandard(t, working, "alice", 10, 1)

	receipt, err := g.Proposals.Receipt(proposal.ProposalID, "bob")
	require.NoError(t, err)
	assert.False(t, receipt.HasVoted)
	original, err := g.Proposals.Proposal(proposal.ProposalID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), original.Tally.Against)
	assert.Equal(t, uint64(1), g.Proposals.Count())
	assert.Equal(t, uint64(0), g.Power.StakeOf("carol"))
	assert.Equal(t, uint64(100), g.Treasury.TotalBalance())
	assert.Equal(t, uint64(0), g.Sequence())

	receipt, err = working.Proposals.Receipt(proposal.ProposalID, "alice")
	require.NoError(t, err)
	assert.True(t, receipt.HasVoted)
	receipt, err = working.Proposals.Receipt(proposal.ProposalID, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), receipt.Power)
}

func TestEndToEndSmallStakeScenario(t *testing.T) {
	g := newTestGovernance(t, 50)
	require.NoError(t, g.Proposals.SetParams(entities.ProposalTypeStandard, entities.GovernanceParams{
		QuorumBps:    4000,
		ApprovalBps:  6700,
		Timelock:     time.Second,
		VotingWindow: 10,
	}))
	require.NoError(t, g.Power.Deposit("alice", 100))
	require.NoError(t, g.Power.Deposit("bob", 1))
	assert.Equal(t, uint64(10), g.Power.VotingPower("alice"))
	assert.Equal(t, uint64(1), g.Power.VotingPower("bob"))

	proposal := createStandard(t, g, "alice", 30, 0)
	receipt, err := g.Proposals.CastVote(proposal.ProposalID, "alice", entities.VoteOptionFor, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), receipt.Power)

	queued, err := g.Proposals.Queue(proposal.ProposalID, proposal.EndHeight+1, epoch)
	require.NoError(t, err)
	assert.Equal(t, entities.ProposalStateQueued, queued.State)

	_, err = g.Proposals.CheckExecutable(proposal.ProposalID, epoch)
	assert.ErrorIs(t, err, domainerrors.ErrTimelockNotElapsed)

	readyAt := epoch.Add(time.Second)
	ready, err := g.Proposals.CheckExecutable(proposal.ProposalID, readyAt)
	require.NoError(t, err)
	plan, err := g.Treasury.PlanTransfer(ready.Recipient, ready.Amount)
	require.NoError(t, err)
	require.NoError(t, g.Treasury.Commit(plan))
	_, err = g.Proposals.MarkExecuted(proposal.ProposalID, readyAt)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), g.Treasury.TotalBalance())

	_, err = g.Proposals.CheckExecutable(proposal.ProposalID, readyAt)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExecuted)
}
