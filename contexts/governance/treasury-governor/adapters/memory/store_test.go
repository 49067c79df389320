package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateDiscardsWorkOnError(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(_ context.Context, g *services.Governance) error {
		return g.Power.Deposit("alice", 100)
	}))

	boom := errors.New("boom")
	err := store.Update(ctx, func(_ context.Context, g *services.Governance) error {
		if err := g.Power.Deposit("alice", 50); err != nil {
			return err
		}
		if err := g.Treasury.Receive(10); err != nil {
			return err
		}
		g.NextSequence()
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, store.View(ctx, func(g *services.Governance) error {
		assert.Equal(t, uint64(100), g.Power.StakeOf("alice"))
		assert.Equal(t, uint64(0), g.Treasury.TotalBalance())
		assert.Equal(t, uint64(0), g.Sequence())
		return nil
	}))
}

func TestPayoutsCommitWithTheLedger(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	ctx := context.Background()
	payout := ports.TransferInstruction{
		TransferID: "transfer-1",
		Source:     ports.TransferSourceTreasury,
		Recipient:  "vendor",
		Amount:     300,
	}

	boom := errors.New("snapshot write failed")
	err := store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		if err := store.Transfer(ctx, payout); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.Payouts())

	require.NoError(t, store.Update(ctx, func(ctx context.Context, g *services.Governance) error {
		return store.Transfer(ctx, payout)
	}))
	require.Len(t, store.Payouts(), 1)
	assert.Equal(t, "vendor", store.Payouts()[0].Recipient)
}

func TestUpdateHonoursCancelledContext(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Update(ctx, func(context.Context, *services.Governance) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestOutboxKeepsAppendOrder(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"evt-c", "evt-a", "evt-b"} {
		require.NoError(t, store.Append(ctx, ports.EventEnvelope{
			EventID:    id,
			EventType:  string(entities.EventStakeDeposited),
			Sequence:   uint64(i + 1),
			OccurredAt: base,
		}))
	}
	require.NoError(t, store.Append(ctx, ports.EventEnvelope{
		EventID:    "evt-c",
		EventType:  string(entities.EventStakeDeposited),
		Sequence:   1,
		OccurredAt: base,
	}))
	assert.ErrorIs(t, store.Append(ctx, ports.EventEnvelope{EventID: "evt-c", EventType: "other"}), ErrOutboxConflict)

	pending, err := store.ListPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-c", pending[0].OutboxID)
	assert.Equal(t, "evt-a", pending[1].OutboxID)

	require.NoError(t, store.MarkOutboxPublished(ctx, "evt-c", base))
	pending, err = store.ListPendingOutbox(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "evt-a", pending[0].OutboxID)
	assert.ErrorIs(t, store.MarkOutboxPublished(ctx, "missing", base), ErrOutboxNotFound)
}

func TestCapabilityGrants(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	ctx := context.Background()

	store.Grant("alice", entities.CapabilityVote, entities.CapabilityPropose)
	ok, err := store.HasCapability(ctx, entities.CapabilityVote, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	store.Revoke("alice", entities.CapabilityVote)
	ok, err = store.HasCapability(ctx, entities.CapabilityVote, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.HasCapability(ctx, entities.CapabilityAdmin, "mallory")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClockAndHeightControls(t *testing.T) {
	store := NewStore(services.DefaultGovernanceConfig())
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	store.SetNow(now)
	store.Advance(time.Hour)
	assert.Equal(t, now.Add(time.Hour), store.Now())

	store.SetHeight(10)
	store.AdvanceHeight(5)
	assert.Equal(t, uint64(15), store.Height())
}
