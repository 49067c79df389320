package workers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"commonwealth/contexts/governance/treasury-governor/adapters/memory"
	"commonwealth/contexts/governance/treasury-governor/application/workers"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
	contractsv1 "commonwealth/contracts/gen/events/v1"
)

var relayNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct {
	published []ports.EventEnvelope
	failOn    string
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	if event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func appendEvents(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		err := store.Append(context.Background(), ports.EventEnvelope{
			EventID:       id,
			EventType:     "governance.stake.deposited",
			Sequence:      uint64(i + 1),
			OccurredAt:    relayNow,
			SchemaVersion: contractsv1.SchemaVersion,
			PartitionKey:  "alice",
		})
		if err != nil {
			t.Fatalf("append %s failed: %v", id, err)
		}
	}
}

func newRelay(store *memory.Store, publisher ports.EventPublisher) workers.OutboxRelay {
	return workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: relayNow},
		Topic:     "governance.events",
		BatchSize: 10,
	}
}

func TestOutboxRelayPublishesInAppendOrder(t *testing.T) {
	store := memory.NewStore(services.DefaultGovernanceConfig())
	appendEvents(t, store, "evt-1", "evt-2", "evt-3")
	publisher := &recordingPublisher{}

	published, err := newRelay(store, publisher).RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if published != 3 || len(publisher.published) != 3 {
		t.Fatalf("expected 3 published events, got %d/%d", published, len(publisher.published))
	}
	for i, event := range publisher.published {
		if want := fmt.Sprintf("evt-%d", i+1); event.EventID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, event.EventID)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected empty outbox, got %d rows", len(pending))
	}
}

func TestOutboxRelayStopsAtFirstPublishFailure(t *testing.T) {
	store := memory.NewStore(services.DefaultGovernanceConfig())
	appendEvents(t, store, "evt-1", "evt-2", "evt-3")
	publisher := &recordingPublisher{failOn: "evt-2"}
	relay := newRelay(store, publisher)

	published, err := relay.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected publish failure")
	}
	if published != 1 || len(publisher.published) != 1 {
		t.Fatalf("expected only evt-1 to be published, got %d", published)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "evt-2" || pending[1].OutboxID != "evt-3" {
		t.Fatalf("expected evt-2 and evt-3 to stay pending, got %+v", pending)
	}

	publisher.failOn = ""
	published, err = relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay retry failed: %v", err)
	}
	if published != 2 || publisher.published[1].EventID != "evt-2" || publisher.published[2].EventID != "evt-3" {
		t.Fatalf("expected evt-2 then evt-3 on retry, got %+v", publisher.published)
	}
}

func TestOutboxRelayDeadLettersInvalidRows(t *testing.T) {
	store := memory.NewStore(services.DefaultGovernanceConfig())
	appendEvents(t, store, "evt-1")
	if err := store.Append(context.Background(), ports.EventEnvelope{
		EventID:    "evt-legacy",
		EventType:  "governance.stake.deposited",
		Sequence:   2,
		OccurredAt: relayNow,
	}); err != nil {
		t.Fatalf("append legacy row failed: %v", err)
	}
	if err := store.Append(context.Background(), ports.EventEnvelope{
		EventID:       "evt-3",
		EventType:     "governance.stake.deposited",
		Sequence:      3,
		OccurredAt:    relayNow,
		SchemaVersion: contractsv1.SchemaVersion,
	}); err != nil {
		t.Fatalf("append evt-3 failed: %v", err)
	}
	publisher := &recordingPublisher{}
	relay := newRelay(store, publisher)

	published, err := relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if published != 2 || publisher.published[0].EventID != "evt-1" || publisher.published[1].EventID != "evt-3" {
		t.Fatalf("expected evt-1 and evt-3 published, got %+v", publisher.published)
	}
	failed := store.FailedOutbox()
	if _, ok := failed["evt-legacy"]; !ok || len(failed) != 1 {
		t.Fatalf("expected evt-legacy to be dead-lettered, got %+v", failed)
	}

	published, err = relay.RunOnce(context.Background())
	if err != nil || published != 0 {
		t.Fatalf("expected an idle second cycle, got %d, %v", published, err)
	}
}

type failingLedger struct {
	err error
}

func (l failingLedger) Update(context.Context, func(context.Context, *services.Governance) error) error {
	return l.err
}

func (l failingLedger) View(context.Context, func(*services.Governance) error) error {
	return l.err
}

func TestLedgerAuditorPassesBalancedLedger(t *testing.T) {
	store := memory.NewStore(services.DefaultGovernanceConfig())
	err := store.Update(context.Background(), func(_ context.Context, g *services.Governance) error {
		return g.Treasury.Receive(500)
	})
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	if err := (workers.LedgerAuditor{Store: store}).RunOnce(context.Background()); err != nil {
		t.Fatalf("expected balanced ledger, got %v", err)
	}
}

func TestLedgerAuditorReportsUnbalancedSnapshot(t *testing.T) {
	rejected := fmt.Errorf("restore governance snapshot: %w", domainerrors.ErrLedgerInconsistency)
	err := (workers.LedgerAuditor{Store: failingLedger{err: rejected}}).RunOnce(context.Background())
	if !errors.Is(err, domainerrors.ErrLedgerInconsistency) {
		t.Fatalf("expected ledger inconsistency, got %v", err)
	}
	if !domainerrors.IsFatal(err) {
		t.Fatalf("expected inconsistency to be fatal")
	}
}

func TestLedgerAuditorReadFailureIsNotFatal(t *testing.T) {
	err := (workers.LedgerAuditor{Store: failingLedger{err: errors.New("connection reset")}}).RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected read failure")
	}
	if domainerrors.IsFatal(err) {
		t.Fatalf("expected read failure to be retryable, got %v", err)
	}
}
