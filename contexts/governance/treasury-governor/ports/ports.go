package ports

import (
	"context"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	contractsv1 "commonwealth/contracts/gen/events/v1"
)

// LedgerStore serializes every mutation of the governance aggregate. Update
// runs fn under an exclusive lock and keeps its changes only when fn returns
// nil. Side effects fn performs through the ctx it receives (value transfers)
// commit or roll back together with the aggregate. View runs fn under a
// shared lock and must not mutate.
type LedgerStore interface {
	Update(ctx context.Context, fn func(ctx context.Context, g *services.Governance) error) error
	View(ctx context.Context, fn func(*services.Governance) error) error
}

type PermissionOracle interface {
	HasCapability(ctx context.Context, capability entities.Capability, account string) (bool, error)
}

type TransferSource string

const (
	TransferSourceTreasury TransferSource = "treasury"
	TransferSourceStake    TransferSource = "stake"
)

type TransferInstruction struct {
	TransferID  string
	Source      TransferSource
	Recipient   string
	Amount      uint64
	ProposalID  *uint64
	RequestedAt time.Time
}

// ValueTransfer moves value out of the engine. It is called while the ledger
// lock is held with the ctx handed to the Update callback; the transfer must
// become durable only if that update commits. A failure aborts the mutation.
type ValueTransfer interface {
	Transfer(ctx context.Context, instruction TransferInstruction) error
}

// EventSink receives committed events. Appends happen after the ledger lock
// is released, in sequence order per writer.
type EventSink interface {
	Append(ctx context.Context, event EventEnvelope) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxRepository lists rows that are neither published nor failed. A row
// marked failed is kept for inspection and never listed again.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
	MarkOutboxFailed(ctx context.Context, outboxID string, reason string, failedAt time.Time) error
}

type EventEnvelope = contractsv1.Envelope

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Response    []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

// HeightSource reports the current block height used for voting windows.
type HeightSource interface {
	Height() uint64
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
