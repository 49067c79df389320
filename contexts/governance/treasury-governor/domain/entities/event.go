package entities

import "time"

type EventType string

const (
	EventStakeDeposited       EventType = "governance.stake.deposited"
	EventStakeWithdrawn       EventType = "governance.stake.withdrawn"
	EventDelegationSet        EventType = "governance.delegation.set"
	EventDelegationRevoked    EventType = "governance.delegation.revoked"
	EventTreasuryReceived     EventType = "governance.treasury.received"
	EventTreasuryAllocated    EventType = "governance.treasury.allocated"
	EventTreasuryTransferred  EventType = "governance.treasury.transferred"
	EventTreasuryPaused       EventType = "governance.treasury.paused"
	EventTreasuryResumed      EventType = "governance.treasury.resumed"
	EventTreasuryLimitChanged EventType = "governance.treasury.limit_changed"
	EventProposalCreated      EventType = "governance.proposal.created"
	EventProposalVoted        EventType = "governance.proposal.voted"
	EventProposalQueued       EventType = "governance.proposal.queued"
	EventProposalExecuted     EventType = "governance.proposal.executed"
	EventProposalCancelled    EventType = "governance.proposal.cancelled"
	EventParamsUpdated        EventType = "governance.params.updated"
)

// Event is a notification of a committed state change. Sequence is assigned
// while the ledger lock is held so consumers can order events totally.
type Event struct {
	EventID    string
	Sequence   uint64
	Type       EventType
	Actor      string
	Account    string
	Recipient  string
	ProposalID *uint64
	Amount     uint64
	Category   Category
	Option     VoteOption
	Height     uint64
	Attributes map[string]string
	OccurredAt time.Time
}

// PartitionKey keeps every ledger event on one partition so the sequence
// order survives delivery.
func (e Event) PartitionKey() string {
	return "governance-ledger"
}
