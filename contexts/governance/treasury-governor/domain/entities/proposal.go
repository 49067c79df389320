package entities

import "time"

type ProposalType string

const (
	ProposalTypeStandard       ProposalType = "standard"
	ProposalTypeEmergency      ProposalType = "emergency"
	ProposalTypeConstitutional ProposalType = "constitutional"
)

// ProposalTypes lists every supported type in a stable order.
var ProposalTypes = []ProposalType{
	ProposalTypeStandard,
	ProposalTypeEmergency,
	ProposalTypeConstitutional,
}

func (t ProposalType) Valid() bool {
	switch t {
	case ProposalTypeStandard, ProposalTypeEmergency, ProposalTypeConstitutional:
		return true
	default:
		return false
	}
}

type ProposalState string

const (
	ProposalStatePending   ProposalState = "pending"
	ProposalStateActive    ProposalState = "active"
	ProposalStateDefeated  ProposalState = "defeated"
	ProposalStateQueued    ProposalState = "queued"
	ProposalStateExpired   ProposalState = "expired"
	ProposalStateExecuted  ProposalState = "executed"
	ProposalStateCancelled ProposalState = "cancelled"
)

type VoteOption string

const (
	VoteOptionFor     VoteOption = "for"
	VoteOptionAgainst VoteOption = "against"
	VoteOptionAbstain VoteOption = "abstain"
)

func (o VoteOption) Valid() bool {
	switch o {
	case VoteOptionFor, VoteOptionAgainst, VoteOptionAbstain:
		return true
	default:
		return false
	}
}

type Tally struct {
	For     uint64
	Against uint64
	Abstain uint64
}

func (t Tally) Participation() uint64 {
	return t.For + t.Against + t.Abstain
}

type VoteReceipt struct {
	HasVoted bool
	Option   VoteOption
	Power    uint64
}

// GovernanceParams holds the per-type thresholds read at queue and execute time.
type GovernanceParams struct {
	QuorumBps    uint32
	ApprovalBps  uint32
	Timelock     time.Duration
	VotingWindow uint64
}

type Proposal struct {
	ProposalID  uint64
	Proposer    string
	Recipient   string
	Amount      uint64
	Description string
	Type        ProposalType
	StartHeight uint64
	EndHeight   uint64
	Tally       Tally
	State       ProposalState
	Cancelled   bool
	CreatedAt   time.Time
	QueuedAt    *time.Time
	ExecutedAt  *time.Time
}

// EffectiveState derives the state observers see at height. The stored state
// never records Defeated or Expired; both are computed from the window.
func (p Proposal) EffectiveState(height uint64) ProposalState {
	if p.Cancelled {
		return ProposalStateCancelled
	}
	switch p.State {
	case ProposalStateActive:
		if height > p.EndHeight {
			return ProposalStateDefeated
		}
	case ProposalStatePending:
		if height > p.EndHeight {
			return ProposalStateExpired
		}
	}
	return p.State
}

// VotingOpen reports whether height is within the inclusive voting window.
func (p Proposal) VotingOpen(height uint64) bool {
	return height >= p.StartHeight && height <= p.EndHeight
}
