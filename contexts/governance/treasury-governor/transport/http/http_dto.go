package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type StakeRequest struct {
	Amount uint64 `json:"amount"`
}

type StakeResponse struct {
	Account     string `json:"account"`
	Stake       uint64 `json:"stake"`
	VotingPower uint64 `json:"voting_power"`
	TotalStake  uint64 `json:"total_stake"`
	Replayed    bool   `json:"replayed"`
}

type DelegateRequest struct {
	To string `json:"to"`
}

type MemberResponse struct {
	Account             string `json:"account"`
	Stake               uint64 `json:"stake"`
	VotingPower         uint64 `json:"voting_power"`
	Delegate            string `json:"delegate,omitempty"`
	ReceivedDelegations uint64 `json:"received_delegations"`
	CanPropose          bool   `json:"can_propose"`
}

type VotingPowerResponse struct {
	TotalStake       uint64 `json:"total_stake"`
	TotalVotingPower uint64 `json:"total_voting_power"`
	MinProposalStake uint64 `json:"min_proposal_stake"`
}

type ReceiveFundsRequest struct {
	Amount uint64 `json:"amount"`
}

type AllocateFundsRequest struct {
	Category string `json:"category"`
	Amount   uint64 `json:"amount"`
}

type TransferFundsRequest struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

type CategoryLimitRequest struct {
	Limit uint64 `json:"limit"`
}

type CategoryBalanceResponse struct {
	Category string `json:"category"`
	Balance  uint64 `json:"balance"`
	Limit    uint64 `json:"limit"`
}

type TreasuryResponse struct {
	Total      uint64                    `json:"total"`
	Paused     bool                      `json:"paused"`
	Categories []CategoryBalanceResponse `json:"categories"`
}

type DrawResponse struct {
	Category string `json:"category"`
	Amount   uint64 `json:"amount"`
}

type TransferFundsResponse struct {
	TransferID string           `json:"transfer_id"`
	Recipient  string           `json:"recipient"`
	Amount     uint64           `json:"amount"`
	Draws      []DrawResponse   `json:"draws"`
	Treasury   TreasuryResponse `json:"treasury"`
	Replayed   bool             `json:"replayed"`
}

type CreateProposalRequest struct {
	Recipient    string `json:"recipient"`
	Amount       uint64 `json:"amount"`
	Description  string `json:"description"`
	ProposalType string `json:"proposal_type"`
}

type CastVoteRequest struct {
	Option string `json:"option"`
}

type TallyResponse struct {
	For     uint64 `json:"for"`
	Against uint64 `json:"against"`
	Abstain uint64 `json:"abstain"`
}

type ProposalResponse struct {
	ProposalID   uint64        `json:"proposal_id"`
	Proposer     string        `json:"proposer"`
	Recipient    string        `json:"recipient"`
	Amount       uint64        `json:"amount"`
	Description  string        `json:"description"`
	ProposalType string        `json:"proposal_type"`
	State        string        `json:"state"`
	StartHeight  uint64        `json:"start_height"`
	EndHeight    uint64        `json:"end_height"`
	Tally        TallyResponse `json:"tally"`
	Cancelled    bool          `json:"cancelled"`
	CreatedAt    string        `json:"created_at,omitempty"`
	QueuedAt     string        `json:"queued_at,omitempty"`
	ExecutedAt   string        `json:"executed_at,omitempty"`
}

type ListProposalsResponse struct {
	Items []ProposalResponse `json:"items"`
	Total uint64             `json:"total"`
}

type VoteResponse struct {
	ProposalID uint64        `json:"proposal_id"`
	Voter      string        `json:"voter"`
	Option     string        `json:"option"`
	Power      uint64        `json:"power"`
	Tally      TallyResponse `json:"tally"`
	State      string        `json:"state"`
}

type ReceiptResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	HasVoted   bool   `json:"has_voted"`
	Option     string `json:"option,omitempty"`
	Power      uint64 `json:"power"`
}

type ParamsResponse struct {
	ProposalType string `json:"proposal_type"`
	QuorumBps    uint32 `json:"quorum_bps"`
	ApprovalBps  uint32 `json:"approval_bps"`
	Timelock     string `json:"timelock"`
	VotingWindow uint64 `json:"voting_window"`
}

// UpdateParamsRequest changes only the fields that are present. Timelock uses
// Go duration syntax, for example "48h".
type UpdateParamsRequest struct {
	QuorumBps    *uint32 `json:"quorum_bps,omitempty"`
	ApprovalBps  *uint32 `json:"approval_bps,omitempty"`
	Timelock     *string `json:"timelock,omitempty"`
	VotingWindow *uint64 `json:"voting_window,omitempty"`
}
