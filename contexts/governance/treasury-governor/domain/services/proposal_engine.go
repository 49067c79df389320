package services

import (
	"strings"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
)

const MaxBasisPoints uint32 = 10_000

// DefaultParams returns the per-type thresholds used when no override is
// configured.
func DefaultParams() map[entities.ProposalType]entities.GovernanceParams {
	return map[entities.ProposalType]entities.GovernanceParams{
		entities.ProposalTypeStandard: {
			QuorumBps:    4000,
			ApprovalBps:  5000,
			Timelock:     48 * time.Hour,
			VotingWindow: 40320,
		},
		entities.ProposalTypeEmergency: {
			QuorumBps:    2000,
			ApprovalBps:  6700,
			Timelock:     time.Hour,
			VotingWindow: 5760,
		},
		entities.ProposalTypeConstitutional: {
			QuorumBps:    6000,
			ApprovalBps:  6700,
			Timelock:     7 * 24 * time.Hour,
			VotingWindow: 80640,
		},
	}
}

// ValidateParams checks a full parameter set for one proposal type.
func ValidateParams(params entities.GovernanceParams) error {
	if params.QuorumBps == 0 || params.QuorumBps > MaxBasisPoints {
		return domainerrors.ErrInvalidBasisPoints
	}
	if params.ApprovalBps == 0 || params.ApprovalBps > MaxBasisPoints {
		return domainerrors.ErrInvalidBasisPoints
	}
	if params.Timelock <= 0 || params.VotingWindow == 0 {
		return domainerrors.ErrInvalidDuration
	}
	return nil
}

type CreateProposalInput struct {
	Proposer    string
	Recipient   string
	Amount      uint64
	Description string
	Type        entities.ProposalType
	Height      uint64
	Now         time.Time
}

// ProposalEngine runs the proposal lifecycle. It reads voting power and the
// treasury total through references it does not own.
type ProposalEngine struct {
	proposals []entities.Proposal
	receipts  []map[string]entities.VoteReceipt
	// shared marks receipt maps still owned by the engine this one was
	// cloned from; they are copied before the first write.
	shared    []bool
	params    map[entities.ProposalType]entities.GovernanceParams
	power     *VotingPowerEngine
	treasury  *TreasuryLedger
}

func NewProposalEngine(
	power *VotingPowerEngine,
	treasury *TreasuryLedger,
	params map[entities.ProposalType]entities.GovernanceParams,
) *ProposalEngine {
	resolved := DefaultParams()
	for proposalType, override := range params {
		if proposalType.Valid() && ValidateParams(override) == nil {
			resolved[proposalType] = override
		}
	}
	return &ProposalEngine{
		params:   resolved,
		power:    power,
		treasury: treasury,
	}
}

func (e *ProposalEngine) Create(input CreateProposalInput) (entities.Proposal, error) {
	if !input.Type.Valid() {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalType
	}
	if !validAccount(input.Proposer) {
		return entities.Proposal{}, domainerrors.ErrInvalidAccount
	}
	if !validAccount(input.Recipient) {
		return entities.Proposal{}, domainerrors.ErrInvalidRecipient
	}
	if input.Amount == 0 {
		return entities.Proposal{}, domainerrors.ErrInvalidAmount
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidDescription
	}
	if !e.power.CanPropose(input.Proposer) {
		return entities.Proposal{}, domainerrors.ErrBelowProposalThreshold
	}
	params := e.params[input.Type]
	end, ok := addChecked(input.Height, params.VotingWindow)
	if !ok {
		return entities.Proposal{}, domainerrors.ErrAmountOverflow
	}

	proposal := entities.Proposal{
		ProposalID:  uint64(len(e.proposals)),
		Proposer:    input.Proposer,
		Recipient:   input.Recipient,
		Amount:      input.Amount,
		Description: description,
		Type:        input.Type,
		StartHeight: input.Height,
		EndHeight:   end,
		State:       entities.ProposalStatePending,
		CreatedAt:   input.Now,
	}
	e.proposals = append(e.proposals, proposal)
	e.receipts = append(e.receipts, make(map[string]entities.VoteReceipt))
	e.shared = append(e.shared, false)
	return proposal, nil
}

func (e *ProposalEngine) get(proposalID uint64) (*entities.Proposal, error) {
	if proposalID >= uint64(len(e.proposals)) {
		return nil, domainerrors.ErrProposalNotFound
	}
	return &e.proposals[proposalID], nil
}

// CastVote records one vote per voter. A voter whose current power is zero
// still counts with weight one.
func (e *ProposalEngine) CastVote(proposalID uint64, voter string, option entities.VoteOption, height uint64) (entities.VoteReceipt, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.VoteReceipt{}, err
	}
	if !validAccount(voter) {
		return entities.VoteReceipt{}, domainerrors.ErrInvalidAccount
	}
	if !option.Valid() {
		return entities.VoteReceipt{}, domainerrors.ErrInvalidVoteOption
	}
	if proposal.Cancelled {
		return entities.VoteReceipt{}, domainerrors.ErrProposalCancelled
	}
	if !proposal.VotingOpen(height) {
		return entities.VoteReceipt{}, domainerrors.ErrVotingClosed
	}
	receipts := e.receipts[proposalID]
	if receipts[voter].HasVoted {
		return entities.VoteReceipt{}, domainerrors.ErrAlreadyVoted
	}

	power := max(e.power.VotingPower(voter), 1)
	tally := proposal.Tally
	var ok bool
	switch option {
	case entities.VoteOptionFor:
		tally.For, ok = addChecked(tally.For, power)
	case entities.VoteOptionAgainst:
		tally.Against, ok = addChecked(tally.Against, power)
	case entities.VoteOptionAbstain:
		tally.Abstain, ok = addChecked(tally.Abstain, power)
	}
	if !ok {
		return entities.VoteReceipt{}, domainerrors.ErrAmountOverflow
	}
	if !tallyFits(tally) {
		return entities.VoteReceipt{}, domainerrors.ErrAmountOverflow
	}

	receipt := entities.VoteReceipt{HasVoted: true, Option: option, Power: power}
	e.writableReceipts(proposalID)[voter] = receipt
	proposal.Tally = tally
	if proposal.State == entities.ProposalStatePending {
		proposal.State = entities.ProposalStateActive
	}
	return receipt, nil
}

// Queue moves a successful proposal into the timelock. Checks run in order:
// window closed, quorum, majority, approval threshold, treasury coverage.
func (e *ProposalEngine) Queue(proposalID uint64, height uint64, now time.Time) (entities.Proposal, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Cancelled {
		return entities.Proposal{}, domainerrors.ErrProposalCancelled
	}
	switch proposal.State {
	case entities.ProposalStateQueued:
		return entities.Proposal{}, domainerrors.ErrAlreadyQueued
	case entities.ProposalStateExecuted:
		return entities.Proposal{}, domainerrors.ErrAlreadyExecuted
	}
	if height <= proposal.EndHeight {
		return entities.Proposal{}, domainerrors.ErrVotingNotClosed
	}
	if proposal.State != entities.ProposalStateActive {
		return entities.Proposal{}, domainerrors.ErrProposalNotActive
	}

	params := e.params[proposal.Type]
	tally := proposal.Tally
	participation := tally.Participation()
	quorum := mulDiv(e.power.TotalVotingPower(), uint64(params.QuorumBps), uint64(MaxBasisPoints))
	if participation < quorum {
		return entities.Proposal{}, domainerrors.ErrQuorumNotMet
	}
	if tally.For <= tally.Against {
		return entities.Proposal{}, domainerrors.ErrProposalDefeated
	}
	approval := mulDiv(participation, uint64(params.ApprovalBps), uint64(MaxBasisPoints))
	if tally.For < approval {
		return entities.Proposal{}, domainerrors.ErrApprovalNotMet
	}
	if e.treasury.TotalBalance() < proposal.Amount {
		return entities.Proposal{}, domainerrors.ErrInsufficientTreasury
	}

	queuedAt := now
	proposal.State = entities.ProposalStateQueued
	proposal.QueuedAt = &queuedAt
	return *proposal, nil
}

// CheckExecutable validates that a queued proposal may be paid out at now.
// It does not mutate state; MarkExecuted records the outcome.
func (e *ProposalEngine) CheckExecutable(proposalID uint64, now time.Time) (entities.Proposal, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Cancelled {
		return entities.Proposal{}, domainerrors.ErrProposalCancelled
	}
	switch proposal.State {
	case entities.ProposalStateExecuted:
		return entities.Proposal{}, domainerrors.ErrAlreadyExecuted
	case entities.ProposalStateQueued:
	default:
		return entities.Proposal{}, domainerrors.ErrProposalNotQueued
	}
	if proposal.QueuedAt == nil {
		return entities.Proposal{}, domainerrors.ErrLedgerInconsistency
	}
	timelock := e.params[proposal.Type].Timelock
	if now.Before(proposal.QueuedAt.Add(timelock)) {
		return entities.Proposal{}, domainerrors.ErrTimelockNotElapsed
	}
	if e.treasury.TotalBalance() < proposal.Amount {
		return entities.Proposal{}, domainerrors.ErrInsufficientTreasury
	}
	return *proposal, nil
}

// MarkExecuted records a payout that has already left the treasury.
func (e *ProposalEngine) MarkExecuted(proposalID uint64, now time.Time) (entities.Proposal, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Cancelled {
		return entities.Proposal{}, domainerrors.ErrProposalCancelled
	}
	if proposal.State != entities.ProposalStateQueued {
		return entities.Proposal{}, domainerrors.ErrProposalNotQueued
	}
	executedAt := now
	proposal.State = entities.ProposalStateExecuted
	proposal.ExecutedAt = &executedAt
	return *proposal, nil
}

func (e *ProposalEngine) Cancel(proposalID uint64) (entities.Proposal, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Cancelled {
		return entities.Proposal{}, domainerrors.ErrAlreadyCancelled
	}
	if proposal.State == entities.ProposalStateExecuted {
		return entities.Proposal{}, domainerrors.ErrAlreadyExecuted
	}
	proposal.Cancelled = true
	return *proposal, nil
}

func (e *ProposalEngine) Proposal(proposalID uint64) (entities.Proposal, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	return *proposal, nil
}

func (e *ProposalEngine) State(proposalID uint64, height uint64) (entities.ProposalState, error) {
	proposal, err := e.get(proposalID)
	if err != nil {
		return "", err
	}
	return proposal.EffectiveState(height), nil
}

func (e *ProposalEngine) Receipt(proposalID uint64, voter string) (entities.VoteReceipt, error) {
	if _, err := e.get(proposalID); err != nil {
		return entities.VoteReceipt{}, err
	}
	return e.receipts[proposalID][voter], nil
}

func (e *ProposalEngine) Count() uint64 {
	return uint64(len(e.proposals))
}

// List returns proposals in creation order starting at offset.
func (e *ProposalEngine) List(offset, limit int) []entities.Proposal {
	if offset < 0 || offset >= len(e.proposals) {
		return []entities.Proposal{}
	}
	end := len(e.proposals)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	items := make([]entities.Proposal, end-offset)
	copy(items, e.proposals[offset:end])
	return items
}

func (e *ProposalEngine) Params(proposalType entities.ProposalType) (entities.GovernanceParams, error) {
	if !proposalType.Valid() {
		return entities.GovernanceParams{}, domainerrors.ErrInvalidProposalType
	}
	return e.params[proposalType], nil
}

// SetParams replaces every threshold of one type after validating the full set.
func (e *ProposalEngine) SetParams(proposalType entities.ProposalType, params entities.GovernanceParams) error {
	if !proposalType.Valid() {
		return domainerrors.ErrInvalidProposalType
	}
	if err := ValidateParams(params); err != nil {
		return err
	}
	e.params[proposalType] = params
	return nil
}

func (e *ProposalEngine) SetQuorumBps(proposalType entities.ProposalType, bps uint32) error {
	params, err := e.Params(proposalType)
	if err != nil {
		return err
	}
	params.QuorumBps = bps
	return e.SetParams(proposalType, params)
}

func (e *ProposalEngine) SetApprovalBps(proposalType entities.ProposalType, bps uint32) error {
	params, err := e.Params(proposalType)
	if err != nil {
		return err
	}
	params.ApprovalBps = bps
	return e.SetParams(proposalType, params)
}

func (e *ProposalEngine) SetTimelock(proposalType entities.ProposalType, timelock time.Duration) error {
	params, err := e.Params(proposalType)
	if err != nil {
		return err
	}
	params.Timelock = timelock
	return e.SetParams(proposalType, params)
}

func (e *ProposalEngine) SetVotingWindow(proposalType entities.ProposalType, blocks uint64) error {
	params, err := e.Params(proposalType)
	if err != nil {
		return err
	}
	params.VotingWindow = blocks
	return e.SetParams(proposalType, params)
}

func tallyFits(tally entities.Tally) bool {
	sum, ok := addChecked(tally.For, tally.Against)
	if !ok {
		return false
	}
	_, ok = addChecked(sum, tally.Abstain)
	return ok
}

func (e *ProposalEngine) writableReceipts(proposalID uint64) map[string]entities.VoteReceipt {
	if e.shared[proposalID] {
		owned := make(map[string]entities.VoteReceipt, len(e.receipts[proposalID])+1)
		for voter, receipt := range e.receipts[proposalID] {
			owned[voter] = receipt
		}
		e.receipts[proposalID] = owned
		e.shared[proposalID] = false
	}
	return e.receipts[proposalID]
}

// clone copies proposal headers and params but shares every receipt map
// with e until the clone writes to it.
func (e *ProposalEngine) clone(power *VotingPowerEngine, treasury *TreasuryLedger) *ProposalEngine {
	params := make(map[entities.ProposalType]entities.GovernanceParams, len(e.params))
	for proposalType, value := range e.params {
		params[proposalType] = value
	}
	shared := make([]bool, len(e.receipts))
	for i := range shared {
		shared[i] = true
	}
	return &ProposalEngine{
		proposals: append([]entities.Proposal(nil), e.proposals...),
		receipts:  append([]map[string]entities.VoteReceipt(nil), e.receipts...),
		shared:    shared,
		params:    params,
		power:     power,
		treasury:  treasury,
	}
}

// ProposalRecord pairs a proposal with its receipts for snapshots.
type ProposalRecord struct {
	Proposal entities.Proposal
	Receipts map[string]entities.VoteReceipt
}

func (e *ProposalEngine) Records() []ProposalRecord {
	records := make([]ProposalRecord, 0, len(e.proposals))
	for i, proposal := range e.proposals {
		receipts := make(map[string]entities.VoteReceipt, len(e.receipts[i]))
		for voter, receipt := range e.receipts[i] {
			receipts[voter] = receipt
		}
		records = append(records, ProposalRecord{Proposal: proposal, Receipts: receipts})
	}
	return records
}

// Restore reloads proposals; identifiers must be dense and in order.
func (e *ProposalEngine) Restore(records []ProposalRecord, params map[entities.ProposalType]entities.GovernanceParams) error {
	proposals := make([]entities.Proposal, 0, len(records))
	receipts := make([]map[string]entities.VoteReceipt, 0, len(records))
	for i, record := range records {
		if record.Proposal.ProposalID != uint64(i) {
			return domainerrors.ErrLedgerInconsistency
		}
		votes := make(map[string]entities.VoteReceipt, len(record.Receipts))
		for voter, receipt := range record.Receipts {
			votes[voter] = receipt
		}
		proposals = append(proposals, record.Proposal)
		receipts = append(receipts, votes)
	}
	resolved := DefaultParams()
	for proposalType, override := range params {
		if !proposalType.Valid() {
			return domainerrors.ErrInvalidProposalType
		}
		if err := ValidateParams(override); err != nil {
			return err
		}
		resolved[proposalType] = override
	}
	e.proposals = proposals
	e.receipts = receipts
	e.shared = make([]bool, len(receipts))
	e.params = resolved
	return nil
}
