package errors

import "errors"

// Kind classifies a domain error so callers can decide between correcting
// input, retrying later, or stopping for manual audit.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindAuthorization       Kind = "authorization_denied"
	KindStateViolation      Kind = "state_violation"
	KindResourceExhausted   Kind = "resource_exhausted"
	KindPaused              Kind = "paused"
	KindLedgerInconsistency Kind = "ledger_inconsistency"
	KindInternal            Kind = "internal"
)

var (
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrAmountOverflow      = errors.New("amount overflows ledger capacity")
	ErrInvalidDescription  = errors.New("description is required")
	ErrInvalidDelegate     = errors.New("invalid delegate")
	ErrNoStake             = errors.New("account holds no stake")
	ErrInvalidProposalType = errors.New("invalid proposal type")
	ErrInvalidVoteOption   = errors.New("invalid vote option")
	ErrInvalidCategory     = errors.New("invalid fund category")
	ErrInvalidBasisPoints  = errors.New("basis points must be within (0, 10000]")
	ErrInvalidDuration     = errors.New("duration must be greater than zero")
	ErrInvalidLimit        = errors.New("invalid category limit")
	ErrProposalNotFound    = errors.New("proposal not found")

	ErrUnauthorized = errors.New("caller lacks required capability")

	ErrAlreadyVoted       = errors.New("voter already voted on proposal")
	ErrVotingClosed       = errors.New("voting window is closed")
	ErrVotingNotClosed    = errors.New("voting window has not closed")
	ErrProposalCancelled  = errors.New("proposal is cancelled")
	ErrAlreadyCancelled   = errors.New("proposal is already cancelled")
	ErrAlreadyQueued      = errors.New("proposal is already queued")
	ErrAlreadyExecuted    = errors.New("proposal is already executed")
	ErrProposalNotActive  = errors.New("proposal is not active")
	ErrProposalNotQueued  = errors.New("proposal is not queued")
	ErrTimelockNotElapsed = errors.New("timelock has not elapsed")
	ErrQuorumNotMet       = errors.New("quorum not met")
	ErrProposalDefeated   = errors.New("proposal defeated")
	ErrApprovalNotMet     = errors.New("approval threshold not met")
	ErrNoDelegation       = errors.New("no active delegation")
	ErrAlreadyPaused      = errors.New("treasury is already paused")
	ErrNotPaused          = errors.New("treasury is not paused")

	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

	ErrInsufficientStake         = errors.New("insufficient stake")
	ErrBelowProposalThreshold    = errors.New("stake below proposal threshold")
	ErrInsufficientTreasury      = errors.New("insufficient treasury balance")
	ErrInsufficientCategoryFunds = errors.New("insufficient default category balance")
	ErrCategoryLimitExceeded     = errors.New("category limit exceeded")

	ErrTreasuryPaused = errors.New("treasury is paused")

	ErrLedgerInconsistency = errors.New("ledger inconsistency")
)

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindLedgerInconsistency, []error{ErrLedgerInconsistency}},
	{KindPaused, []error{ErrTreasuryPaused}},
	{KindAuthorization, []error{ErrUnauthorized}},
	{KindResourceExhausted, []error{
		ErrInsufficientStake,
		ErrBelowProposalThreshold,
		ErrInsufficientTreasury,
		ErrInsufficientCategoryFunds,
		ErrCategoryLimitExceeded,
	}},
	{KindStateViolation, []error{
		ErrAlreadyVoted,
		ErrVotingClosed,
		ErrVotingNotClosed,
		ErrProposalCancelled,
		ErrAlreadyCancelled,
		ErrAlreadyQueued,
		ErrAlreadyExecuted,
		ErrProposalNotActive,
		ErrProposalNotQueued,
		ErrTimelockNotElapsed,
		ErrQuorumNotMet,
		ErrProposalDefeated,
		ErrApprovalNotMet,
		ErrNoDelegation,
		ErrAlreadyPaused,
		ErrNotPaused,
		ErrIdempotencyConflict,
	}},
	{KindValidation, []error{
		ErrInvalidAccount,
		ErrInvalidRecipient,
		ErrInvalidAmount,
		ErrAmountOverflow,
		ErrInvalidDescription,
		ErrInvalidDelegate,
		ErrNoStake,
		ErrInvalidProposalType,
		ErrInvalidVoteOption,
		ErrInvalidCategory,
		ErrInvalidBasisPoints,
		ErrInvalidDuration,
		ErrInvalidLimit,
		ErrProposalNotFound,
	}},
}

// KindOf resolves the taxonomy kind of err. Errors that do not wrap a domain
// error (for example a failed value transfer) are reported as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, group := range kinds {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.kind
			}
		}
	}
	return KindInternal
}

// IsFatal reports whether err requires manual intervention instead of a retry.
func IsFatal(err error) bool {
	return KindOf(err) == KindLedgerInconsistency
}
