package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	governancehttp "commonwealth/contexts/governance/treasury-governor/transport/http"
)

const governancePrefix = "/api/governance/v1"

func (s *Server) registerGovernanceRoutes() {
	s.route("POST "+governancePrefix+"/stake/deposit", s.handleDeposit)
	s.route("POST "+governancePrefix+"/stake/withdraw", s.handleWithdraw)
	s.route("POST "+governancePrefix+"/delegation", s.handleDelegate)
	s.route("DELETE "+governancePrefix+"/delegation", s.handleRevokeDelegation)
	s.route("GET "+governancePrefix+"/members/{account}", s.handleMember)
	s.route("GET "+governancePrefix+"/power", s.handleVotingPower)

	s.route("GET "+governancePrefix+"/treasury", s.handleTreasury)
	s.route("GET "+governancePrefix+"/treasury/categories/{category}", s.handleCategoryBalance)
	s.route("PUT "+governancePrefix+"/treasury/categories/{category}/limit", s.handleSetCategoryLimit)
	s.route("POST "+governancePrefix+"/treasury/receive", s.handleReceiveFunds)
	s.route("POST "+governancePrefix+"/treasury/allocate", s.handleAllocateFunds)
	s.route("POST "+governancePrefix+"/treasury/transfer", s.handleTransferFunds)
	s.route("POST "+governancePrefix+"/treasury/pause", s.handlePauseTreasury)
	s.route("POST "+governancePrefix+"/treasury/resume", s.handleResumeTreasury)

	s.route("POST "+governancePrefix+"/proposals", s.handleCreateProposal)
	s.route("GET "+governancePrefix+"/proposals", s.handleListProposals)
	s.route("GET "+governancePrefix+"/proposals/{proposal_id}", s.handleGetProposal)
	s.route("GET "+governancePrefix+"/proposals/{proposal_id}/receipts/{voter}", s.handleReceipt)
	s.route("POST "+governancePrefix+"/proposals/{proposal_id}/votes", s.handleCastVote)
	s.route("POST "+governancePrefix+"/proposals/{proposal_id}/queue", s.handleQueueProposal)
	s.route("POST "+governancePrefix+"/proposals/{proposal_id}/execute", s.handleExecuteProposal)
	s.route("POST "+governancePrefix+"/proposals/{proposal_id}/cancel", s.handleCancelProposal)

	s.route("GET "+governancePrefix+"/params/{proposal_type}", s.handleParams)
	s.route("PUT "+governancePrefix+"/params/{proposal_type}", s.handleUpdateParams)
}

// handleDeposit godoc
// @Summary Deposit stake
// @Tags governance
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Account"
// @Param X-Request-Id header string true "Request id"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body governancehttp.StakeRequest true "Amount"
// @Success 200 {object} governancehttp.StakeResponse
// @Router /api/governance/v1/stake/deposit [post]
func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	account, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.StakeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.DepositHandler(r.Context(), account, r.Header.Get("Idempotency-Key"), req)
	s.respondGovernance(w, "stake_deposit", http.StatusOK, resp, err)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	account, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.StakeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.WithdrawHandler(r.Context(), account, r.Header.Get("Idempotency-Key"), req)
	s.respondGovernance(w, "stake_withdraw", http.StatusOK, resp, err)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	account, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.DelegateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.DelegateHandler(r.Context(), account, req)
	s.respondGovernance(w, "delegation_set", http.StatusOK, resp, err)
}

func (s *Server) handleRevokeDelegation(w http.ResponseWriter, r *http.Request) {
	account, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.RevokeDelegationHandler(r.Context(), account)
	s.respondGovernance(w, "delegation_revoke", http.StatusOK, resp, err)
}

func (s *Server) handleMember(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.MemberHandler(r.Context(), r.PathValue("account"))
	s.respondGovernance(w, "member_read", http.StatusOK, resp, err)
}

func (s *Server) handleVotingPower(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.VotingPowerHandler(r.Context())
	s.respondGovernance(w, "voting_power_read", http.StatusOK, resp, err)
}

// handleTreasury godoc
// @Summary Treasury balances per category
// @Tags governance
// @Produce json
// @Success 200 {object} governancehttp.TreasuryResponse
// @Router /api/governance/v1/treasury [get]
func (s *Server) handleTreasury(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.TreasuryHandler(r.Context())
	s.respondGovernance(w, "treasury_read", http.StatusOK, resp, err)
}

func (s *Server) handleCategoryBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.CategoryBalanceHandler(r.Context(), r.PathValue("category"))
	s.respondGovernance(w, "category_read", http.StatusOK, resp, err)
}

func (s *Server) handleSetCategoryLimit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.CategoryLimitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.SetCategoryLimitHandler(r.Context(), actor, r.PathValue("category"), req)
	s.respondGovernance(w, "treasury_set_limit", http.StatusOK, resp, err)
}

func (s *Server) handleReceiveFunds(w http.ResponseWriter, r *http.Request) {
	sender, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.ReceiveFundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.ReceiveFundsHandler(r.Context(), sender, r.Header.Get("Idempotency-Key"), req)
	s.respondGovernance(w, "treasury_receive", http.StatusOK, resp, err)
}

func (s *Server) handleAllocateFunds(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.AllocateFundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.AllocateFundsHandler(r.Context(), actor, req)
	s.respondGovernance(w, "treasury_allocate", http.StatusOK, resp, err)
}

// handleTransferFunds godoc
// @Summary Pay out treasury funds through the category waterfall
// @Tags governance
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Executor"
// @Param X-Request-Id header string true "Request id"
// @Param Idempotency-Key header string false "Idempotency key"
// @Param request body governancehttp.TransferFundsRequest true "Transfer"
// @Success 200 {object} governancehttp.TransferFundsResponse
// @Failure 423 {object} governancehttp.ErrorResponse
// @Router /api/governance/v1/treasury/transfer [post]
func (s *Server) handleTransferFunds(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.TransferFundsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.TransferFundsHandler(r.Context(), actor, r.Header.Get("Idempotency-Key"), req)
	s.respondGovernance(w, "treasury_transfer", http.StatusOK, resp, err)
}

func (s *Server) handlePauseTreasury(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.PauseTreasuryHandler(r.Context(), actor)
	s.respondGovernance(w, "treasury_pause", http.StatusOK, resp, err)
}

func (s *Server) handleResumeTreasury(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ResumeTreasuryHandler(r.Context(), actor)
	s.respondGovernance(w, "treasury_resume", http.StatusOK, resp, err)
}

// handleCreateProposal godoc
// @Summary Create a payout proposal
// @Tags governance
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Proposer"
// @Param X-Request-Id header string true "Request id"
// @Param request body governancehttp.CreateProposalRequest true "Proposal"
// @Success 201 {object} governancehttp.ProposalResponse
// @Router /api/governance/v1/proposals [post]
func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	proposer, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.CreateProposalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CreateProposalHandler(r.Context(), proposer, req)
	s.respondGovernance(w, "proposal_create", http.StatusCreated, resp, err)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	offset, okOffset := queryInt(r, "offset", 0)
	limit, okLimit := queryInt(r, "limit", 50)
	if !okOffset || !okLimit {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_pagination", string(domainerrors.KindValidation), "offset and limit must be non-negative integers")
		return
	}
	resp, err := s.governance.Handler.ListProposalsHandler(r.Context(), offset, limit)
	s.respondGovernance(w, "proposal_list", http.StatusOK, resp, err)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := proposalIDFrom(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), proposalID)
	s.respondGovernance(w, "proposal_read", http.StatusOK, resp, err)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := proposalIDFrom(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ReceiptHandler(r.Context(), proposalID, r.PathValue("voter"))
	s.respondGovernance(w, "receipt_read", http.StatusOK, resp, err)
}

// handleCastVote godoc
// @Summary Cast a vote on a proposal
// @Tags governance
// @Accept json
// @Produce json
// @Param proposal_id path int true "Proposal id"
// @Param X-User-Id header string true "Voter"
// @Param X-Request-Id header string true "Request id"
// @Param request body governancehttp.CastVoteRequest true "Vote"
// @Success 200 {object} governancehttp.VoteResponse
// @Router /api/governance/v1/proposals/{proposal_id}/votes [post]
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := requireActor(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDFrom(w, r)
	if !ok {
		return
	}
	var req governancehttp.CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CastVoteHandler(r.Context(), voter, proposalID, req)
	s.respondGovernance(w, "proposal_vote", http.StatusOK, resp, err)
}

func (s *Server) handleQueueProposal(w http.ResponseWriter, r *http.Request) {
	s.proposalAction(w, r, "proposal_queue", s.governance.Handler.QueueProposalHandler)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	s.proposalAction(w, r, "proposal_execute", s.governance.Handler.ExecuteProposalHandler)
}

func (s *Server) handleCancelProposal(w http.ResponseWriter, r *http.Request) {
	s.proposalAction(w, r, "proposal_cancel", s.governance.Handler.CancelProposalHandler)
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ParamsHandler(r.Context(), r.PathValue("proposal_type"))
	s.respondGovernance(w, "params_read", http.StatusOK, resp, err)
}

func (s *Server) handleUpdateParams(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req governancehttp.UpdateParamsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.UpdateParamsHandler(r.Context(), actor, r.PathValue("proposal_type"), req)
	s.respondGovernance(w, "params_update", http.StatusOK, resp, err)
}

func (s *Server) proposalAction(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	action func(ctx context.Context, actor string, proposalID uint64) (governancehttp.ProposalResponse, error),
) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDFrom(w, r)
	if !ok {
		return
	}
	resp, err := action(r.Context(), actor, proposalID)
	s.respondGovernance(w, operation, http.StatusOK, resp, err)
}

// respondGovernance writes payload on success or the mapped error, and counts
// the outcome per error kind.
func (s *Server) respondGovernance(w http.ResponseWriter, operation string, status int, payload any, err error) {
	if err == nil {
		s.metrics.ObserveOutcome(operation, "")
		writeJSON(w, status, payload)
		return
	}
	kind := domainerrors.KindOf(err)
	s.metrics.ObserveOutcome(operation, string(kind))
	if kind == domainerrors.KindInternal || kind == domainerrors.KindLedgerInconsistency {
		s.logger.Error("governance request failed",
			"event", "http_governance_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"operation", operation,
			"kind", string(kind),
			"error", err.Error(),
		)
	}
	writeGovernanceDomainError(w, err)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	kind := domainerrors.KindOf(err)
	switch {
	case errors.Is(err, domainerrors.ErrProposalNotFound):
		writeGovernanceError(w, http.StatusNotFound, "proposal_not_found", string(kind), err.Error())
	case errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeGovernanceError(w, http.StatusConflict, "idempotency_conflict", string(kind), err.Error())
	case kind == domainerrors.KindValidation:
		writeGovernanceError(w, http.StatusBadRequest, "invalid_request", string(kind), err.Error())
	case kind == domainerrors.KindAuthorization:
		writeGovernanceError(w, http.StatusForbidden, "forbidden", string(kind), err.Error())
	case kind == domainerrors.KindStateViolation:
		writeGovernanceError(w, http.StatusConflict, "state_violation", string(kind), err.Error())
	case kind == domainerrors.KindResourceExhausted:
		writeGovernanceError(w, http.StatusUnprocessableEntity, "resource_exhausted", string(kind), err.Error())
	case kind == domainerrors.KindPaused:
		writeGovernanceError(w, http.StatusLocked, "treasury_paused", string(kind), err.Error())
	case kind == domainerrors.KindLedgerInconsistency:
		writeGovernanceError(w, http.StatusInternalServerError, "ledger_inconsistency", string(kind), "ledger inconsistency detected; manual audit required")
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", string(domainerrors.KindInternal), "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, kind string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	actor := actorFrom(r)
	if actor == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{
			Code:    "actor_required",
			Message: "X-User-Id header is required",
		})
		return "", false
	}
	return actor, true
}

func proposalIDFrom(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	proposalID, err := strconv.ParseUint(strings.TrimSpace(r.PathValue("proposal_id")), 10, 64)
	if err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_proposal_id", string(domainerrors.KindValidation), "proposal id must be an unsigned integer")
		return 0, false
	}
	return proposalID, true
}

func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
