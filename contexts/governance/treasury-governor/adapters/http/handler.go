package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"commonwealth/contexts/governance/treasury-governor/application/commands"
	"commonwealth/contexts/governance/treasury-governor/application/queries"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	domainerrors "commonwealth/contexts/governance/treasury-governor/domain/errors"
	httptransport "commonwealth/contexts/governance/treasury-governor/transport/http"
)

type Handler struct {
	Staking   commands.StakingUseCase
	Treasury  commands.TreasuryUseCase
	Proposals commands.ProposalUseCase
	Params    commands.ParamsUseCase
	Queries   queries.GovernanceQueries
	Logger    *slog.Logger
}

func (h Handler) DepositHandler(ctx context.Context, account string, idempotencyKey string, req httptransport.StakeRequest) (httptransport.StakeResponse, error) {
	result, err := h.Staking.Deposit(ctx, commands.DepositCommand{
		Account:        account,
		Amount:         req.Amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.StakeResponse{}, err
	}
	return mapStake(result), nil
}

func (h Handler) WithdrawHandler(ctx context.Context, account string, idempotencyKey string, req httptransport.StakeRequest) (httptransport.StakeResponse, error) {
	result, err := h.Staking.Withdraw(ctx, commands.WithdrawCommand{
		Account:        account,
		Amount:         req.Amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.StakeResponse{}, err
	}
	return mapStake(result), nil
}

func (h Handler) DelegateHandler(ctx context.Context, account string, req httptransport.DelegateRequest) (httptransport.MemberResponse, error) {
	member, err := h.Staking.Delegate(ctx, commands.DelegateCommand{From: account, To: req.To})
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return mapMember(member), nil
}

func (h Handler) RevokeDelegationHandler(ctx context.Context, account string) (httptransport.MemberResponse, error) {
	member, err := h.Staking.RevokeDelegation(ctx, account)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return mapMember(member), nil
}

func (h Handler) MemberHandler(ctx context.Context, account string) (httptransport.MemberResponse, error) {
	member, err := h.Queries.Member(ctx, account)
	if err != nil {
		return httptransport.MemberResponse{}, err
	}
	return mapMember(member), nil
}

func (h Handler) VotingPowerHandler(ctx context.Context) (httptransport.VotingPowerResponse, error) {
	summary, err := h.Queries.VotingPower(ctx)
	if err != nil {
		return httptransport.VotingPowerResponse{}, err
	}
	return httptransport.VotingPowerResponse{
		TotalStake:       summary.TotalStake,
		TotalVotingPower: summary.TotalVotingPower,
		MinProposalStake: summary.MinProposalStake,
	}, nil
}

func (h Handler) ReceiveFundsHandler(ctx context.Context, sender string, idempotencyKey string, req httptransport.ReceiveFundsRequest) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Treasury.Receive(ctx, commands.ReceiveCommand{
		Sender:         sender,
		Amount:         req.Amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) AllocateFundsHandler(ctx context.Context, actor string, req httptransport.AllocateFundsRequest) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Treasury.Allocate(ctx, commands.AllocateCommand{
		Actor:    actor,
		Category: entities.Category(req.Category),
		Amount:   req.Amount,
	})
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) TransferFundsHandler(ctx context.Context, actor string, idempotencyKey string, req httptransport.TransferFundsRequest) (httptransport.TransferFundsResponse, error) {
	result, err := h.Treasury.TransferFunds(ctx, commands.TransferFundsCommand{
		Actor:          actor,
		Recipient:      req.Recipient,
		Amount:         req.Amount,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return httptransport.TransferFundsResponse{}, err
	}
	draws := make([]httptransport.DrawResponse, 0, len(result.Draws))
	for _, draw := range result.Draws {
		draws = append(draws, httptransport.DrawResponse{Category: string(draw.Category), Amount: draw.Amount})
	}
	return httptransport.TransferFundsResponse{
		TransferID: result.TransferID,
		Recipient:  result.Recipient,
		Amount:     result.Amount,
		Draws:      draws,
		Treasury:   mapTreasury(result.Treasury),
		Replayed:   result.Replayed,
	}, nil
}

func (h Handler) PauseTreasuryHandler(ctx context.Context, actor string) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Treasury.Pause(ctx, actor)
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) ResumeTreasuryHandler(ctx context.Context, actor string) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Treasury.Resume(ctx, actor)
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) SetCategoryLimitHandler(ctx context.Context, actor string, category string, req httptransport.CategoryLimitRequest) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Treasury.SetCategoryLimit(ctx, commands.SetCategoryLimitCommand{
		Actor:    actor,
		Category: entities.Category(category),
		Limit:    req.Limit,
	})
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) TreasuryHandler(ctx context.Context) (httptransport.TreasuryResponse, error) {
	snapshot, err := h.Queries.Treasury(ctx)
	if err != nil {
		return httptransport.TreasuryResponse{}, err
	}
	return mapTreasury(snapshot), nil
}

func (h Handler) CategoryBalanceHandler(ctx context.Context, category string) (httptransport.CategoryBalanceResponse, error) {
	balance, err := h.Queries.CategoryBalance(ctx, entities.Category(category))
	if err != nil {
		return httptransport.CategoryBalanceResponse{}, err
	}
	return mapCategory(balance), nil
}

func (h Handler) CreateProposalHandler(ctx context.Context, proposer string, req httptransport.CreateProposalRequest) (httptransport.ProposalResponse, error) {
	proposalType := entities.ProposalType(req.ProposalType)
	if proposalType == "" {
		proposalType = entities.ProposalTypeStandard
	}
	proposal, err := h.Proposals.Create(ctx, commands.CreateProposalCommand{
		Proposer:    proposer,
		Recipient:   req.Recipient,
		Amount:      req.Amount,
		Description: req.Description,
		Type:        proposalType,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, proposal.State), nil
}

func (h Handler) CastVoteHandler(ctx context.Context, voter string, proposalID uint64, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	result, err := h.Proposals.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		Voter:      voter,
		Option:     entities.VoteOption(req.Option),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		ProposalID: result.ProposalID,
		Voter:      result.Voter,
		Option:     string(result.Receipt.Option),
		Power:      result.Receipt.Power,
		Tally:      mapTally(result.Tally),
		State:      string(result.State),
	}, nil
}

func (h Handler) QueueProposalHandler(ctx context.Context, actor string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Queue(ctx, commands.ProposalActionCommand{ProposalID: proposalID, Actor: actor})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, proposal.State), nil
}

func (h Handler) ExecuteProposalHandler(ctx context.Context, actor string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Execute(ctx, commands.ProposalActionCommand{ProposalID: proposalID, Actor: actor})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, proposal.State), nil
}

func (h Handler) CancelProposalHandler(ctx context.Context, actor string, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.Cancel(ctx, commands.ProposalActionCommand{ProposalID: proposalID, Actor: actor})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(proposal, entities.ProposalStateCancelled), nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Queries.Proposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return mapProposal(view.Proposal, view.State), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context, offset int, limit int) (httptransport.ListProposalsResponse, error) {
	views, total, err := h.Queries.ListProposals(ctx, offset, limit)
	if err != nil {
		return httptransport.ListProposalsResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapProposal(view.Proposal, view.State))
	}
	return httptransport.ListProposalsResponse{Items: items, Total: total}, nil
}

func (h Handler) ReceiptHandler(ctx context.Context, proposalID uint64, voter string) (httptransport.ReceiptResponse, error) {
	receipt, err := h.Queries.Receipt(ctx, proposalID, voter)
	if err != nil {
		return httptransport.ReceiptResponse{}, err
	}
	return httptransport.ReceiptResponse{
		ProposalID: proposalID,
		Voter:      voter,
		HasVoted:   receipt.HasVoted,
		Option:     string(receipt.Option),
		Power:      receipt.Power,
	}, nil
}

func (h Handler) ParamsHandler(ctx context.Context, proposalType string) (httptransport.ParamsResponse, error) {
	params, err := h.Queries.Params(ctx, entities.ProposalType(proposalType))
	if err != nil {
		return httptransport.ParamsResponse{}, err
	}
	return mapParams(proposalType, params), nil
}

func (h Handler) UpdateParamsHandler(ctx context.Context, actor string, proposalType string, req httptransport.UpdateParamsRequest) (httptransport.ParamsResponse, error) {
	cmd := commands.UpdateParamsCommand{
		Actor:        actor,
		Type:         entities.ProposalType(proposalType),
		QuorumBps:    req.QuorumBps,
		ApprovalBps:  req.ApprovalBps,
		VotingWindow: req.VotingWindow,
	}
	if req.Timelock != nil {
		timelock, err := time.ParseDuration(*req.Timelock)
		if err != nil {
			return httptransport.ParamsResponse{}, domainerrors.ErrInvalidDuration
		}
		cmd.Timelock = &timelock
	}
	params, err := h.Params.Update(ctx, cmd)
	if err != nil {
		return httptransport.ParamsResponse{}, err
	}
	return mapParams(proposalType, params), nil
}

func mapStake(result commands.StakeResult) httptransport.StakeResponse {
	return httptransport.StakeResponse{
		Account:     result.Account,
		Stake:       result.Stake,
		VotingPower: result.VotingPower,
		TotalStake:  result.TotalStake,
		Replayed:    result.Replayed,
	}
}

func mapMember(member entities.Member) httptransport.MemberResponse {
	return httptransport.MemberResponse{
		Account:             member.Account,
		Stake:               member.Stake,
		VotingPower:         member.VotingPower,
		Delegate:            member.Delegate,
		ReceivedDelegations: member.ReceivedDelegations,
		CanPropose:          member.CanPropose,
	}
}

func mapCategory(balance entities.CategoryBalance) httptransport.CategoryBalanceResponse {
	return httptransport.CategoryBalanceResponse{
		Category: string(balance.Category),
		Balance:  balance.Balance,
		Limit:    balance.Limit,
	}
}

func mapTreasury(snapshot entities.TreasurySnapshot) httptransport.TreasuryResponse {
	categories := make([]httptransport.CategoryBalanceResponse, 0, len(snapshot.Categories))
	for _, category := range snapshot.Categories {
		categories = append(categories, mapCategory(category))
	}
	return httptransport.TreasuryResponse{
		Total:      snapshot.Total,
		Paused:     snapshot.Paused,
		Categories: categories,
	}
}

func mapTally(tally entities.Tally) httptransport.TallyResponse {
	return httptransport.TallyResponse{For: tally.For, Against: tally.Against, Abstain: tally.Abstain}
}

func mapProposal(proposal entities.Proposal, state entities.ProposalState) httptransport.ProposalResponse {
	resp := httptransport.ProposalResponse{
		ProposalID:   proposal.ProposalID,
		Proposer:     proposal.Proposer,
		Recipient:    proposal.Recipient,
		Amount:       proposal.Amount,
		Description:  proposal.Description,
		ProposalType: string(proposal.Type),
		State:        string(state),
		StartHeight:  proposal.StartHeight,
		EndHeight:    proposal.EndHeight,
		Tally:        mapTally(proposal.Tally),
		Cancelled:    proposal.Cancelled,
		CreatedAt:    formatTime(&proposal.CreatedAt),
		QueuedAt:     formatTime(proposal.QueuedAt),
		ExecutedAt:   formatTime(proposal.ExecutedAt),
	}
	return resp
}

func mapParams(proposalType string, params entities.GovernanceParams) httptransport.ParamsResponse {
	return httptransport.ParamsResponse{
		ProposalType: proposalType,
		QuorumBps:    params.QuorumBps,
		ApprovalBps:  params.ApprovalBps,
		Timelock:     params.Timelock.String(),
		VotingWindow: params.VotingWindow,
	}
}

func formatTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
