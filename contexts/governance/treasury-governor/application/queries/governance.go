package queries

import (
	"context"
	"strings"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

// ProposalView is a proposal together with the state observed at Height.
type ProposalView struct {
	Proposal entities.Proposal
	State    entities.ProposalState
	Height   uint64
}

type VotingPowerSummary struct {
	TotalStake       uint64
	TotalVotingPower uint64
	MinProposalStake uint64
}

// GovernanceQueries serves reads under the shared ledger lock. None of them
// require a capability.
type GovernanceQueries struct {
	Store   ports.LedgerStore
	Heights ports.HeightSource
}

func (uc GovernanceQueries) Member(ctx context.Context, account string) (entities.Member, error) {
	var member entities.Member
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		member = g.Power.Member(strings.TrimSpace(account))
		return nil
	})
	return member, err
}

func (uc GovernanceQueries) VotingPower(ctx context.Context) (VotingPowerSummary, error) {
	var summary VotingPowerSummary
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		summary = VotingPowerSummary{
			TotalStake:       g.Power.TotalStake(),
			TotalVotingPower: g.Power.TotalVotingPower(),
			MinProposalStake: g.Power.MinProposalStake(),
		}
		return nil
	})
	return summary, err
}

func (uc GovernanceQueries) Treasury(ctx context.Context) (entities.TreasurySnapshot, error) {
	var snapshot entities.TreasurySnapshot
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		snapshot = g.Treasury.Snapshot()
		return nil
	})
	return snapshot, err
}

func (uc GovernanceQueries) CategoryBalance(ctx context.Context, category entities.Category) (entities.CategoryBalance, error) {
	var balance entities.CategoryBalance
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		amount, err := g.Treasury.Balance(category)
		if err != nil {
			return err
		}
		limit, err := g.Treasury.Limit(category)
		if err != nil {
			return err
		}
		balance = entities.CategoryBalance{Category: category, Balance: amount, Limit: limit}
		return nil
	})
	return balance, err
}

func (uc GovernanceQueries) Proposal(ctx context.Context, proposalID uint64) (ProposalView, error) {
	height := uc.height()
	var view ProposalView
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		proposal, err := g.Proposals.Proposal(proposalID)
		if err != nil {
			return err
		}
		view = ProposalView{Proposal: proposal, State: proposal.EffectiveState(height), Height: height}
		return nil
	})
	return view, err
}

func (uc GovernanceQueries) ListProposals(ctx context.Context, offset, limit int) ([]ProposalView, uint64, error) {
	height := uc.height()
	var views []ProposalView
	var total uint64
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		total = g.Proposals.Count()
		for _, proposal := range g.Proposals.List(offset, limit) {
			views = append(views, ProposalView{
				Proposal: proposal,
				State:    proposal.EffectiveState(height),
				Height:   height,
			})
		}
		return nil
	})
	if views == nil {
		views = []ProposalView{}
	}
	return views, total, err
}

func (uc GovernanceQueries) Receipt(ctx context.Context, proposalID uint64, voter string) (entities.VoteReceipt, error) {
	var receipt entities.VoteReceipt
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		var err error
		receipt, err = g.Proposals.Receipt(proposalID, strings.TrimSpace(voter))
		return err
	})
	return receipt, err
}

func (uc GovernanceQueries) Params(ctx context.Context, proposalType entities.ProposalType) (entities.GovernanceParams, error) {
	var params entities.GovernanceParams
	err := uc.Store.View(ctx, func(g *services.Governance) error {
		var err error
		params, err = g.Proposals.Params(proposalType)
		return err
	})
	return params, err
}

func (uc GovernanceQueries) height() uint64 {
	if uc.Heights == nil {
		return 0
	}
	return uc.Heights.Height()
}
