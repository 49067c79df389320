package services

import "commonwealth/contexts/governance/treasury-governor/domain/entities"

type GovernanceConfig struct {
	MinProposalStake uint64
	CategoryLimits   map[entities.Category]uint64
	Params           map[entities.ProposalType]entities.GovernanceParams
}

func DefaultGovernanceConfig() GovernanceConfig {
	return GovernanceConfig{
		MinProposalStake: DefaultMinProposalStake,
		CategoryLimits:   DefaultCategoryLimits(),
		Params:           DefaultParams(),
	}
}

// Governance owns the three engines that must change together under one
// writer. The proposal engine only borrows the other two.
type Governance struct {
	Power     *VotingPowerEngine
	Treasury  *TreasuryLedger
	Proposals *ProposalEngine
	sequence  uint64
}

func NewGovernance(cfg GovernanceConfig) *Governance {
	minStake := cfg.MinProposalStake
	if minStake == 0 {
		minStake = DefaultMinProposalStake
	}
	power := NewVotingPowerEngine(minStake)
	treasury := NewTreasuryLedger(cfg.CategoryLimits)
	return &Governance{
		Power:     power,
		Treasury:  treasury,
		Proposals: NewProposalEngine(power, treasury, cfg.Params),
	}
}

// NextSequence reserves the next event sequence number.
func (g *Governance) NextSequence() uint64 {
	g.sequence++
	return g.sequence
}

func (g *Governance) Sequence() uint64 {
	return g.sequence
}

// Clone returns a working copy for one mutation. Stake and treasury state is
// copied; proposal receipts are copied lazily, so the cost does not grow with
// the number of votes already cast. The original must not be mutated while
// the clone is in use.
func (g *Governance) Clone() *Governance {
	power := g.Power.clone()
	treasury := g.Treasury.clone()
	return &Governance{
		Power:     power,
		Treasury:  treasury,
		Proposals: g.Proposals.clone(power, treasury),
		sequence:  g.sequence,
	}
}

type GovernanceSnapshot struct {
	Sequence         uint64
	MinProposalStake uint64
	Stakes           []StakeEntry
	Treasury         entities.TreasurySnapshot
	Proposals        []ProposalRecord
	Params           map[entities.ProposalType]entities.GovernanceParams
}

func (g *Governance) Snapshot() GovernanceSnapshot {
	params := make(map[entities.ProposalType]entities.GovernanceParams, len(entities.ProposalTypes))
	for _, proposalType := range entities.ProposalTypes {
		params[proposalType], _ = g.Proposals.Params(proposalType)
	}
	return GovernanceSnapshot{
		Sequence:         g.sequence,
		MinProposalStake: g.Power.MinProposalStake(),
		Stakes:           g.Power.Entries(),
		Treasury:         g.Treasury.Snapshot(),
		Proposals:        g.Proposals.Records(),
		Params:           params,
	}
}

// RestoreGovernance rebuilds the aggregate from a snapshot.
func RestoreGovernance(snapshot GovernanceSnapshot) (*Governance, error) {
	g := NewGovernance(GovernanceConfig{MinProposalStake: snapshot.MinProposalStake})
	if err := g.Power.Restore(snapshot.Stakes); err != nil {
		return nil, err
	}
	if err := g.Treasury.Restore(snapshot.Treasury); err != nil {
		return nil, err
	}
	if err := g.Proposals.Restore(snapshot.Proposals, snapshot.Params); err != nil {
		return nil, err
	}
	g.sequence = snapshot.Sequence
	return g, nil
}
