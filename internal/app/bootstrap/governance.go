package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
	"commonwealth/contexts/identity-access/authorization-service/application/queries"
	"commonwealth/internal/platform/config"
)

// permissionOracle answers governance capability checks from the
// authorization service. Capability names double as permission names.
type permissionOracle struct {
	check queries.CheckPermissionUseCase
}

var _ ports.PermissionOracle = permissionOracle{}

func (o permissionOracle) HasCapability(ctx context.Context, capability entities.Capability, account string) (bool, error) {
	decision, err := o.check.Execute(ctx, queries.CheckPermissionQuery{
		UserID:     account,
		Permission: string(capability),
	})
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// governanceConfig converts file/env configuration into the genesis
// parameters of the ledger. Proposal overrides are applied field by field on
// top of the built-in defaults.
func governanceConfig(cfg config.Governance) (services.GovernanceConfig, error) {
	out := services.DefaultGovernanceConfig()
	if cfg.MinProposalStake > 0 {
		out.MinProposalStake = cfg.MinProposalStake
	}

	for name, limit := range cfg.CategoryLimits {
		category := entities.Category(strings.TrimSpace(name))
		if !category.Valid() {
			return services.GovernanceConfig{}, fmt.Errorf("governance config: unknown category %q", name)
		}
		if limit == 0 {
			return services.GovernanceConfig{}, fmt.Errorf("governance config: category %q limit must be positive", name)
		}
		out.CategoryLimits[category] = limit
	}

	for name, override := range cfg.Proposals {
		proposalType := entities.ProposalType(strings.TrimSpace(name))
		if !proposalType.Valid() {
			return services.GovernanceConfig{}, fmt.Errorf("governance config: unknown proposal type %q", name)
		}
		params := out.Params[proposalType]
		if override.QuorumBps > 0 {
			params.QuorumBps = override.QuorumBps
		}
		if override.ApprovalBps > 0 {
			params.ApprovalBps = override.ApprovalBps
		}
		if override.Timelock > 0 {
			params.Timelock = override.Timelock
		}
		if override.VotingWindow > 0 {
			params.VotingWindow = override.VotingWindow
		}
		if err := services.ValidateParams(params); err != nil {
			return services.GovernanceConfig{}, fmt.Errorf("governance config: %s params: %w", name, err)
		}
		out.Params[proposalType] = params
	}
	return out, nil
}
