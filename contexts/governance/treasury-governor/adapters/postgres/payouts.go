package postgresadapter

import (
	"context"
	"strings"

	"commonwealth/contexts/governance/treasury-governor/ports"

	"gorm.io/gorm/clause"
)

// Transfer records an outgoing payout in governance_payouts, where a settlement
// process picks it up. Inside Update the row is written on the ledger
// transaction, so a rolled back update leaves no payout behind. A repeated
// transfer id is accepted once.
func (r *Repository) Transfer(ctx context.Context, instruction ports.TransferInstruction) error {
	row := payoutModel{
		TransferID:  strings.TrimSpace(instruction.TransferID),
		Source:      string(instruction.Source),
		Recipient:   strings.TrimSpace(instruction.Recipient),
		Amount:      instruction.Amount,
		ProposalID:  instruction.ProposalID,
		RequestedAt: instruction.RequestedAt.UTC(),
	}
	create := r.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transfer_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_payout_insert_failed", create.Error,
			"transfer_id", row.TransferID,
			"recipient", row.Recipient,
			"amount", row.Amount,
		)
	}
	if create.RowsAffected == 0 {
		r.logger.Warn("payout already recorded",
			"event", "governance_repo_payout_duplicate",
			"module", "governance/treasury-governor",
			"layer", "adapter",
			"transfer_id", row.TransferID,
		)
	}
	return nil
}
