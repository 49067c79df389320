package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ledgerID = "governance"

	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
	outboxStatusFailed    = "failed"
)

var (
	ErrOutboxNotFound      = errors.New("outbox row not found")
	ErrOutboxConflict      = errors.New("outbox row conflicts with existing payload")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
)

// Repository persists the governance aggregate as one snapshot row guarded by
// a row lock, next to the outbox, payout and idempotency tables.
type Repository struct {
	db      *gorm.DB
	genesis services.GovernanceConfig
	logger  *slog.Logger
}

func NewRepository(db *gorm.DB, genesis services.GovernanceConfig, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, genesis: genesis, logger: logger}
}

// Migrate creates or extends the governance tables.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(
		&ledgerModel{},
		&outboxModel{},
		&payoutModel{},
		&idempotencyModel{},
	); err != nil {
		return r.logError("governance_repo_migrate_failed", err)
	}
	return nil
}

// Update loads the aggregate under a row lock and saves it in the same
// transaction. The transaction travels in the ctx given to fn so payouts
// written through Transfer commit or roll back with the snapshot.
func (r *Repository) Update(ctx context.Context, fn func(context.Context, *services.Governance) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		governance, exists, err := r.load(tx.Clauses(clause.Locking{Strength: "UPDATE"}))
		if err != nil {
			return err
		}
		if err := fn(withTx(ctx, tx), governance); err != nil {
			return err
		}

		payload, err := json.Marshal(governance.Snapshot())
		if err != nil {
			return r.logError("governance_repo_snapshot_marshal_failed", err)
		}
		row := ledgerModel{
			LedgerID:  ledgerID,
			Sequence:  governance.Sequence(),
			Snapshot:  payload,
			UpdatedAt: time.Now().UTC(),
		}
		if !exists {
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return r.logError("governance_repo_ledger_concurrent_init", err)
				}
				return r.logError("governance_repo_ledger_insert_failed", err)
			}
			return nil
		}
		if err := tx.Model(&ledgerModel{}).
			Where("ledger_id = ?", ledgerID).
			Updates(map[string]any{
				"sequence":   row.Sequence,
				"snapshot":   row.Snapshot,
				"updated_at": row.UpdatedAt,
			}).Error; err != nil {
			return r.logError("governance_repo_ledger_update_failed", err,
				"sequence", row.Sequence,
			)
		}
		return nil
	})
}

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the ledger transaction carried by ctx, or the pool when the
// call happens outside Update.
func (r *Repository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *Repository) View(ctx context.Context, fn func(*services.Governance) error) error {
	governance, _, err := r.load(r.db.WithContext(ctx))
	if err != nil {
		return err
	}
	return fn(governance)
}

func (r *Repository) load(tx *gorm.DB) (*services.Governance, bool, error) {
	var row ledgerModel
	err := tx.Where("ledger_id = ?", ledgerID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.NewGovernance(r.genesis), false, nil
		}
		return nil, false, r.logError("governance_repo_ledger_load_failed", err)
	}

	var snapshot services.GovernanceSnapshot
	if err := json.Unmarshal(row.Snapshot, &snapshot); err != nil {
		return nil, false, r.logError("governance_repo_snapshot_decode_failed", err,
			"sequence", row.Sequence,
		)
	}
	governance, err := services.RestoreGovernance(snapshot)
	if err != nil {
		return nil, false, r.logError("governance_repo_snapshot_restore_failed",
			fmt.Errorf("restore governance snapshot: %w", err),
			"sequence", row.Sequence,
		)
	}
	return governance, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/treasury-governor",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

type ledgerModel struct {
	LedgerID  string    `gorm:"column:ledger_id;primaryKey"`
	Sequence  uint64    `gorm:"column:sequence"`
	Snapshot  []byte    `gorm:"column:snapshot;type:jsonb"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (ledgerModel) TableName() string {
	return "governance_ledger"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	Sequence     uint64     `gorm:"column:sequence;index"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
	FailedAt     *time.Time `gorm:"column:failed_at"`
	LastError    string     `gorm:"column:last_error"`
}

func (outboxModel) TableName() string {
	return "governance_outbox"
}

type payoutModel struct {
	TransferID  string    `gorm:"column:transfer_id;primaryKey"`
	Source      string    `gorm:"column:source"`
	Recipient   string    `gorm:"column:recipient;index"`
	Amount      uint64    `gorm:"column:amount"`
	ProposalID  *uint64   `gorm:"column:proposal_id"`
	RequestedAt time.Time `gorm:"column:requested_at"`
}

func (payoutModel) TableName() string {
	return "governance_payouts"
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Response    []byte    `gorm:"column:response"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "governance_idempotency"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.LedgerStore = (*Repository)(nil)
var _ ports.EventSink = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.ValueTransfer = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
