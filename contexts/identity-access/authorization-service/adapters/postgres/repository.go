package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/domain/services"
	"commonwealth/contexts/identity-access/authorization-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores role assignments and idempotency records in Postgres.
// The role catalog itself is static.
type Repository struct {
	db     *gorm.DB
	roles  map[string]entities.Role
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, roles: entities.GovernanceRoles(), logger: logger}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&assignmentModel{}, &idempotencyModel{}); err != nil {
		return r.logError("authz_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) ListEffectivePermissions(ctx context.Context, userID string, now time.Time) ([]string, error) {
	rows, err := r.activeRows(r.db.WithContext(ctx), strings.TrimSpace(userID), now)
	if err != nil {
		return nil, r.logError("authz_repo_list_permissions_failed", err, "user_id", userID)
	}
	return services.EffectivePermissions(r.roles, toAssignments(rows), now), nil
}

func (r *Repository) ListUserRoles(ctx context.Context, userID string, now time.Time) ([]entities.RoleAssignment, error) {
	var rows []assignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("is_active = ? OR expires_at IS NULL OR expires_at > ?", false, now.UTC()).
		Order("assigned_at DESC").
		Order("assignment_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("authz_repo_list_roles_failed", err, "user_id", userID)
	}
	items := toAssignments(rows)
	for i := range items {
		items[i] = r.withRoleName(items[i])
	}
	return items, nil
}

func (r *Repository) GrantRole(ctx context.Context, input ports.GrantRoleInput) (entities.RoleAssignment, error) {
	role, ok := r.roles[input.RoleID]
	if !ok {
		return entities.RoleAssignment{}, domainerrors.ErrRoleNotFound
	}
	row := assignmentModel{
		AssignmentID: strings.TrimSpace(input.AssignmentID),
		UserID:       input.UserID,
		RoleID:       input.RoleID,
		AssignedBy:   input.AdminID,
		Reason:       input.Reason,
		AssignedAt:   input.AssignedAt.UTC(),
		ExpiresAt:    normalizeOptionalTime(input.ExpiresAt),
		IsActive:     true,
	}
	if row.AssignmentID == "" {
		row.AssignmentID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := r.activeRows(
			tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("role_id = ?", input.RoleID),
			input.UserID,
			input.AssignedAt,
		)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return domainerrors.ErrRoleAlreadyAssigned
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrRoleAlreadyAssigned
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRoleAlreadyAssigned) {
			return entities.RoleAssignment{}, err
		}
		return entities.RoleAssignment{}, r.logError("authz_repo_grant_role_failed", err,
			"user_id", input.UserID,
			"role_id", input.RoleID,
		)
	}
	assignment := row.toEntity()
	assignment.RoleName = role.RoleName
	return assignment, nil
}

func (r *Repository) RevokeRole(ctx context.Context, input ports.RevokeRoleInput) (entities.RoleAssignment, error) {
	var revoked assignmentModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active, err := r.activeRows(
			tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("role_id = ?", input.RoleID),
			input.UserID,
			input.RevokedAt,
		)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return domainerrors.ErrRoleNotAssigned
		}
		revoked = active[0]
		revokedAt := input.RevokedAt.UTC()
		revoked.IsActive = false
		revoked.RevokedAt = &revokedAt
		revoked.RevokedBy = input.AdminID
		return tx.Model(&assignmentModel{}).
			Where("assignment_id = ?", revoked.AssignmentID).
			Updates(map[string]any{
				"is_active":  false,
				"revoked_at": revokedAt,
				"revoked_by": input.AdminID,
			}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrRoleNotAssigned) {
			return entities.RoleAssignment{}, err
		}
		return entities.RoleAssignment{}, r.logError("authz_repo_revoke_role_failed", err,
			"user_id", input.UserID,
			"role_id", input.RoleID,
		)
	}
	return r.withRoleName(revoked.toEntity()), nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, r.logError("authz_repo_idempotency_get_failed", err,
			"idempotency_key", key,
		)
	}
	if !row.ExpiresAt.After(now.UTC()) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:             row.Key,
		Operation:       row.Operation,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             record.Key,
		Operation:       record.Operation,
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("authz_repo_idempotency_put_failed", create.Error, "idempotency_key", row.Key)
	}
	if create.RowsAffected > 0 {
		return nil
	}
	var existing idempotencyModel
	if err := r.db.WithContext(ctx).Where("key = ?", row.Key).First(&existing).Error; err != nil {
		return r.logError("authz_repo_idempotency_load_existing_failed", err, "idempotency_key", row.Key)
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func (r *Repository) activeRows(tx *gorm.DB, userID string, now time.Time) ([]assignmentModel, error) {
	var rows []assignmentModel
	err := tx.
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at > ?", now.UTC()).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) withRoleName(assignment entities.RoleAssignment) entities.RoleAssignment {
	if role, ok := r.roles[assignment.RoleID]; ok {
		assignment.RoleName = role.RoleName
	}
	return assignment
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/authorization-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("authorization repository operation failed", fields...)
	return err
}

type assignmentModel struct {
	AssignmentID string     `gorm:"column:assignment_id;primaryKey"`
	UserID       string     `gorm:"column:user_id;index"`
	RoleID       string     `gorm:"column:role_id"`
	AssignedBy   string     `gorm:"column:assigned_by"`
	Reason       string     `gorm:"column:reason"`
	AssignedAt   time.Time  `gorm:"column:assigned_at"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	IsActive     bool       `gorm:"column:is_active"`
	RevokedBy    string     `gorm:"column:revoked_by"`
	RevokedAt    *time.Time `gorm:"column:revoked_at"`
}

func (assignmentModel) TableName() string {
	return "authz_role_assignments"
}

func (m assignmentModel) toEntity() entities.RoleAssignment {
	return entities.RoleAssignment{
		AssignmentID: m.AssignmentID,
		UserID:       m.UserID,
		RoleID:       m.RoleID,
		AssignedBy:   m.AssignedBy,
		Reason:       m.Reason,
		AssignedAt:   m.AssignedAt.UTC(),
		ExpiresAt:    normalizeOptionalTime(m.ExpiresAt),
		IsActive:     m.IsActive,
		RevokedBy:    m.RevokedBy,
		RevokedAt:    normalizeOptionalTime(m.RevokedAt),
	}
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	Operation       string    `gorm:"column:operation"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "authz_idempotency"
}

func toAssignments(rows []assignmentModel) []entities.RoleAssignment {
	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.IdempotencyStore = (*Repository)(nil)
