package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "commonwealth/contexts/identity-access/authorization-service/application"
	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/domain/services"
	"commonwealth/contexts/identity-access/authorization-service/ports"
)

type GrantRoleCommand struct {
	IdempotencyKey string
	UserID         string
	RoleID         string
	AdminID        string
	Reason         string
	ExpiresAt      *time.Time
}

type RevokeRoleCommand struct {
	IdempotencyKey string
	UserID         string
	RoleID         string
	AdminID        string
	Reason         string
}

// RoleResult is the stored and replayed outcome of a grant or revoke.
type RoleResult struct {
	Assignment entities.RoleAssignment `json:"assignment"`
	Replayed   bool                    `json:"replayed"`
}

// RoleUseCase grants and revokes governance roles. Both commands require an
// idempotency key and the matching authz permission on the admin.
type RoleUseCase struct {
	Repository      ports.Repository
	Idempotency     ports.IdempotencyStore
	PermissionCache ports.PermissionCache
	Clock           ports.Clock
	IDGenerator     ports.IDGenerator
	IdempotencyTTL  time.Duration
	Logger          *slog.Logger
}

func (u RoleUseCase) Grant(ctx context.Context, cmd GrantRoleCommand) (RoleResult, error) {
	now := u.now()
	if cmd.ExpiresAt != nil && !cmd.ExpiresAt.After(now) {
		return RoleResult{}, domainerrors.ErrInvalidExpiry
	}
	request := roleRequest{
		operation:      "grant_role",
		permission:     entities.PermissionGrantRole,
		idempotencyKey: cmd.IdempotencyKey,
		userID:         cmd.UserID,
		roleID:         cmd.RoleID,
		adminID:        cmd.AdminID,
		hashed: struct {
			UserID    string     `json:"user_id"`
			RoleID    string     `json:"role_id"`
			AdminID   string     `json:"admin_id"`
			Reason    string     `json:"reason"`
			ExpiresAt *time.Time `json:"expires_at,omitempty"`
		}{cmd.UserID, cmd.RoleID, cmd.AdminID, cmd.Reason, cmd.ExpiresAt},
	}
	return u.run(ctx, request, now, func() (entities.RoleAssignment, error) {
		assignmentID, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.RoleAssignment{}, err
		}
		return u.Repository.GrantRole(ctx, ports.GrantRoleInput{
			AssignmentID: assignmentID,
			UserID:       strings.TrimSpace(cmd.UserID),
			RoleID:       strings.TrimSpace(cmd.RoleID),
			AdminID:      strings.TrimSpace(cmd.AdminID),
			Reason:       cmd.Reason,
			AssignedAt:   now,
			ExpiresAt:    cmd.ExpiresAt,
		})
	})
}

func (u RoleUseCase) Revoke(ctx context.Context, cmd RevokeRoleCommand) (RoleResult, error) {
	now := u.now()
	request := roleRequest{
		operation:      "revoke_role",
		permission:     entities.PermissionRevokeRole,
		idempotencyKey: cmd.IdempotencyKey,
		userID:         cmd.UserID,
		roleID:         cmd.RoleID,
		adminID:        cmd.AdminID,
		hashed: struct {
			UserID  string `json:"user_id"`
			RoleID  string `json:"role_id"`
			AdminID string `json:"admin_id"`
			Reason  string `json:"reason"`
		}{cmd.UserID, cmd.RoleID, cmd.AdminID, cmd.Reason},
	}
	return u.run(ctx, request, now, func() (entities.RoleAssignment, error) {
		return u.Repository.RevokeRole(ctx, ports.RevokeRoleInput{
			UserID:    strings.TrimSpace(cmd.UserID),
			RoleID:    strings.TrimSpace(cmd.RoleID),
			AdminID:   strings.TrimSpace(cmd.AdminID),
			Reason:    cmd.Reason,
			RevokedAt: now,
		})
	})
}

// Bootstrap grants the admin role without a permission check. It is a no-op
// when userID already holds an active admin assignment.
func (u RoleUseCase) Bootstrap(ctx context.Context, userID string) error {
	logger := application.ResolveLogger(u.Logger)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domainerrors.ErrInvalidUserID
	}
	assignmentID, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return err
	}
	_, err = u.Repository.GrantRole(ctx, ports.GrantRoleInput{
		AssignmentID: assignmentID,
		UserID:       userID,
		RoleID:       entities.RoleAdmin,
		AdminID:      "bootstrap",
		Reason:       "bootstrap admin",
		AssignedAt:   u.now(),
	})
	if err != nil && !errors.Is(err, domainerrors.ErrRoleAlreadyAssigned) {
		logger.Error("bootstrap admin grant failed",
			"event", "authz_bootstrap_admin_failed",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
		return err
	}
	u.invalidate(ctx, logger, userID)
	logger.Info("bootstrap admin ensured",
		"event", "authz_bootstrap_admin_ensured",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
	)
	return nil
}

type roleRequest struct {
	operation      string
	permission     string
	idempotencyKey string
	userID         string
	roleID         string
	adminID        string
	hashed         any
}

func (r roleRequest) validate() error {
	switch {
	case strings.TrimSpace(r.idempotencyKey) == "":
		return domainerrors.ErrIdempotencyKeyRequired
	case strings.TrimSpace(r.userID) == "":
		return domainerrors.ErrInvalidUserID
	case strings.TrimSpace(r.roleID) == "":
		return domainerrors.ErrInvalidRoleID
	case strings.TrimSpace(r.adminID) == "":
		return domainerrors.ErrInvalidAdminID
	}
	return nil
}

func (u RoleUseCase) run(
	ctx context.Context,
	request roleRequest,
	now time.Time,
	mutate func() (entities.RoleAssignment, error),
) (RoleResult, error) {
	logger := application.ResolveLogger(u.Logger)
	attrs := []any{
		"module", application.ModuleName,
		"layer", "application",
		"operation", request.operation,
		"user_id", request.userID,
		"admin_id", request.adminID,
		"role_id", request.roleID,
	}
	fail := func(event string, err error) (RoleResult, error) {
		fields := append([]any{"event", event}, attrs...)
		fields = append(fields, "error", err.Error())
		logger.Log(ctx, application.FailureLevel(err), "role mutation failed", fields...)
		return RoleResult{}, err
	}

	if err := request.validate(); err != nil {
		return fail("authz_role_invalid", err)
	}
	requestHash, err := hashRequest(request.hashed)
	if err != nil {
		return fail("authz_role_hash_failed", err)
	}
	key := "authz_idempotency:" + request.operation + ":" + strings.TrimSpace(request.idempotencyKey)

	if result, found, err := replay(ctx, u.Idempotency, key, requestHash, now); err != nil {
		return fail("authz_role_replay_failed", err)
	} else if found {
		logger.Info("role mutation replayed", append([]any{"event", "authz_role_replayed"}, attrs...)...)
		return result, nil
	}

	if err := u.authorize(ctx, request.adminID, request.permission, now); err != nil {
		return fail("authz_role_forbidden", err)
	}

	assignment, err := mutate()
	if err != nil {
		return fail("authz_role_write_failed", err)
	}
	u.invalidate(ctx, logger, assignment.UserID)

	result := RoleResult{Assignment: assignment}
	payload, err := json.Marshal(result)
	if err != nil {
		return fail("authz_role_encode_failed", err)
	}
	if err := u.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             key,
		Operation:       request.operation,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(u.idempotencyTTL()),
	}); err != nil {
		return fail("authz_role_idempotency_put_failed", err)
	}

	logger.Info("role mutation completed",
		append([]any{"event", "authz_role_completed", "assignment_id", assignment.AssignmentID}, attrs...)...,
	)
	return result, nil
}

// authorize reads the admin's permissions from the repository, never from the
// cache, so a stale entry cannot widen what the admin may change.
func (u RoleUseCase) authorize(ctx context.Context, adminID string, permission string, now time.Time) error {
	granted, err := u.Repository.ListEffectivePermissions(ctx, adminID, now)
	if err != nil {
		return err
	}
	if !services.GrantsPermission(granted, permission) {
		return domainerrors.ErrForbidden
	}
	return nil
}

func (u RoleUseCase) invalidate(ctx context.Context, logger *slog.Logger, userID string) {
	if u.PermissionCache == nil {
		return
	}
	if err := u.PermissionCache.Invalidate(ctx, userID); err != nil {
		logger.Warn("permission cache invalidate failed",
			"event", "authz_cache_invalidation_failed",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"error", err.Error(),
		)
	}
}

func (u RoleUseCase) idempotencyTTL() time.Duration {
	if u.IdempotencyTTL <= 0 {
		return defaultIdempotencyTTL
	}
	return u.IdempotencyTTL
}

func (u RoleUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
