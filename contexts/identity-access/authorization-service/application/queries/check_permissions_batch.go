package queries

import (
	"context"
	"strings"

	application "commonwealth/contexts/identity-access/authorization-service/application"
	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/domain/services"
)

// MaxBatchPermissions bounds one batch request.
const MaxBatchPermissions = 64

type CheckPermissionsBatchQuery struct {
	UserID      string
	Permissions []string
}

type CheckPermissionsBatchUseCase struct {
	CheckPermission CheckPermissionUseCase
}

// Execute resolves the user's permission set once and returns one decision
// per requested permission, in request order.
func (u CheckPermissionsBatchUseCase) Execute(
	ctx context.Context,
	query CheckPermissionsBatchQuery,
) ([]entities.PermissionDecision, error) {
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidUserID
	}
	if len(query.Permissions) == 0 || len(query.Permissions) > MaxBatchPermissions {
		return nil, domainerrors.ErrInvalidBatchSize
	}
	requested := make([]string, len(query.Permissions))
	for i, permission := range query.Permissions {
		requested[i] = strings.TrimSpace(permission)
		if requested[i] == "" {
			return nil, domainerrors.ErrInvalidPermission
		}
	}

	check := u.CheckPermission
	logger := application.ResolveLogger(check.Logger)
	now := check.now()
	granted, cacheHit, lookupErr := check.loadPermissions(ctx, logger, userID, now)
	if lookupErr != nil {
		logger.Error("batch permission lookup failed, deny by default",
			"event", "authz_batch_lookup_failed",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"permission_count", len(requested),
			"error", lookupErr.Error(),
		)
	}

	decisions := make([]entities.PermissionDecision, 0, len(requested))
	for _, permission := range requested {
		decision := entities.PermissionDecision{
			UserID:     userID,
			Permission: permission,
			CheckedAt:  now,
			CacheHit:   cacheHit,
		}
		switch {
		case lookupErr != nil:
			decision.Reason = entities.ReasonDenyByDefault
		case services.GrantsPermission(granted, permission):
			decision.Allowed = true
			decision.Reason = entities.ReasonGranted
		default:
			decision.Reason = entities.ReasonMissing
		}
		decisions = append(decisions, decision)
	}
	return decisions, nil
}
