package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "commonwealth/contexts/identity-access/authorization-service/application"
	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/domain/services"
	"commonwealth/contexts/identity-access/authorization-service/ports"
)

type CheckPermissionQuery struct {
	UserID     string
	Permission string
}

// CheckPermissionUseCase evaluates permissions cache-first and denies by
// default when neither the cache nor the repository can answer.
type CheckPermissionUseCase struct {
	Repository         ports.Repository
	PermissionCache    ports.PermissionCache
	Clock              ports.Clock
	PermissionCacheTTL time.Duration
	Logger             *slog.Logger
}

func (u CheckPermissionUseCase) Execute(ctx context.Context, query CheckPermissionQuery) (entities.PermissionDecision, error) {
	userID := strings.TrimSpace(query.UserID)
	permission := strings.TrimSpace(query.Permission)
	if userID == "" {
		return entities.PermissionDecision{}, domainerrors.ErrInvalidUserID
	}
	if permission == "" {
		return entities.PermissionDecision{}, domainerrors.ErrInvalidPermission
	}

	logger := application.ResolveLogger(u.Logger)
	now := u.now()
	decision := entities.PermissionDecision{
		UserID:     userID,
		Permission: permission,
		CheckedAt:  now,
	}

	permissions, cacheHit, err := u.loadPermissions(ctx, logger, userID, now)
	if err != nil {
		logger.Error("permission lookup failed, deny by default",
			"event", "authz_permission_lookup_failed",
			"module", application.ModuleName,
			"layer", "application",
			"user_id", userID,
			"permission", permission,
			"error", err.Error(),
		)
		decision.Reason = entities.ReasonDenyByDefault
		return decision, nil
	}

	decision.CacheHit = cacheHit
	decision.Allowed = services.GrantsPermission(permissions, permission)
	decision.Reason = entities.ReasonGranted
	if !decision.Allowed {
		decision.Reason = entities.ReasonMissing
	}
	logger.Debug("check permission evaluated",
		"event", "authz_check_evaluated",
		"module", application.ModuleName,
		"layer", "application",
		"user_id", userID,
		"permission", permission,
		"allowed", decision.Allowed,
		"cache_hit", cacheHit,
	)
	return decision, nil
}

func (u CheckPermissionUseCase) loadPermissions(
	ctx context.Context,
	logger *slog.Logger,
	userID string,
	now time.Time,
) ([]string, bool, error) {
	if u.PermissionCache != nil {
		items, hit, err := u.PermissionCache.Get(ctx, userID, now)
		if err == nil && hit {
			return items, true, nil
		}
		if err != nil {
			logger.Warn("permission cache read failed, falling back to repository",
				"event", "authz_cache_read_failed",
				"module", application.ModuleName,
				"layer", "application",
				"user_id", userID,
				"error", err.Error(),
			)
		}
	}

	permissions, err := u.Repository.ListEffectivePermissions(ctx, userID, now)
	if err != nil {
		return nil, false, err
	}
	if u.PermissionCache != nil {
		if err := u.PermissionCache.Set(ctx, userID, permissions, now.Add(u.cacheTTL())); err != nil {
			logger.Warn("permission cache write failed",
				"event", "authz_cache_write_failed",
				"module", application.ModuleName,
				"layer", "application",
				"user_id", userID,
				"error", err.Error(),
			)
		}
	}
	return permissions, false, nil
}

func (u CheckPermissionUseCase) cacheTTL() time.Duration {
	if u.PermissionCacheTTL <= 0 {
		return 5 * time.Minute
	}
	return u.PermissionCacheTTL
}

func (u CheckPermissionUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
