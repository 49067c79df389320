package authorization_test

import (
	"context"
	"errors"
	"testing"
	"time"

	authorization "commonwealth/contexts/identity-access/authorization-service"
	"commonwealth/contexts/identity-access/authorization-service/application/queries"
	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	httptransport "commonwealth/contexts/identity-access/authorization-service/transport/http"
)

func newAuthzModule(t *testing.T) authorization.Module {
	t.Helper()
	module := authorization.NewInMemoryModule(nil)
	if err := module.Handler.Roles.Bootstrap(context.Background(), "root-admin"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	return module
}

func TestGrantRoleConfersGovernanceCapabilities(t *testing.T) {
	module := newAuthzModule(t)
	ctx := context.Background()

	granted, err := module.Handler.GrantRoleHandler(ctx, "alice", "root-admin", "grant-alice-1", httptransport.GrantRoleRequest{
		RoleID: entities.RoleProposer,
		Reason: "council seat",
	})
	if err != nil {
		t.Fatalf("grant role: %v", err)
	}
	if !granted.Assignment.Active || granted.Assignment.Role.RoleName != "proposer" {
		t.Fatalf("unexpected assignment: %+v", granted.Assignment)
	}

	batch, err := module.Handler.CheckBatchHandler(ctx, "alice", httptransport.CheckBatchRequest{
		Permissions: []string{entities.PermissionPropose, entities.PermissionVote, entities.PermissionExecute},
	})
	if err != nil {
		t.Fatalf("check batch: %v", err)
	}
	want := []bool{true, true, false}
	for i, decision := range batch.Decisions {
		if decision.Allowed != want[i] {
			t.Fatalf("decision %d for %s: expected %v, got %v", i, decision.Permission, want[i], decision.Allowed)
		}
	}
	if batch.Granted != 2 || batch.UserID != "alice" {
		t.Fatalf("unexpected batch summary: granted=%d user=%s", batch.Granted, batch.UserID)
	}
}

func TestPermissionCacheIsInvalidatedOnRevoke(t *testing.T) {
	module := newAuthzModule(t)
	ctx := context.Background()

	if _, err := module.Handler.GrantRoleHandler(ctx, "bob", "root-admin", "grant-bob", httptransport.GrantRoleRequest{
		RoleID: entities.RoleGuardian,
	}); err != nil {
		t.Fatalf("grant role: %v", err)
	}

	check := httptransport.CheckPermissionRequest{Permission: entities.PermissionGuardian}
	first, err := module.Handler.CheckPermissionHandler(ctx, "bob", check)
	if err != nil || !first.Allowed || first.CacheHit {
		t.Fatalf("first check: %+v err=%v", first, err)
	}
	second, err := module.Handler.CheckPermissionHandler(ctx, "bob", check)
	if err != nil || !second.Allowed || !second.CacheHit {
		t.Fatalf("second check should hit cache: %+v err=%v", second, err)
	}

	revoked, err := module.Handler.RevokeRoleHandler(ctx, "bob", "root-admin", "revoke-bob", httptransport.RevokeRoleRequest{
		RoleID: entities.RoleGuardian,
	})
	if err != nil {
		t.Fatalf("revoke role: %v", err)
	}
	if revoked.Assignment.IsActive || revoked.Assignment.RevokedBy != "root-admin" {
		t.Fatalf("unexpected revoked assignment: %+v", revoked.Assignment)
	}

	third, err := module.Handler.CheckPermissionHandler(ctx, "bob", check)
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if third.Allowed || third.CacheHit || third.Reason != entities.ReasonMissing {
		t.Fatalf("expected fresh denial after revoke, got %+v", third)
	}
}

func TestGrantRoleRequiresAdmin(t *testing.T) {
	module := newAuthzModule(t)

	_, err := module.Handler.GrantRoleHandler(context.Background(), "mallory", "mallory", "self-grant", httptransport.GrantRoleRequest{
		RoleID: entities.RoleAdmin,
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGrantRoleReplaysAndDetectsConflicts(t *testing.T) {
	module := newAuthzModule(t)
	ctx := context.Background()
	request := httptransport.GrantRoleRequest{RoleID: entities.RoleExecutor}

	first, err := module.Handler.GrantRoleHandler(ctx, "carol", "root-admin", "grant-carol", request)
	if err != nil {
		t.Fatalf("grant role: %v", err)
	}
	replay, err := module.Handler.GrantRoleHandler(ctx, "carol", "root-admin", "grant-carol", request)
	if err != nil {
		t.Fatalf("replay grant: %v", err)
	}
	if !replay.Replayed || replay.Assignment.AssignmentID != first.Assignment.AssignmentID {
		t.Fatalf("expected replay of %s, got %+v", first.Assignment.AssignmentID, replay)
	}

	_, err = module.Handler.GrantRoleHandler(ctx, "carol", "root-admin", "grant-carol", httptransport.GrantRoleRequest{
		RoleID: entities.RoleGuardian,
	})
	if !errors.Is(err, domainerrors.ErrIdempotencyConflict) {
		t.Fatalf("expected idempotency conflict, got %v", err)
	}

	_, err = module.Handler.GrantRoleHandler(ctx, "carol", "root-admin", "grant-carol-again", request)
	if !errors.Is(err, domainerrors.ErrRoleAlreadyAssigned) {
		t.Fatalf("expected role already assigned, got %v", err)
	}
}

func TestExpiredRoleStopsGranting(t *testing.T) {
	module := newAuthzModule(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	module.Store.SetClock(func() time.Time { return now })

	expiresAt := now.Add(time.Hour)
	if _, err := module.Handler.GrantRoleHandler(ctx, "dave", "root-admin", "grant-dave", httptransport.GrantRoleRequest{
		RoleID:    entities.RoleVoter,
		ExpiresAt: &expiresAt,
	}); err != nil {
		t.Fatalf("grant role: %v", err)
	}

	now = now.Add(2 * time.Hour)
	decision, err := module.Handler.CheckPermissionHandler(ctx, "dave", httptransport.CheckPermissionRequest{
		Permission: entities.PermissionVote,
	})
	if err != nil {
		t.Fatalf("check permission: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected expired role to deny, got %+v", decision)
	}

	roles, err := module.Handler.ListUserRolesHandler(ctx, "dave", false)
	if err != nil {
		t.Fatalf("list roles: %v", err)
	}
	if len(roles.Assignments) != 0 {
		t.Fatalf("expected lapsed role hidden, got %+v", roles.Assignments)
	}
}

func TestGrantRoleRejectsPastExpiry(t *testing.T) {
	module := newAuthzModule(t)
	past := time.Now().UTC().Add(-time.Minute)
	_, err := module.Handler.GrantRoleHandler(context.Background(), "erin", "root-admin", "grant-erin", httptransport.GrantRoleRequest{
		RoleID:    entities.RoleVoter,
		ExpiresAt: &past,
	})
	if !errors.Is(err, domainerrors.ErrInvalidExpiry) {
		t.Fatalf("expected invalid expiry, got %v", err)
	}
}

func TestCheckBatchRejectsOversizedRequests(t *testing.T) {
	module := newAuthzModule(t)
	permissions := make([]string, queries.MaxBatchPermissions+1)
	for i := range permissions {
		permissions[i] = entities.PermissionVote
	}
	_, err := module.Handler.CheckBatchHandler(context.Background(), "alice", httptransport.CheckBatchRequest{
		Permissions: permissions,
	})
	if !errors.Is(err, domainerrors.ErrInvalidBatchSize) {
		t.Fatalf("expected ErrInvalidBatchSize, got %v", err)
	}
}

func TestRoleCatalogIsOrderedAndComplete(t *testing.T) {
	module := newAuthzModule(t)
	catalog := module.Handler.RoleCatalogHandler()
	want := []string{entities.RoleAdmin, entities.RoleExecutor, entities.RoleGuardian, entities.RoleProposer, entities.RoleVoter}
	if len(catalog.Roles) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(catalog.Roles))
	}
	for i, role := range catalog.Roles {
		if role.RoleID != want[i] {
			t.Fatalf("role %d: expected %s, got %s", i, want[i], role.RoleID)
		}
	}
}

func TestListUserRolesActiveOnlyHidesRevoked(t *testing.T) {
	module := newAuthzModule(t)
	ctx := context.Background()
	if _, err := module.Handler.GrantRoleHandler(ctx, "erin", "root-admin", "grant-erin", httptransport.GrantRoleRequest{
		RoleID: entities.RoleVoter,
	}); err != nil {
		t.Fatalf("grant role: %v", err)
	}
	if _, err := module.Handler.RevokeRoleHandler(ctx, "erin", "root-admin", "revoke-erin", httptransport.RevokeRoleRequest{
		RoleID: entities.RoleVoter,
	}); err != nil {
		t.Fatalf("revoke role: %v", err)
	}

	history, err := module.Handler.ListUserRolesHandler(ctx, "erin", false)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history.Assignments) != 1 || history.Assignments[0].Active {
		t.Fatalf("expected one revoked assignment, got %+v", history.Assignments)
	}
	active, err := module.Handler.ListUserRolesHandler(ctx, "erin", true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active.Assignments) != 0 {
		t.Fatalf("expected no active assignments, got %+v", active.Assignments)
	}
}
