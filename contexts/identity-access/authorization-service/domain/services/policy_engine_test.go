package services

import (
	"testing"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"

	"github.com/stretchr/testify/require"
)

func TestEffectivePermissionsUnionsActiveRoles(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)
	later := now.Add(time.Hour)
	assignments := []entities.RoleAssignment{
		{UserID: "alice", RoleID: entities.RoleProposer, IsActive: true},
		{UserID: "alice", RoleID: entities.RoleVoter, IsActive: true, ExpiresAt: &later},
		{UserID: "alice", RoleID: entities.RoleGuardian, IsActive: true, ExpiresAt: &expired},
		{UserID: "alice", RoleID: entities.RoleExecutor, IsActive: false},
		{UserID: "alice", RoleID: "unknown", IsActive: true},
	}

	permissions := EffectivePermissions(entities.GovernanceRoles(), assignments, now)
	require.Equal(t, []string{entities.PermissionPropose, entities.PermissionVote}, permissions)
	require.True(t, GrantsPermission(permissions, entities.PermissionVote))
	require.False(t, GrantsPermission(permissions, entities.PermissionGuardian))
}

func TestAdminRoleCanManageRoles(t *testing.T) {
	admin := entities.GovernanceRoles()[entities.RoleAdmin]
	require.True(t, GrantsPermission(admin.Permissions, entities.PermissionGrantRole))
	require.True(t, GrantsPermission(admin.Permissions, entities.PermissionRevokeRole))
	require.True(t, GrantsPermission(admin.Permissions, entities.PermissionAdmin))
}
