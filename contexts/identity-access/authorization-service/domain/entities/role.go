package entities

// Permission identifiers. The governance ones match the capability strings
// checked by the treasury governor.
const (
	PermissionPropose    = "governance.propose"
	PermissionVote       = "governance.vote"
	PermissionExecute    = "governance.execute"
	PermissionGuardian   = "governance.guardian"
	PermissionAdmin      = "governance.admin"
	PermissionGrantRole  = "authz.grant_role"
	PermissionRevokeRole = "authz.revoke_role"
)

const (
	RoleProposer = "proposer"
	RoleVoter    = "voter"
	RoleExecutor = "executor"
	RoleGuardian = "guardian"
	RoleAdmin    = "admin"
)

// Role models a permission bundle that can be assigned to users.
type Role struct {
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}

// GovernanceRoles is the fixed role catalog. A proposer also votes.
func GovernanceRoles() map[string]Role {
	return map[string]Role{
		RoleProposer: {
			RoleID:      RoleProposer,
			RoleName:    "proposer",
			Permissions: []string{PermissionPropose, PermissionVote},
		},
		RoleVoter: {
			RoleID:      RoleVoter,
			RoleName:    "voter",
			Permissions: []string{PermissionVote},
		},
		RoleExecutor: {
			RoleID:      RoleExecutor,
			RoleName:    "executor",
			Permissions: []string{PermissionExecute},
		},
		RoleGuardian: {
			RoleID:      RoleGuardian,
			RoleName:    "guardian",
			Permissions: []string{PermissionGuardian},
		},
		RoleAdmin: {
			RoleID:   RoleAdmin,
			RoleName: "admin",
			Permissions: []string{
				PermissionAdmin,
				PermissionGrantRole,
				PermissionRevokeRole,
			},
		},
	}
}
