package services

import (
	"sort"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
)

// GrantsPermission reports whether permission is present in an effective set.
func GrantsPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// AssignmentActive reports whether an assignment still confers its role at now.
func AssignmentActive(assignment entities.RoleAssignment, now time.Time) bool {
	if !assignment.IsActive {
		return false
	}
	return assignment.ExpiresAt == nil || assignment.ExpiresAt.After(now)
}

// EffectivePermissions unions the permissions of every active assignment,
// sorted and without duplicates. Assignments to unknown roles are skipped.
func EffectivePermissions(
	roles map[string]entities.Role,
	assignments []entities.RoleAssignment,
	now time.Time,
) []string {
	seen := make(map[string]struct{})
	for _, assignment := range assignments {
		if !AssignmentActive(assignment, now) {
			continue
		}
		role, ok := roles[assignment.RoleID]
		if !ok {
			continue
		}
		for _, permission := range role.Permissions {
			seen[permission] = struct{}{}
		}
	}
	items := make([]string, 0, len(seen))
	for permission := range seen {
		items = append(items, permission)
	}
	sort.Strings(items)
	return items
}
