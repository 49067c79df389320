package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/ports"
)

type ListUserRolesQuery struct {
	UserID string
	// ActiveOnly drops revoked assignments from the history.
	ActiveOnly bool
}

type ListUserRolesUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
}

func (u ListUserRolesUseCase) Execute(ctx context.Context, query ListUserRolesQuery) ([]entities.RoleAssignment, error) {
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return nil, domainerrors.ErrInvalidUserID
	}
	now := time.Now().UTC()
	if u.Clock != nil {
		now = u.Clock.Now().UTC()
	}
	assignments, err := u.Repository.ListUserRoles(ctx, userID, now)
	if err != nil || !query.ActiveOnly {
		return assignments, err
	}
	active := assignments[:0]
	for _, assignment := range assignments {
		if assignment.IsActive {
			active = append(active, assignment)
		}
	}
	return active, nil
}

// RoleCatalog lists the assignable roles ordered by role id.
func RoleCatalog() []entities.Role {
	catalog := entities.GovernanceRoles()
	roles := make([]entities.Role, 0, len(catalog))
	for _, role := range catalog {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].RoleID < roles[j].RoleID })
	return roles
}
