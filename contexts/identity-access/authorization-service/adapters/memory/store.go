package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	"commonwealth/contexts/identity-access/authorization-service/domain/services"
	"commonwealth/contexts/identity-access/authorization-service/ports"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"
)

// Store implements the repository, permission cache and idempotency ports in
// process for tests and single-node development.
type Store struct {
	mu deadlock.RWMutex

	roles       map[string]entities.Role
	assignments map[string]entities.RoleAssignment
	idempotency map[string]ports.IdempotencyRecord
	cache       map[string]cacheEntry
	now         func() time.Time
}

type cacheEntry struct {
	permissions []string
	expiresAt   time.Time
}

func NewStore() *Store {
	return &Store{
		roles:       entities.GovernanceRoles(),
		assignments: make(map[string]entities.RoleAssignment),
		idempotency: make(map[string]ports.IdempotencyRecord),
		cache:       make(map[string]cacheEntry),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the store clock; nil restores wall time.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	s.now = now
}

func (s *Store) ListEffectivePermissions(_ context.Context, userID string, now time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return services.EffectivePermissions(s.roles, s.assignmentsOf(userID), now), nil
}

// ListUserRoles returns every assignment of userID except lapsed ones, newest first.
func (s *Store) ListUserRoles(_ context.Context, userID string, now time.Time) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignmentsOf(userID) {
		if assignment.IsActive && !services.AssignmentActive(assignment, now) {
			continue
		}
		items = append(items, assignment)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AssignedAt.Equal(items[j].AssignedAt) {
			return items[i].AssignmentID < items[j].AssignmentID
		}
		return items[i].AssignedAt.After(items[j].AssignedAt)
	})
	return items, nil
}

func (s *Store) GrantRole(_ context.Context, input ports.GrantRoleInput) (entities.RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[input.RoleID]
	if !ok {
		return entities.RoleAssignment{}, domainerrors.ErrRoleNotFound
	}
	for _, assignment := range s.assignmentsOf(input.UserID) {
		if assignment.RoleID == input.RoleID && services.AssignmentActive(assignment, input.AssignedAt) {
			return entities.RoleAssignment{}, domainerrors.ErrRoleAlreadyAssigned
		}
	}

	assignment := entities.RoleAssignment{
		AssignmentID: input.AssignmentID,
		UserID:       input.UserID,
		RoleID:       input.RoleID,
		RoleName:     role.RoleName,
		AssignedBy:   input.AdminID,
		Reason:       input.Reason,
		AssignedAt:   input.AssignedAt.UTC(),
		ExpiresAt:    input.ExpiresAt,
		IsActive:     true,
	}
	if assignment.AssignmentID == "" {
		assignment.AssignmentID = uuid.NewString()
	}
	s.assignments[assignment.AssignmentID] = assignment
	return assignment, nil
}

func (s *Store) RevokeRole(_ context.Context, input ports.RevokeRoleInput) (entities.RoleAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, assignment := range s.assignments {
		if assignment.UserID != input.UserID || assignment.RoleID != input.RoleID {
			continue
		}
		if !services.AssignmentActive(assignment, input.RevokedAt) {
			continue
		}
		revokedAt := input.RevokedAt.UTC()
		assignment.IsActive = false
		assignment.RevokedAt = &revokedAt
		assignment.RevokedBy = input.AdminID
		s.assignments[id] = assignment
		return assignment, nil
	}
	return entities.RoleAssignment{}, domainerrors.ErrRoleNotAssigned
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.idempotency[record.Key]; exists && existing.RequestHash != record.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Get(_ context.Context, userID string, now time.Time) ([]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[userID]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.After(now) {
		delete(s.cache, userID)
		return nil, false, nil
	}
	return append([]string(nil), entry.permissions...), true, nil
}

func (s *Store) Set(_ context.Context, userID string, permissions []string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[userID] = cacheEntry{
		permissions: append([]string(nil), permissions...),
		expiresAt:   expiresAt.UTC(),
	}
	return nil
}

func (s *Store) Invalidate(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, userID)
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) assignmentsOf(userID string) []entities.RoleAssignment {
	userID = strings.TrimSpace(userID)
	items := make([]entities.RoleAssignment, 0)
	for _, assignment := range s.assignments {
		if assignment.UserID == userID {
			items = append(items, assignment)
		}
	}
	return items
}

var _ ports.Repository = (*Store)(nil)
var _ ports.PermissionCache = (*Store)(nil)
var _ ports.IdempotencyStore = (*Store)(nil)
