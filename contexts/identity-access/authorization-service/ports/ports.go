package ports

import (
	"context"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
)

// AssignmentReader answers permission questions as of now. Lapsed and revoked
// assignments never contribute permissions.
type AssignmentReader interface {
	ListEffectivePermissions(ctx context.Context, userID string, now time.Time) ([]string, error)
	ListUserRoles(ctx context.Context, userID string, now time.Time) ([]entities.RoleAssignment, error)
}

// AssignmentWriter mutates role assignments. GrantRole fails with
// ErrRoleAlreadyAssigned while an active assignment of the role exists;
// RevokeRole fails with ErrRoleNotAssigned when none does.
type AssignmentWriter interface {
	GrantRole(ctx context.Context, input GrantRoleInput) (entities.RoleAssignment, error)
	RevokeRole(ctx context.Context, input RevokeRoleInput) (entities.RoleAssignment, error)
}

type Repository interface {
	AssignmentReader
	AssignmentWriter
}

type GrantRoleInput struct {
	AssignmentID string
	UserID       string
	RoleID       string
	AdminID      string
	Reason       string
	AssignedAt   time.Time
	ExpiresAt    *time.Time
}

type RevokeRoleInput struct {
	UserID    string
	RoleID    string
	AdminID   string
	Reason    string
	RevokedAt time.Time
}

// PermissionCache holds effective permission sets until expiresAt. Writers
// must call Invalidate after every assignment change of userID.
type PermissionCache interface {
	Get(ctx context.Context, userID string, now time.Time) ([]string, bool, error)
	Set(ctx context.Context, userID string, permissions []string, expiresAt time.Time) error
	Invalidate(ctx context.Context, userID string) error
}

type IdempotencyRecord struct {
	Key             string
	Operation       string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

// IdempotencyStore keeps the response of a role mutation for replay. Expired
// records read as absent.
type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type (
	Clock interface {
		Now() time.Time
	}
	IDGenerator interface {
		NewID(ctx context.Context) (string, error)
	}
)
