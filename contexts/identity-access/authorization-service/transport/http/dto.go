package httptransport

import "time"

// CheckPermissionRequest names the subject in the body or, when omitted, in
// the X-User-Id header.
type CheckPermissionRequest struct {
	UserID     string `json:"user_id,omitempty"`
	Permission string `json:"permission"`
}

type CheckBatchRequest struct {
	UserID      string   `json:"user_id,omitempty"`
	Permissions []string `json:"permissions"`
}

type DecisionDTO struct {
	Permission string `json:"permission"`
	Allowed    bool   `json:"allowed"`
	Reason     string `json:"reason"`
}

type CheckPermissionResponse struct {
	UserID string `json:"user_id"`
	DecisionDTO
	CheckedAt time.Time `json:"checked_at"`
	CacheHit  bool      `json:"cache_hit"`
}

// CheckBatchResponse keeps decisions in request order.
type CheckBatchResponse struct {
	UserID    string        `json:"user_id"`
	Decisions []DecisionDTO `json:"decisions"`
	Granted   int           `json:"granted"`
	CheckedAt time.Time     `json:"checked_at"`
	CacheHit  bool          `json:"cache_hit"`
}

type RoleDTO struct {
	RoleID      string   `json:"role_id"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
}

type RoleCatalogResponse struct {
	Roles []RoleDTO `json:"roles"`
}

type AssignmentDTO struct {
	AssignmentID string     `json:"assignment_id"`
	UserID       string     `json:"user_id"`
	Role         RoleDTO    `json:"role"`
	AssignedBy   string     `json:"assigned_by"`
	Reason       string     `json:"reason,omitempty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Active       bool       `json:"active"`
	RevokedBy    string     `json:"revoked_by,omitempty"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

type ListUserRolesResponse struct {
	UserID      string          `json:"user_id"`
	Assignments []AssignmentDTO `json:"assignments"`
}

type GrantRoleRequest struct {
	RoleID    string     `json:"role_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

type RevokeRoleRequest struct {
	RoleID string `json:"role_id"`
	Reason string `json:"reason,omitempty"`
}

// RoleMutationResponse is returned by grant and revoke. Replayed is set when
// the idempotency key matched an earlier identical request.
type RoleMutationResponse struct {
	Assignment AssignmentDTO `json:"assignment"`
	Replayed   bool          `json:"replayed"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
