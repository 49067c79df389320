package errors

import "errors"

// Input errors.
var (
	ErrInvalidPermission      = errors.New("invalid permission")
	ErrInvalidBatchSize       = errors.New("batch must name between 1 and 64 permissions")
	ErrInvalidUserID          = errors.New("invalid user id")
	ErrInvalidRoleID          = errors.New("invalid role id")
	ErrInvalidAdminID         = errors.New("invalid admin id")
	ErrInvalidExpiry          = errors.New("role expiry must be in the future")
	ErrIdempotencyKeyRequired = errors.New("idempotency key is required")
)

// State errors.
var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleAlreadyAssigned = errors.New("role already assigned")
	ErrRoleNotAssigned     = errors.New("role not assigned")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
)

// ErrForbidden means the caller lacks the permission the operation needs.
var ErrForbidden = errors.New("caller lacks required permission")
