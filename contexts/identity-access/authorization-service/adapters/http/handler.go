package httpadapter

import (
	"context"
	"log/slog"

	application "commonwealth/contexts/identity-access/authorization-service/application"
	"commonwealth/contexts/identity-access/authorization-service/application/commands"
	"commonwealth/contexts/identity-access/authorization-service/application/queries"
	"commonwealth/contexts/identity-access/authorization-service/domain/entities"
	httptransport "commonwealth/contexts/identity-access/authorization-service/transport/http"
)

// Handler maps HTTP DTOs to application commands/queries.
type Handler struct {
	CheckPermission queries.CheckPermissionUseCase
	CheckBatch      queries.CheckPermissionsBatchUseCase
	ListRoles       queries.ListUserRolesUseCase
	Roles           commands.RoleUseCase
	Logger          *slog.Logger
}

func (h Handler) CheckPermissionHandler(
	ctx context.Context,
	userID string,
	request httptransport.CheckPermissionRequest,
) (httptransport.CheckPermissionResponse, error) {
	decision, err := h.CheckPermission.Execute(ctx, queries.CheckPermissionQuery{
		UserID:     userID,
		Permission: request.Permission,
	})
	if err != nil {
		h.logFailure("authz_http_check_failed", err, "user_id", userID, "permission", request.Permission)
		return httptransport.CheckPermissionResponse{}, err
	}
	return toCheckDTO(decision), nil
}

func (h Handler) CheckBatchHandler(
	ctx context.Context,
	userID string,
	request httptransport.CheckBatchRequest,
) (httptransport.CheckBatchResponse, error) {
	decisions, err := h.CheckBatch.Execute(ctx, queries.CheckPermissionsBatchQuery{
		UserID:      userID,
		Permissions: request.Permissions,
	})
	if err != nil {
		h.logFailure("authz_http_check_batch_failed", err, "user_id", userID, "permission_count", len(request.Permissions))
		return httptransport.CheckBatchResponse{}, err
	}
	response := httptransport.CheckBatchResponse{
		UserID:    userID,
		Decisions: make([]httptransport.DecisionDTO, 0, len(decisions)),
	}
	for _, decision := range decisions {
		response.UserID = decision.UserID
		response.CheckedAt = decision.CheckedAt
		response.CacheHit = decision.CacheHit
		if decision.Allowed {
			response.Granted++
		}
		response.Decisions = append(response.Decisions, toDecisionDTO(decision))
	}
	return response, nil
}

func (h Handler) ListUserRolesHandler(
	ctx context.Context,
	userID string,
	activeOnly bool,
) (httptransport.ListUserRolesResponse, error) {
	assignments, err := h.ListRoles.Execute(ctx, queries.ListUserRolesQuery{UserID: userID, ActiveOnly: activeOnly})
	if err != nil {
		h.logFailure("authz_http_list_roles_failed", err, "user_id", userID)
		return httptransport.ListUserRolesResponse{}, err
	}
	items := make([]httptransport.AssignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		items = append(items, toAssignmentDTO(assignment))
	}
	return httptransport.ListUserRolesResponse{UserID: userID, Assignments: items}, nil
}

func (h Handler) RoleCatalogHandler() httptransport.RoleCatalogResponse {
	roles := queries.RoleCatalog()
	items := make([]httptransport.RoleDTO, 0, len(roles))
	for _, role := range roles {
		items = append(items, toRoleDTO(role))
	}
	return httptransport.RoleCatalogResponse{Roles: items}
}

func (h Handler) GrantRoleHandler(
	ctx context.Context,
	userID string,
	adminID string,
	idempotencyKey string,
	request httptransport.GrantRoleRequest,
) (httptransport.RoleMutationResponse, error) {
	result, err := h.Roles.Grant(ctx, commands.GrantRoleCommand{
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		RoleID:         request.RoleID,
		AdminID:        adminID,
		Reason:         request.Reason,
		ExpiresAt:      request.ExpiresAt,
	})
	if err != nil {
		h.logFailure("authz_http_grant_role_failed", err, "user_id", userID, "admin_id", adminID, "role_id", request.RoleID)
		return httptransport.RoleMutationResponse{}, err
	}
	return toMutationDTO(result), nil
}

func (h Handler) RevokeRoleHandler(
	ctx context.Context,
	userID string,
	adminID string,
	idempotencyKey string,
	request httptransport.RevokeRoleRequest,
) (httptransport.RoleMutationResponse, error) {
	result, err := h.Roles.Revoke(ctx, commands.RevokeRoleCommand{
		IdempotencyKey: idempotencyKey,
		UserID:         userID,
		RoleID:         request.RoleID,
		AdminID:        adminID,
		Reason:         request.Reason,
	})
	if err != nil {
		h.logFailure("authz_http_revoke_role_failed", err, "user_id", userID, "admin_id", adminID, "role_id", request.RoleID)
		return httptransport.RoleMutationResponse{}, err
	}
	return toMutationDTO(result), nil
}

func (h Handler) logFailure(event string, err error, attrs ...any) {
	fields := append([]any{
		"event", event,
		"module", application.ModuleName,
		"layer", "transport",
		"error", err.Error(),
	}, attrs...)
	application.ResolveLogger(h.Logger).Warn("authorization request failed", fields...)
}

func toDecisionDTO(decision entities.PermissionDecision) httptransport.DecisionDTO {
	return httptransport.DecisionDTO{
		Permission: decision.Permission,
		Allowed:    decision.Allowed,
		Reason:     decision.Reason,
	}
}

func toCheckDTO(decision entities.PermissionDecision) httptransport.CheckPermissionResponse {
	return httptransport.CheckPermissionResponse{
		UserID:      decision.UserID,
		DecisionDTO: toDecisionDTO(decision),
		CheckedAt:   decision.CheckedAt,
		CacheHit:    decision.CacheHit,
	}
}

func toRoleDTO(role entities.Role) httptransport.RoleDTO {
	return httptransport.RoleDTO{
		RoleID:      role.RoleID,
		RoleName:    role.RoleName,
		Permissions: append([]string(nil), role.Permissions...),
	}
}

func toAssignmentDTO(assignment entities.RoleAssignment) httptransport.AssignmentDTO {
	role, ok := entities.GovernanceRoles()[assignment.RoleID]
	if !ok {
		role = entities.Role{RoleID: assignment.RoleID, RoleName: assignment.RoleName}
	}
	return httptransport.AssignmentDTO{
		AssignmentID: assignment.AssignmentID,
		UserID:       assignment.UserID,
		Role:         toRoleDTO(role),
		AssignedBy:   assignment.AssignedBy,
		Reason:       assignment.Reason,
		AssignedAt:   assignment.AssignedAt,
		ExpiresAt:    assignment.ExpiresAt,
		Active:       assignment.IsActive,
		RevokedBy:    assignment.RevokedBy,
		RevokedAt:    assignment.RevokedAt,
	}
}

func toMutationDTO(result commands.RoleResult) httptransport.RoleMutationResponse {
	return httptransport.RoleMutationResponse{
		Assignment: toAssignmentDTO(result.Assignment),
		Replayed:   result.Replayed,
	}
}
