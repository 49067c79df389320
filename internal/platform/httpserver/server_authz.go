package httpserver

import (
	"errors"
	"net/http"
	"strings"

	domainerrors "commonwealth/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "commonwealth/contexts/identity-access/authorization-service/transport/http"
)

const authzPrefix = "/api/authz/v1"

func (s *Server) registerAuthzRoutes() {
	s.route("POST "+authzPrefix+"/check", s.handleCheckPermission)
	s.route("POST "+authzPrefix+"/check-batch", s.handleCheckBatch)
	s.route("GET "+authzPrefix+"/roles", s.handleRoleCatalog)
	s.route("GET "+authzPrefix+"/users/{user_id}/roles", s.handleListUserRoles)
	s.route("POST "+authzPrefix+"/users/{user_id}/roles/grant", s.handleGrantRole)
	s.route("POST "+authzPrefix+"/users/{user_id}/roles/revoke", s.handleRevokeRole)
}

// handleCheckPermission godoc
// @Summary Check whether a user holds a permission
// @Tags authorization
// @Accept json
// @Produce json
// @Param X-Request-Id header string true "Request id"
// @Param request body authzhttp.CheckPermissionRequest true "Check"
// @Success 200 {object} authzhttp.CheckPermissionResponse
// @Router /api/authz/v1/check [post]
func (s *Server) handleCheckPermission(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CheckPermissionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := subjectFrom(r, req.UserID)
	resp, err := s.authorization.Handler.CheckPermissionHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckBatch(w http.ResponseWriter, r *http.Request) {
	var req authzhttp.CheckBatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := subjectFrom(r, req.UserID)
	resp, err := s.authorization.Handler.CheckBatchHandler(r.Context(), userID, req)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.authorization.Handler.RoleCatalogHandler())
}

func (s *Server) handleListUserRoles(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	resp, err := s.authorization.Handler.ListUserRolesHandler(r.Context(), r.PathValue("user_id"), activeOnly)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGrantRole godoc
// @Summary Grant a governance role
// @Tags authorization
// @Accept json
// @Produce json
// @Param user_id path string true "User"
// @Param X-User-Id header string true "Admin"
// @Param X-Request-Id header string true "Request id"
// @Param Idempotency-Key header string true "Idempotency key"
// @Param request body authzhttp.GrantRoleRequest true "Grant"
// @Success 200 {object} authzhttp.RoleMutationResponse
// @Failure 403 {object} authzhttp.ErrorResponse
// @Router /api/authz/v1/users/{user_id}/roles/grant [post]
func (s *Server) handleGrantRole(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req authzhttp.GrantRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.authorization.Handler.GrantRoleHandler(r.Context(), r.PathValue("user_id"), adminID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req authzhttp.RevokeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.authorization.Handler.RevokeRoleHandler(r.Context(), r.PathValue("user_id"), adminID, r.Header.Get("Idempotency-Key"), req)
	if err != nil {
		writeAuthzError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// subjectFrom prefers the explicit body subject over the caller header.
func subjectFrom(r *http.Request, bodyUserID string) string {
	if userID := strings.TrimSpace(bodyUserID); userID != "" {
		return userID
	}
	return actorFrom(r)
}

func writeAuthzError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidPermission),
		errors.Is(err, domainerrors.ErrInvalidUserID),
		errors.Is(err, domainerrors.ErrInvalidRoleID),
		errors.Is(err, domainerrors.ErrInvalidAdminID),
		errors.Is(err, domainerrors.ErrInvalidExpiry),
		errors.Is(err, domainerrors.ErrIdempotencyKeyRequired):
		writeAuthzBody(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		writeAuthzBody(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domainerrors.ErrRoleNotFound):
		writeAuthzBody(w, http.StatusNotFound, "role_not_found", err.Error())
	case errors.Is(err, domainerrors.ErrRoleAlreadyAssigned),
		errors.Is(err, domainerrors.ErrRoleNotAssigned),
		errors.Is(err, domainerrors.ErrIdempotencyConflict):
		writeAuthzBody(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeAuthzBody(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAuthzBody(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, authzhttp.ErrorResponse{Code: code, Message: message})
}
