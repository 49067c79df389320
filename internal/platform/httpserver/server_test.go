package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	treasurygovernor "commonwealth/contexts/governance/treasury-governor"
	"commonwealth/contexts/governance/treasury-governor/domain/entities"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	governancehttp "commonwealth/contexts/governance/treasury-governor/transport/http"
	authorization "commonwealth/contexts/identity-access/authorization-service"
	"commonwealth/internal/platform/metrics"
)

func newTestServer() *Server {
	governance := treasurygovernor.NewInMemoryModule(services.DefaultGovernanceConfig(), nil, nil)
	governance.Store.SetNow(time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
	governance.Store.SetHeight(100)
	governance.Store.Grant("alice", entities.CapabilityPropose, entities.CapabilityVote)
	governance.Store.Grant("executor", entities.CapabilityExecute)
	governance.Store.Grant("guardian", entities.CapabilityGuardian)

	authz := authorization.NewInMemoryModule(nil)
	if err := authz.Handler.Roles.Bootstrap(context.Background(), "root-admin"); err != nil {
		panic(err)
	}
	return New(governance, authz, metrics.New("commonwealth_test"), nil, "")
}

func serve(server *Server, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func caller(userID string, requestID string) map[string]string {
	return map[string]string{"X-User-Id": userID, "X-Request-Id": requestID}
}

func TestStakeDepositRequiresRequestIDHeader(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":100}`, map[string]string{
		"X-User-Id": "alice",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStakeDepositRequiresActorHeader(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":100}`, map[string]string{
		"X-Request-Id": "req-deposit-1",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStakeDepositRejectsUnknownFields(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":100,"bonus":5}`, caller("alice", "req-deposit-2"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestStakeDepositReturnsDampenedPower(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":400}`, caller("alice", "req-deposit-3"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp governancehttp.StakeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stake != 400 || resp.VotingPower != 20 {
		t.Fatalf("unexpected stake response: %+v", resp)
	}
}

func TestZeroAmountDepositMapsToValidation(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":0}`, caller("alice", "req-deposit-4"))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp governancehttp.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Kind != "validation" {
		t.Fatalf("expected validation kind, got %+v", resp)
	}
}

func TestCreateProposalAndReadBack(t *testing.T) {
	server := newTestServer()
	if rr := serve(server, http.MethodPost, "/api/governance/v1/stake/deposit", `{"amount":400}`, caller("alice", "req-1")); rr.Code != http.StatusOK {
		t.Fatalf("deposit: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/receive", `{"amount":1000}`, caller("donor", "req-2")); rr.Code != http.StatusOK {
		t.Fatalf("receive: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr := serve(server, http.MethodPost, "/api/governance/v1/proposals",
		`{"recipient":"vendor","amount":300,"description":"security audit","proposal_type":"standard"}`,
		caller("alice", "req-3"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created governancehttp.ProposalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode proposal: %v", err)
	}

	rr = serve(server, http.MethodGet, fmt.Sprintf("/api/governance/v1/proposals/%d", created.ProposalID), "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("read: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var read governancehttp.ProposalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &read); err != nil {
		t.Fatalf("decode proposal: %v", err)
	}
	if read.ProposalID != created.ProposalID || read.Recipient != "vendor" || read.State != string(entities.ProposalStatePending) {
		t.Fatalf("unexpected proposal: %+v", read)
	}

	rr = serve(server, http.MethodGet, "/api/governance/v1/proposals?limit=10", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var list governancehttp.ListProposalsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestCreateProposalWithoutCapabilityIsForbidden(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/governance/v1/proposals",
		`{"recipient":"vendor","amount":300,"description":"audit","proposal_type":"standard"}`,
		caller("mallory", "req-4"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownProposalReturnsNotFound(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodGet, "/api/governance/v1/proposals/42", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestMalformedProposalIDReturnsBadRequest(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodGet, "/api/governance/v1/proposals/-1", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvalidPaginationReturnsBadRequest(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodGet, "/api/governance/v1/proposals?offset=abc", "", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransferWhilePausedReturnsLocked(t *testing.T) {
	server := newTestServer()
	if rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/receive", `{"amount":500}`, caller("donor", "req-5")); rr.Code != http.StatusOK {
		t.Fatalf("receive: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/pause", "", caller("guardian", "req-6")); rr.Code != http.StatusOK {
		t.Fatalf("pause: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/transfer", `{"recipient":"vendor","amount":100}`, caller("executor", "req-7"))
	if rr.Code != http.StatusLocked {
		t.Fatalf("expected 423, got %d body=%s", rr.Code, rr.Body.String())
	}
	if rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/pause", "", caller("guardian", "req-8")); rr.Code != http.StatusConflict {
		t.Fatalf("second pause: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransferBeyondBalanceReturnsUnprocessable(t *testing.T) {
	server := newTestServer()
	if rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/receive", `{"amount":50}`, caller("donor", "req-9")); rr.Code != http.StatusOK {
		t.Fatalf("receive: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr := serve(server, http.MethodPost, "/api/governance/v1/treasury/transfer", `{"recipient":"vendor","amount":100}`, caller("executor", "req-10"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthzCheckUsesCallerWhenBodyOmitsUser(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/authz/v1/check", `{"permission":"governance.admin"}`, caller("root-admin", "req-authz-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		UserID  string `json:"user_id"`
		Allowed bool   `json:"allowed"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "root-admin" || !resp.Allowed {
		t.Fatalf("unexpected decision: %+v", resp)
	}
}

func TestAuthzGrantRequiresRequestIDHeader(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodPost, "/api/authz/v1/users/user-1/roles/grant", `{"role_id":"voter"}`, map[string]string{
		"X-User-Id":       "root-admin",
		"Idempotency-Key": "grant-1",
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthzGrantByNonAdminIsForbidden(t *testing.T) {
	server := newTestServer()
	headers := caller("alice", "req-authz-2")
	headers["Idempotency-Key"] = "grant-2"
	rr := serve(server, http.MethodPost, "/api/authz/v1/users/user-1/roles/grant", `{"role_id":"voter"}`, headers)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthzGrantThenListRoles(t *testing.T) {
	server := newTestServer()
	headers := caller("root-admin", "req-authz-3")
	headers["Idempotency-Key"] = "grant-3"
	rr := serve(server, http.MethodPost, "/api/authz/v1/users/user-1/roles/grant", `{"role_id":"voter"}`, headers)
	if rr.Code != http.StatusOK {
		t.Fatalf("grant: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = serve(server, http.MethodGet, "/api/authz/v1/users/user-1/roles", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Assignments []struct {
			Role struct {
				RoleID string `json:"role_id"`
			} `json:"role"`
			Active bool `json:"active"`
		} `json:"assignments"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode roles: %v", err)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].Role.RoleID != "voter" || !resp.Assignments[0].Active {
		t.Fatalf("unexpected assignments: %+v", resp.Assignments)
	}
}

func TestAuthzRoleCatalogListsGovernanceRoles(t *testing.T) {
	server := newTestServer()
	rr := serve(server, http.MethodGet, "/api/authz/v1/roles", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte(`"governance.execute"`)) {
		t.Fatalf("expected executor permission in catalog, body=%s", rr.Body.String())
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	server := newTestServer()
	if rr := serve(server, http.MethodGet, "/healthz", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rr.Code)
	}
	serve(server, http.MethodGet, "/api/governance/v1/treasury", "", nil)
	rr := serve(server, http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rr.Code)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("commonwealth_test_http_requests_total")) {
		t.Fatalf("expected request counter in metrics output")
	}
}
