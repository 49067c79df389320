package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	treasurygovernor "commonwealth/contexts/governance/treasury-governor"
	authorization "commonwealth/contexts/identity-access/authorization-service"
	_ "commonwealth/internal/platform/httpserver/docs"
	"commonwealth/internal/platform/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	governance    treasurygovernor.Module
	authorization authorization.Module
	metrics       *metrics.Metrics
	httpServer    *http.Server
}

func New(
	governance treasurygovernor.Module,
	authorizationModule authorization.Module,
	serverMetrics *metrics.Metrics,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if serverMetrics == nil {
		serverMetrics = metrics.New("")
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		governance:    governance,
		authorization: authorizationModule,
		metrics:       serverMetrics,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", s.metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.registerGovernanceRoutes()
	s.registerAuthzRoutes()
}

// route registers pattern with request metrics. Mutating API calls must carry
// X-Request-Id so log lines of one call can be joined.
func (s *Server) route(pattern string, handler http.HandlerFunc) {
	method, _, _ := strings.Cut(pattern, " ")
	if method != http.MethodGet {
		handler = requireRequestID(handler)
	}
	s.mux.HandleFunc(pattern, s.metrics.Instrument(pattern, handler))
}

func requireRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if requestID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{
				Code:    "request_id_required",
				Message: "X-Request-Id header is required",
			})
			return
		}
		w.Header().Set("X-Request-Id", requestID)
		next(w, r)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON writes a 400 and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Code:    "invalid_json",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func actorFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}
