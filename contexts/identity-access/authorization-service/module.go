package authorization

import (
	"log/slog"
	"time"

	httpadapter "commonwealth/contexts/identity-access/authorization-service/adapters/http"
	"commonwealth/contexts/identity-access/authorization-service/adapters/memory"
	"commonwealth/contexts/identity-access/authorization-service/application/commands"
	"commonwealth/contexts/identity-access/authorization-service/application/queries"
	"commonwealth/contexts/identity-access/authorization-service/ports"
)

const (
	DefaultIdempotencyTTL     = 7 * 24 * time.Hour
	DefaultPermissionCacheTTL = 5 * time.Minute
)

// Module exposes the authorization handler to the HTTP server and to the
// governance capability bridge. Store is set only for in-memory modules.
type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

// Dependencies wires the module. Zero TTLs fall back to the defaults above.
type Dependencies struct {
	Repository         ports.Repository
	Idempotency        ports.IdempotencyStore
	PermissionCache    ports.PermissionCache
	Clock              ports.Clock
	IDGenerator        ports.IDGenerator
	IdempotencyTTL     time.Duration
	PermissionCacheTTL time.Duration
	Logger             *slog.Logger
}

func NewModule(deps Dependencies) Module {
	if deps.IdempotencyTTL <= 0 {
		deps.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if deps.PermissionCacheTTL <= 0 {
		deps.PermissionCacheTTL = DefaultPermissionCacheTTL
	}

	check := queries.CheckPermissionUseCase{
		Repository:         deps.Repository,
		PermissionCache:    deps.PermissionCache,
		Clock:              deps.Clock,
		PermissionCacheTTL: deps.PermissionCacheTTL,
		Logger:             deps.Logger,
	}
	roles := commands.RoleUseCase{
		Repository:      deps.Repository,
		Idempotency:     deps.Idempotency,
		PermissionCache: deps.PermissionCache,
		Clock:           deps.Clock,
		IDGenerator:     deps.IDGenerator,
		IdempotencyTTL:  deps.IdempotencyTTL,
		Logger:          deps.Logger,
	}

	handler := httpadapter.Handler{
		CheckPermission: check,
		CheckBatch:      queries.CheckPermissionsBatchUseCase{CheckPermission: check},
		ListRoles:       queries.ListUserRolesUseCase{Repository: deps.Repository, Clock: deps.Clock},
		Roles:           roles,
		Logger:          deps.Logger,
	}
	return Module{Handler: handler}
}

// NewInMemoryModule keeps assignments, idempotency records and the
// permission cache in one memory store.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:      store,
		Idempotency:     store,
		PermissionCache: store,
		Clock:           store,
		IDGenerator:     store,
		Logger:          logger,
	})
	module.Store = store
	return module
}
