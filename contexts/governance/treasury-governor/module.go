package treasurygovernor

import (
	"log/slog"
	"time"

	httpadapter "commonwealth/contexts/governance/treasury-governor/adapters/http"
	"commonwealth/contexts/governance/treasury-governor/adapters/memory"
	"commonwealth/contexts/governance/treasury-governor/application/commands"
	"commonwealth/contexts/governance/treasury-governor/application/queries"
	"commonwealth/contexts/governance/treasury-governor/application/workers"
	"commonwealth/contexts/governance/treasury-governor/domain/services"
	"commonwealth/contexts/governance/treasury-governor/ports"
)

// Module is the treasury-governor composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Auditor workers.LedgerAuditor
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Ledger         ports.LedgerStore
	Oracle         ports.PermissionOracle
	Transfers      ports.ValueTransfer
	Events         ports.EventSink
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	Heights        ports.HeightSource
	IDGen          ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	staking := commands.StakingUseCase{
		Store:          deps.Ledger,
		Transfers:      deps.Transfers,
		Events:         deps.Events,
		Idempotency:    deps.Idempotency,
		IdempotencyTTL: deps.IdempotencyTTL,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
	}
	treasury := commands.TreasuryUseCase{
		Store:          deps.Ledger,
		Oracle:         deps.Oracle,
		Transfers:      deps.Transfers,
		Events:         deps.Events,
		Idempotency:    deps.Idempotency,
		IdempotencyTTL: deps.IdempotencyTTL,
		Clock:          deps.Clock,
		IDGen:          deps.IDGen,
		Logger:         deps.Logger,
	}
	proposals := commands.ProposalUseCase{
		Store:     deps.Ledger,
		Oracle:    deps.Oracle,
		Transfers: deps.Transfers,
		Events:    deps.Events,
		Clock:     deps.Clock,
		Heights:   deps.Heights,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	params := commands.ParamsUseCase{
		Store:  deps.Ledger,
		Oracle: deps.Oracle,
		Events: deps.Events,
		Clock:  deps.Clock,
		IDGen:  deps.IDGen,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Staking:   staking,
			Treasury:  treasury,
			Proposals: proposals,
			Params:    params,
			Queries: queries.GovernanceQueries{
				Store:   deps.Ledger,
				Heights: deps.Heights,
			},
			Logger: deps.Logger,
		},
		Auditor: workers.LedgerAuditor{Store: deps.Ledger, Logger: deps.Logger},
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. Capabilities must be granted on the returned Store unless an
// oracle is supplied.
func NewInMemoryModule(cfg services.GovernanceConfig, oracle ports.PermissionOracle, logger *slog.Logger) Module {
	store := memory.NewStore(cfg)
	if oracle == nil {
		oracle = store
	}
	module := NewModule(Dependencies{
		Ledger:         store,
		Oracle:         oracle,
		Transfers:      store,
		Events:         store,
		Idempotency:    store,
		Clock:          store,
		Heights:        store,
		IDGen:          store,
		IdempotencyTTL: 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
