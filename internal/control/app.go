// Package control wires the engine's components into a runnable app.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/repcard/engine/internal/api"
	"github.com/repcard/engine/internal/core/config"
	"github.com/repcard/engine/internal/engine/flow"
	"github.com/repcard/engine/internal/engine/resolve"
	"github.com/repcard/engine/internal/engine/retry"
	"github.com/repcard/engine/internal/engine/submit"
	"github.com/repcard/engine/internal/infra/chain/evm"
	redisclient "github.com/repcard/engine/internal/infra/redis"
	"github.com/repcard/engine/internal/infra/rpc"
	"github.com/repcard/engine/internal/infra/rpc/provider"
	"github.com/repcard/engine/internal/infra/signer"
	"github.com/repcard/engine/internal/infra/storage"
	"github.com/repcard/engine/internal/infra/storage/memory"
	"github.com/repcard/engine/internal/infra/storage/postgres"
)

// App is the composed engine service.
type App struct {
	cfg       *config.AppConfig
	client    *rpc.Client
	ledger    *evm.Ledger
	agent     *signer.AgentSigner
	outcomes  storage.OutcomeRepository
	db        *postgres.DB
	guard     *redisclient.Guard
	flow      *flow.Flow
	apiServer *api.Server
	log       *slog.Logger

	group *errgroup.Group
}

// NewApp creates an App with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log := slog.Default()
	app := &App{cfg: cfg, log: log}

	// 1. Outcome storage: PostgreSQL when configured, memory otherwise.
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		app.db = db
		app.outcomes = postgres.NewOutcomeRepo(db)
		log.Info("Using PostgreSQL outcome storage")
	} else {
		app.outcomes = memory.NewOutcomeRepo()
		log.Info("Using memory outcome storage")
	}

	// 2. Duplicate-submission guard, optional.
	if cfg.Redis.URL != "" {
		guard, err := redisclient.NewGuard(cfg.Redis, 5*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis guard: %w", err)
		}
		app.guard = guard
		log.Info("Duplicate-submission guard enabled")
	}

	// 3. Ledger RPC providers, in configured preference order.
	providers := make([]provider.Provider, 0, len(cfg.Chain.Providers))
	for _, pc := range cfg.Chain.Providers {
		providers = append(providers, provider.NewHTTPProvider(pc.Name, pc.URL, pc.Timeout))
	}
	client, err := rpc.NewClient(providers, log)
	if err != nil {
		return nil, err
	}
	app.client = client

	// 4. Signer and chain adapter.
	app.agent = signer.NewAgent(cfg.Wallet.Account, cfg.Wallet.AgentURL, cfg.Wallet.Timeout)
	app.ledger = evm.NewLedger(client, app.agent, cfg.Chain.Adapter, log)

	// 5. Engine.
	policy := retry.Policy{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialDelay:    cfg.Retry.InitialDelay,
		MaxDelay:        cfg.Retry.MaxDelay,
		BackoffMultiple: cfg.Retry.BackoffMultiple,
	}
	flowCfg := flow.Config{
		Submitter: submit.New(app.ledger, log),
		Resolver:  resolve.New(app.ledger, log),
		Reader:    app.ledger,
		Recorder:  app.outcomes,
		Policy:    policy,
		Log:       log,
	}
	if app.guard != nil {
		flowCfg.Guard = app.guard
	}
	app.flow = flow.New(flowCfg)

	// 6. API surface.
	checks := map[string]api.HealthChecker{
		"ledger": func(ctx context.Context) error {
			if !app.ledger.Healthy() {
				return fmt.Errorf("no available rpc provider")
			}
			return nil
		},
	}
	if app.db != nil {
		checks["database"] = app.db.Health
	}
	app.apiServer = api.NewServer(app.flow, app.outcomes, checks, client.ProviderHealth, cfg.Server.Port)

	return app, nil
}

// Flow exposes the orchestrator for embedded callers.
func (a *App) Flow() *flow.Flow {
	return a.flow
}

// Outcomes exposes the outcome store for embedded callers.
func (a *App) Outcomes() storage.OutcomeRepository {
	return a.outcomes
}

// Start launches the API server.
func (a *App) Start(ctx context.Context) error {
	a.group = new(errgroup.Group)
	a.group.Go(func() error {
		a.log.Info("API server listening", "port", a.cfg.Server.Port)
		return a.apiServer.Start()
	})
	return nil
}

// Stop shuts everything down in reverse dependency order. Stopping the
// API server unblocks the serve goroutine, so Wait returns promptly.
func (a *App) Stop(ctx context.Context) error {
	if err := a.apiServer.Stop(ctx); err != nil {
		a.log.Warn("API server shutdown error", "error", err)
	}
	if a.group != nil {
		if err := a.group.Wait(); err != nil {
			a.log.Warn("API server error", "error", err)
		}
	}

	_ = a.agent.Close()
	if err := a.client.Close(); err != nil {
		a.log.Warn("RPC client close error", "error", err)
	}
	if a.guard != nil {
		_ = a.guard.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	return nil
}
