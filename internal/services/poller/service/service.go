// Package service contains the poll cycle orchestration and scheduler
package service

import (
	"time"

	"augeo/internal/modkit"
	"augeo/internal/modkit/repokit"
	"augeo/internal/services/poller/domain"
	"augeo/internal/services/poller/repo"
)

// Service defines the poller service contract
type Service interface {
	domain.PollerPort
	domain.WorkerPort
	domain.SignalsPort
}

// Config carries runtime knobs for the poll cycle and the scheduler
type Config struct {
	// MaxPages caps pagination depth within one poll cycle; the cursor
	// persists so the next cycle resumes where this one stopped
	MaxPages int

	// DefaultPollInterval applies when the provider requests no cadence
	DefaultPollInterval time.Duration

	// Scheduler knobs. After MaxAttempts consecutive failures the
	// subscription is parked: retried on a long fixed cadence instead
	// of the exponential ladder until a poll succeeds again
	Tick        time.Duration
	BatchSize   int
	RetryBase   time.Duration
	MaxAttempts int
}

// Svc implements the poller service
type Svc struct {
	deps      modkit.Deps
	config    Config
	providers map[domain.Provider]domain.ProviderPort
	sink      domain.ActivitySinkPort

	States domain.StatePort
	binder repokit.Binder[domain.StatePort]
	db     repokit.TxRunner

	now func() time.Time
}

// New constructs a poller service. Providers are keyed by their Name;
// sink may be nil when scored activities have nowhere to go yet
func New(deps modkit.Deps, cfg Config, providers []domain.ProviderPort, sink domain.ActivitySinkPort) *Svc {
	if deps.PG == nil {
		panic("poller.Service requires a non nil TxRunner")
	}
	cfg = withDefaults(cfg)

	pm := make(map[domain.Provider]domain.ProviderPort, len(providers))
	for _, p := range providers {
		pm[p.Name()] = p
	}

	b := repo.NewPG()
	return &Svc{
		deps:      deps,
		config:    cfg,
		providers: pm,
		sink:      sink,
		States:    b.Bind(deps.PG),
		binder:    b,
		db:        deps.PG,
		now:       time.Now,
	}
}

func withDefaults(cfg Config) Config {
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	if cfg.DefaultPollInterval <= 0 {
		cfg.DefaultPollInterval = time.Minute
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 500 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return cfg
}
