// Package module wires the poller service and exposes its ports
package module

import (
	"augeo/internal/modkit"
	"augeo/internal/modkit/httpkit"

	"augeo/internal/services/poller/domain"
	"augeo/internal/services/poller/service"
)

// Module defines the poller module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the poller module. Providers and the activity sink
// come from the caller so the module stays free of adapter imports
func New(deps modkit.Deps, providers []domain.ProviderPort, sink domain.ActivitySinkPort) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps, service.Config{
		MaxPages:            opts.MaxPages,
		DefaultPollInterval: opts.DefaultPollInterval,
		Tick:                opts.Tick,
		BatchSize:           opts.BatchSize,
		RetryBase:           opts.RetryBase,
		MaxAttempts:         opts.MaxAttempts,
	}, providers, sink)

	m := &Module{deps: deps}
	m.ports = Ports{
		Poller:  svc,
		Worker:  svc,
		Signals: svc,
		States:  svc.States,
	}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "poller" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for poller (it's a worker service)
func (m *Module) MountRoutes(_ httpkit.Router) {}
