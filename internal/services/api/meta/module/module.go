// Package module wires the ops endpoints into the internal HTTP server
package module

import (
	"time"

	"augeo/internal/modkit"
	"augeo/internal/modkit/httpkit"

	metahttp "augeo/internal/services/api/meta/http"
	pollerdom "augeo/internal/services/poller/domain"
	progressdom "augeo/internal/services/progress/domain"
)

// Module implements the modkit.Module interface
type Module struct {
	deps      modkit.Deps
	states    pollerdom.StatePort
	signals   pollerdom.SignalsPort
	reader    progressdom.ReaderPort
	providers map[pollerdom.Provider]pollerdom.ProviderPort
	startedAt time.Time
}

// New constructs the ops module
func New(
	deps modkit.Deps,
	states pollerdom.StatePort,
	signals pollerdom.SignalsPort,
	reader progressdom.ReaderPort,
	providers []pollerdom.ProviderPort,
) *Module {
	byName := make(map[pollerdom.Provider]pollerdom.ProviderPort, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Module{
		deps:      deps,
		states:    states,
		signals:   signals,
		reader:    reader,
		providers: byName,
		startedAt: time.Now(),
	}
}

// Name returns the module name
func (m *Module) Name() string { return "meta" }

// Ports returns no registry ports; the ops surface is HTTP only
func (m *Module) Ports() any { return nil }

// MountRoutes mounts the ops routes under /meta
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route("/meta", func(rr httpkit.Router) {
		metahttp.Register(rr, metahttp.Deps{
			ServiceName: "augeo-poller",
			StartedAt:   m.startedAt,
			PG:          m.deps.PG,
			CH:          m.deps.CH,
			States:      m.states,
			Signals:     m.signals,
			Reader:      m.reader,
			Providers:   m.providers,
		})
	})
}
