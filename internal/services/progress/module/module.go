// Package module wires the progress service and exposes its ports
package module

import (
	"augeo/internal/modkit"
	"augeo/internal/modkit/httpkit"

	"augeo/internal/services/progress/domain"
	"augeo/internal/services/progress/service"
)

// Module defines the progress module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// Ports defines progress module ports exposed via the registry
type Ports struct {
	Applier domain.ApplierPort
	Reader  domain.ReaderPort
}

// New constructs the progress module
func New(deps modkit.Deps) *Module {
	svc := service.New(deps)
	m := &Module{deps: deps}
	m.ports = Ports{Applier: svc, Reader: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "progress" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// MountRoutes returns no HTTP routes for progress (read side is served
// by the ops module)
func (m *Module) MountRoutes(_ httpkit.Router) {}
