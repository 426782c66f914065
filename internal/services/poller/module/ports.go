package module

import "augeo/internal/services/poller/domain"

// Ports defines poller module ports exposed via the registry
type Ports struct {
	Poller  domain.PollerPort
	Worker  domain.WorkerPort
	Signals domain.SignalsPort
	States  domain.StatePort
}
