// Package backend implements the command surface the inspect
// controllers drive: interactive exec sessions, log streams, describe
// calls and raw kubectl commands. Results stream back over the event
// bus; nothing here blocks the caller beyond initial setup.
package backend

import (
	"os/exec"
	"sync"

	"podscope/internal/events"
)

// kubectlPath resolves the kubectl binary once. Falls back to the bare
// name so PATH resolution happens at spawn time if LookPath fails.
var kubectlPath = func() string {
	if path, err := exec.LookPath("kubectl"); err == nil {
		return path
	}
	return "kubectl"
}

// Service executes cluster operations and publishes their output on
// the bus. One Service instance owns at most one live exec session.
type Service struct {
	bus *events.Bus

	mu      sync.Mutex
	session *ptySession
}

// NewService creates a backend service publishing on the given bus.
func NewService(bus *events.Bus) *Service {
	return &Service{bus: bus}
}

// Bus returns the event bus this service publishes on.
func (s *Service) Bus() *events.Bus {
	return s.bus
}
