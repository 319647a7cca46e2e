package model

import (
	"strings"
	"sync"
)

// TerminalSurface is the render target of the exec session. The
// session controller writes from backend goroutines; the view reads a
// snapshot on every frame.
type TerminalSurface struct {
	mu      sync.Mutex
	content strings.Builder
}

// NewTerminalSurface creates an empty surface.
func NewTerminalSurface() *TerminalSurface {
	return &TerminalSurface{}
}

// Write appends raw session output.
func (s *TerminalSurface) Write(data string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content.WriteString(data)
}

// Clear discards the accumulated content.
func (s *TerminalSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content.Reset()
}

// Snapshot returns the current content.
func (s *TerminalSurface) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content.String()
}
