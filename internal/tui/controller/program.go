package controller

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"podscope/internal/ai"
	"podscope/internal/backend"
	"podscope/internal/config"
	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/internal/tui/model"
	"podscope/pkg/logging"
)

// NewProgram wires the bus, backend, analysis client and inspect
// controllers together and returns a ready-to-run Bubble Tea program.
func NewProgram(cfg config.PodscopeConfig, logChannel <-chan logging.LogEntry) *tea.Program {
	bus := events.NewBus()
	svc := backend.NewService(bus)
	analyzer := ai.NewClient(cfg.AI, bus)

	m := model.InitializeModel(cfg, logChannel)

	// The controllers notify redraws by posting into the program, which
	// does not exist yet at construction time.
	var mu sync.Mutex
	var program *tea.Program
	notify := func() {
		mu.Lock()
		p := program
		mu.Unlock()
		if p != nil {
			p.Send(model.ControllersChangedMsg{})
		}
	}

	m.Session = inspect.NewSessionController(bus, svc, m.Terminal, notify)
	m.Stream = inspect.NewStreamedOutputController(bus, svc, notify)
	m.Analysis = inspect.NewAnalysisController(bus, analyzer, notify)

	p := tea.NewProgram(NewAppModel(m), tea.WithAltScreen())
	mu.Lock()
	program = p
	mu.Unlock()
	return p
}
