package model

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"podscope/internal/config"
	"podscope/internal/inspect"
	"podscope/internal/kube"
	"podscope/pkg/logging"
)

// DefaultKeyMap returns a KeyMap with the default bindings used by the TUI.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "navigate up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "navigate down"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous pane"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "attach to pod"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "detach/back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		NextNs: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next namespace"),
		),
		NextCtx: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "next context"),
		),
		Reanalyze: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "re-run analysis"),
		),
		CopyCmd: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy insight command"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "run kubectl command"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle log overlay"),
		),
		ModeExec: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "exec mode"),
		),
		ModeLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs mode"),
		),
		ModeDesc: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "describe mode"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh pods"),
		),
		FollowLogs: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle follow"),
		),
	}
}

// InitializeModel builds the initial TUI state. The inspect controllers
// are attached by the controller package once the program exists,
// because their notify callback posts messages into it.
func InitializeModel(cfg config.PodscopeConfig, logChannel <-chan logging.LogEntry) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	input := textinput.New()
	input.Placeholder = "kubectl get events"
	input.Prompt = ": "
	input.CharLimit = 512

	return &Model{
		Cfg:            cfg,
		Keys:           DefaultKeyMap(),
		Help:           help.New(),
		CurrentAppMode: ModeInitializing,
		Focus:          FocusPods,
		InspectMode:    inspect.ModeLogs,
		Follow:         cfg.Logs.FollowEnabled(),
		Health:         map[string]kube.NodeHealth{},
		Terminal:       NewTerminalSurface(),
		Spinner:        sp,
		OutputViewport: viewport.New(0, 0),
		CommandInput:   input,
		LogChannel:     logChannel,
	}
}

// Init implements the tea.Model contract via the controller wrapper.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.Spinner.Tick,
		DiscoverContextsCmd(m.Cfg.Kube.ConfigDir),
		PodRefreshTickCmd(),
		HealthTickCmd(),
	}
	if m.LogChannel != nil {
		cmds = append(cmds, WaitForLogEntryCmd(m.LogChannel))
	}
	return tea.Batch(cmds...)
}
