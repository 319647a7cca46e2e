package model

import (
	"podscope/internal/config"
	"podscope/internal/inspect"
	"podscope/internal/kube"
	"podscope/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// AppMode represents the current mode of the application
type AppMode int

const (
	ModeInitializing AppMode = iota
	ModeBrowsing
	ModeLogOverlay
	ModeHelpOverlay
	ModeQuitting
)

// String provides a human-readable representation of the AppMode.
func (m AppMode) String() string {
	switch m {
	case ModeInitializing:
		return "Initializing"
	case ModeBrowsing:
		return "Browsing"
	case ModeLogOverlay:
		return "LogOverlay"
	case ModeHelpOverlay:
		return "HelpOverlay"
	case ModeQuitting:
		return "Quitting"
	default:
		return "Unknown"
	}
}

// FocusPane identifies which pane receives navigation keys.
type FocusPane int

const (
	FocusPods FocusPane = iota
	FocusOutput
	FocusInsights
)

// maxLogEntries bounds the in-memory debug log ring.
const maxLogEntries = 200

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Enter      key.Binding
	Esc        key.Binding
	Quit       key.Binding
	Help       key.Binding
	NextNs     key.Binding
	NextCtx    key.Binding
	Reanalyze  key.Binding
	CopyCmd    key.Binding
	Command    key.Binding
	ToggleLog  key.Binding
	ModeExec   key.Binding
	ModeLogs   key.Binding
	ModeDesc   key.Binding
	Refresh    key.Binding
	FollowLogs key.Binding
}

// Model is the complete TUI state. The inspect controllers it embeds
// are shared with backend goroutines; everything else is owned by the
// bubbletea update loop.
type Model struct {
	Cfg    config.PodscopeConfig
	Keys   KeyMap
	Help   help.Model
	Width  int
	Height int

	CurrentAppMode AppMode
	Focus          FocusPane
	StatusMessage  string
	FatalError     string

	Contexts      []kube.Context
	ContextCursor int
	Health        map[string]kube.NodeHealth

	Namespaces      []string
	NamespaceCursor int

	Pods      []kube.PodSummary
	PodCursor int

	InspectMode inspect.Mode
	Follow      bool

	Session  *inspect.SessionController
	Stream   *inspect.StreamedOutputController
	Analysis *inspect.AnalysisController
	Terminal *TerminalSurface

	InsightCursor int

	Spinner        spinner.Model
	OutputViewport viewport.Model
	CommandInput   textinput.Model
	CommandActive  bool

	LogChannel <-chan logging.LogEntry
	LogEntries []logging.LogEntry
}

// CurrentContext returns the selected kubeconfig context, if any.
func (m *Model) CurrentContext() (kube.Context, bool) {
	if len(m.Contexts) == 0 || m.ContextCursor >= len(m.Contexts) {
		return kube.Context{}, false
	}
	return m.Contexts[m.ContextCursor], true
}

// CurrentNamespace returns the selected namespace, defaulting to
// "default" before the namespace list has loaded.
func (m *Model) CurrentNamespace() string {
	if len(m.Namespaces) == 0 || m.NamespaceCursor >= len(m.Namespaces) {
		return "default"
	}
	return m.Namespaces[m.NamespaceCursor]
}

// CurrentPod returns the selected pod, if any.
func (m *Model) CurrentPod() (kube.PodSummary, bool) {
	if len(m.Pods) == 0 || m.PodCursor >= len(m.Pods) {
		return kube.PodSummary{}, false
	}
	return m.Pods[m.PodCursor], true
}

// CurrentTarget resolves the selection into an inspection target.
func (m *Model) CurrentTarget() (inspect.Target, bool) {
	ctx, ok := m.CurrentContext()
	if !ok {
		return inspect.Target{}, false
	}
	pod, ok := m.CurrentPod()
	if !ok {
		return inspect.Target{}, false
	}
	return inspect.Target{
		PodName:     pod.Name,
		Namespace:   pod.Namespace,
		SourceFile:  ctx.SourceFile,
		ContextName: ctx.ContextName,
	}, true
}

// TerminalDims returns the viewport dimensions for the exec session.
func (m *Model) TerminalDims() inspect.Dimensions {
	cols := m.OutputViewport.Width
	rows := m.OutputViewport.Height
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	return inspect.Dimensions{Columns: cols, Rows: rows}
}

// AppendLogEntry records a debug log line, trimming the ring.
func (m *Model) AppendLogEntry(entry logging.LogEntry) {
	m.LogEntries = append(m.LogEntries, entry)
	if len(m.LogEntries) > maxLogEntries {
		m.LogEntries = m.LogEntries[len(m.LogEntries)-maxLogEntries:]
	}
}
