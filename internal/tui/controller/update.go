package controller

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"podscope/internal/inspect"
	"podscope/internal/tui/model"
	"podscope/pkg/logging"
)

// Update is the central message routing function for the TUI. It
// receives all Bubble Tea messages, mutates the model and queues any
// follow-up commands.
func Update(msg tea.Msg, m *model.Model) (*model.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return handleResize(m, msg)

	case tea.KeyMsg:
		return handleKey(m, msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case model.ControllersChangedMsg:
		return handleControllersChanged(m)

	case model.ContextsDiscoveredMsg:
		return handleContextsDiscovered(m, msg)

	case model.NamespacesLoadedMsg:
		return handleNamespacesLoaded(m, msg)

	case model.PodsLoadedMsg:
		return handlePodsLoaded(m, msg)

	case model.ClusterHealthMsg:
		if msg.Err == nil {
			m.Health[msg.ContextName] = msg.Health
		}
		return m, nil

	case model.NewLogEntryMsg:
		m.AppendLogEntry(msg.Entry)
		return m, model.WaitForLogEntryCmd(m.LogChannel)

	case model.PodRefreshTickMsg:
		cmds := []tea.Cmd{model.PodRefreshTickCmd()}
		if kctx, ok := m.CurrentContext(); ok {
			cmds = append(cmds, model.LoadPodsCmd(kctx, m.CurrentNamespace()))
		}
		return m, tea.Batch(cmds...)

	case model.HealthTickMsg:
		cmds := []tea.Cmd{model.HealthTickCmd()}
		if kctx, ok := m.CurrentContext(); ok {
			cmds = append(cmds, model.ClusterHealthCmd(kctx))
		}
		return m, tea.Batch(cmds...)

	case model.InsightCopiedMsg:
		if msg.Err != nil {
			m.StatusMessage = "clipboard: " + msg.Err.Error()
		} else {
			m.StatusMessage = "copied: " + msg.Command
		}
		return m, nil
	}

	return m, nil
}

func handleResize(m *model.Model, msg tea.WindowSizeMsg) (*model.Model, tea.Cmd) {
	m.Width = msg.Width
	m.Height = msg.Height
	m.OutputViewport.Width = msg.Width - msg.Width/3 - 6
	m.OutputViewport.Height = msg.Height - 8
	m.Session.Resize(m.TerminalDims())
	return m, nil
}

func handleControllersChanged(m *model.Model) (*model.Model, tea.Cmd) {
	// Completed output is offered to the analyzer; it only runs when
	// the text is actually new for the mode.
	state, _ := m.Stream.State()
	if state == inspect.StreamComplete {
		mode := m.Stream.Mode()
		if mode == inspect.ModeLogs || mode == inspect.ModeDescribe {
			m.Analysis.MaybeAnalyze(m.Stream.Text(), mode)
		}
	}

	if insights := m.Analysis.Insights(); m.InsightCursor >= len(insights) {
		m.InsightCursor = 0
	}
	return m, nil
}

func handleContextsDiscovered(m *model.Model, msg model.ContextsDiscoveredMsg) (*model.Model, tea.Cmd) {
	if msg.Err != nil {
		m.FatalError = msg.Err.Error()
		m.CurrentAppMode = model.ModeBrowsing
		return m, nil
	}
	m.Contexts = msg.Contexts
	m.CurrentAppMode = model.ModeBrowsing
	if len(m.Contexts) == 0 {
		m.FatalError = "no kubeconfig contexts found"
		return m, nil
	}

	// Prefer the context marked active in its kubeconfig.
	for i, kctx := range m.Contexts {
		if kctx.IsActive {
			m.ContextCursor = i
			break
		}
	}

	kctx := m.Contexts[m.ContextCursor]
	return m, tea.Batch(
		model.LoadNamespacesCmd(kctx),
		model.ClusterHealthCmd(kctx),
	)
}

func handleNamespacesLoaded(m *model.Model, msg model.NamespacesLoadedMsg) (*model.Model, tea.Cmd) {
	kctx, ok := m.CurrentContext()
	if !ok || msg.ContextName != kctx.ContextName {
		return m, nil
	}
	if msg.Err != nil {
		m.StatusMessage = "namespaces: " + msg.Err.Error()
		return m, nil
	}
	m.Namespaces = msg.Namespaces
	if m.NamespaceCursor >= len(m.Namespaces) {
		m.NamespaceCursor = 0
	}
	return m, model.LoadPodsCmd(kctx, m.CurrentNamespace())
}

func handlePodsLoaded(m *model.Model, msg model.PodsLoadedMsg) (*model.Model, tea.Cmd) {
	kctx, ok := m.CurrentContext()
	if !ok || msg.ContextName != kctx.ContextName || msg.Namespace != m.CurrentNamespace() {
		return m, nil
	}
	if msg.Err != nil {
		m.StatusMessage = "pods: " + msg.Err.Error()
		return m, nil
	}
	m.Pods = msg.Pods
	if m.PodCursor >= len(m.Pods) {
		m.PodCursor = max(0, len(m.Pods)-1)
	}
	return m, nil
}

func handleKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	if m.CommandActive {
		return handleCommandInputKey(m, msg)
	}
	if m.InspectMode == inspect.ModeExec && m.Focus == model.FocusOutput {
		return handleTerminalKey(m, msg)
	}

	switch {
	case key.Matches(msg, m.Keys.Quit):
		return quit(m)

	case key.Matches(msg, m.Keys.ToggleLog):
		if m.CurrentAppMode == model.ModeLogOverlay {
			m.CurrentAppMode = model.ModeBrowsing
		} else {
			m.CurrentAppMode = model.ModeLogOverlay
		}
		return m, nil

	case key.Matches(msg, m.Keys.Help):
		if m.CurrentAppMode == model.ModeHelpOverlay {
			m.CurrentAppMode = model.ModeBrowsing
		} else {
			m.CurrentAppMode = model.ModeHelpOverlay
		}
		return m, nil

	case key.Matches(msg, m.Keys.Esc):
		if m.CurrentAppMode != model.ModeBrowsing {
			m.CurrentAppMode = model.ModeBrowsing
			return m, nil
		}
		detach(m)
		return m, nil

	case key.Matches(msg, m.Keys.Up):
		moveCursor(m, -1)
		return m, nil

	case key.Matches(msg, m.Keys.Down):
		moveCursor(m, 1)
		return m, nil

	case key.Matches(msg, m.Keys.Tab):
		m.Focus = nextFocus(m, m.Focus, 1)
		return m, nil

	case key.Matches(msg, m.Keys.ShiftTab):
		m.Focus = nextFocus(m, m.Focus, -1)
		return m, nil

	case key.Matches(msg, m.Keys.Enter):
		return m, attach(m)

	case key.Matches(msg, m.Keys.ModeExec):
		return switchMode(m, inspect.ModeExec)

	case key.Matches(msg, m.Keys.ModeLogs):
		return switchMode(m, inspect.ModeLogs)

	case key.Matches(msg, m.Keys.ModeDesc):
		return switchMode(m, inspect.ModeDescribe)

	case key.Matches(msg, m.Keys.Command):
		m.CommandActive = true
		m.CommandInput.Focus()
		return m, nil

	case key.Matches(msg, m.Keys.FollowLogs):
		m.Follow = !m.Follow
		if m.InspectMode == inspect.ModeLogs && attached(m) {
			return m, attach(m)
		}
		return m, nil

	case key.Matches(msg, m.Keys.NextNs):
		return cycleNamespace(m)

	case key.Matches(msg, m.Keys.NextCtx):
		return cycleContext(m)

	case key.Matches(msg, m.Keys.Reanalyze):
		if text := m.Stream.Text(); text != "" {
			m.Analysis.Analyze(text, m.Stream.Mode())
		}
		return m, nil

	case key.Matches(msg, m.Keys.CopyCmd):
		return copySelectedInsight(m)

	case key.Matches(msg, m.Keys.Refresh):
		if kctx, ok := m.CurrentContext(); ok {
			return m, model.LoadPodsCmd(kctx, m.CurrentNamespace())
		}
		return m, nil
	}

	return m, nil
}

func handleCommandInputKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.CommandActive = false
		m.CommandInput.Blur()
		return m, nil
	case tea.KeyEnter:
		command := m.CommandInput.Value()
		m.CommandActive = false
		m.CommandInput.Blur()
		if command == "" {
			return m, nil
		}
		target, ok := m.CurrentTarget()
		if !ok {
			m.StatusMessage = "select a pod first"
			return m, nil
		}
		m.InspectMode = inspect.ModeCommand
		m.Session.Close()
		m.Analysis.ResetTrigger()
		if err := m.Stream.Run(target, inspect.RunOptions{Mode: inspect.ModeCommand, Command: command}); err != nil {
			m.StatusMessage = err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.CommandInput, cmd = m.CommandInput.Update(msg)
	return m, cmd
}

// handleTerminalKey forwards keys to the exec session. Esc returns
// focus to the pod list; everything else goes to the shell raw.
func handleTerminalKey(m *model.Model, msg tea.KeyMsg) (*model.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.Focus = model.FocusPods
		return m, nil
	}
	m.Session.SendKeystroke(keyBytes(msg))
	return m, nil
}

// keyBytes translates a bubbletea key event into the byte sequence a
// PTY expects.
func keyBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyEnter:
		return []byte("\r")
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyTab:
		return []byte("\t")
	case tea.KeySpace:
		return []byte(" ")
	case tea.KeyCtrlC:
		return []byte{0x03}
	case tea.KeyCtrlD:
		return []byte{0x04}
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	default:
		return []byte(string(msg.Runes))
	}
}

func quit(m *model.Model) (*model.Model, tea.Cmd) {
	m.CurrentAppMode = model.ModeQuitting
	m.Session.Close()
	m.Stream.Cancel()
	m.Analysis.Cancel()
	logging.Info("TUI", "shutting down")
	return m, tea.Quit
}

// attach points the controllers at the current selection. Reconcile is
// a no-op when the target and options are unchanged.
func attach(m *model.Model) tea.Cmd {
	target, ok := m.CurrentTarget()
	if !ok {
		m.StatusMessage = "select a pod first"
		return nil
	}

	switch m.InspectMode {
	case inspect.ModeExec:
		m.Stream.Cancel()
		m.Analysis.Cancel()
		if err := m.Session.Reconcile(target, m.TerminalDims()); err != nil {
			m.StatusMessage = err.Error()
			return nil
		}
		m.Focus = model.FocusOutput

	case inspect.ModeCommand:
		m.CommandActive = true
		m.CommandInput.Focus()

	default:
		m.Session.Close()
		opts := inspect.RunOptions{Mode: m.InspectMode}
		if m.InspectMode == inspect.ModeLogs {
			tail := m.Cfg.Logs.TailLines
			opts.TailLines = &tail
			opts.Follow = m.Follow
		}
		if err := m.Stream.Reconcile(target, opts); err != nil {
			m.StatusMessage = err.Error()
		}
	}
	return nil
}

func attached(m *model.Model) bool {
	sessionState, _ := m.Session.State()
	streamState, _ := m.Stream.State()
	return sessionState != inspect.SessionIdle || streamState != inspect.StreamIdle
}

// detach releases everything attached to the current pod.
func detach(m *model.Model) {
	m.Session.Close()
	m.Stream.Cancel()
	m.Analysis.Cancel()
	m.Analysis.ResetTrigger()
	m.Terminal.Clear()
	m.Focus = model.FocusPods
}

func switchMode(m *model.Model, mode inspect.Mode) (*model.Model, tea.Cmd) {
	if m.InspectMode == mode {
		return m, nil
	}
	m.InspectMode = mode
	// Switching mode resets the analysis trigger so the same output is
	// analyzed fresh under the new mode.
	m.Analysis.ResetTrigger()
	if attached(m) {
		return m, attach(m)
	}
	return m, nil
}

func moveCursor(m *model.Model, delta int) {
	switch m.Focus {
	case model.FocusPods:
		if len(m.Pods) == 0 {
			return
		}
		m.PodCursor = clamp(m.PodCursor+delta, 0, len(m.Pods)-1)
	case model.FocusInsights:
		insights := m.Analysis.Insights()
		if len(insights) == 0 {
			return
		}
		m.InsightCursor = clamp(m.InsightCursor+delta, 0, len(insights)-1)
	}
}

func cycleNamespace(m *model.Model) (*model.Model, tea.Cmd) {
	if len(m.Namespaces) == 0 {
		return m, nil
	}
	detach(m)
	m.NamespaceCursor = (m.NamespaceCursor + 1) % len(m.Namespaces)
	m.PodCursor = 0
	m.Pods = nil
	if kctx, ok := m.CurrentContext(); ok {
		return m, model.LoadPodsCmd(kctx, m.CurrentNamespace())
	}
	return m, nil
}

func cycleContext(m *model.Model) (*model.Model, tea.Cmd) {
	if len(m.Contexts) == 0 {
		return m, nil
	}
	detach(m)
	m.ContextCursor = (m.ContextCursor + 1) % len(m.Contexts)
	m.NamespaceCursor = 0
	m.PodCursor = 0
	m.Namespaces = nil
	m.Pods = nil
	kctx := m.Contexts[m.ContextCursor]
	return m, tea.Batch(
		model.LoadNamespacesCmd(kctx),
		model.ClusterHealthCmd(kctx),
	)
}

func copySelectedInsight(m *model.Model) (*model.Model, tea.Cmd) {
	insights := m.Analysis.Insights()
	if len(insights) == 0 || m.InsightCursor >= len(insights) {
		return m, nil
	}
	command := insights[m.InsightCursor].Command
	if command == "" {
		m.StatusMessage = "selected insight has no command"
		return m, nil
	}
	return m, model.CopyInsightCommandCmd(command)
}

func nextFocus(m *model.Model, focus model.FocusPane, delta int) model.FocusPane {
	panes := []model.FocusPane{model.FocusPods, model.FocusOutput}
	if m.InspectMode == inspect.ModeLogs || m.InspectMode == inspect.ModeDescribe {
		panes = append(panes, model.FocusInsights)
	}
	for i, p := range panes {
		if p == focus {
			return panes[(i+delta+len(panes))%len(panes)]
		}
	}
	return model.FocusPods
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
