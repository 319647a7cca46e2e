package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"podscope/internal/inspect"
	"podscope/internal/tui/model"
)

// Render renders the UI according to the current model state.
func Render(m *model.Model) string {
	switch m.CurrentAppMode {
	case model.ModeQuitting:
		return dimStyle.Render("Shutting down...")
	case model.ModeInitializing:
		if m.Width == 0 || m.Height == 0 {
			return dimStyle.Render("Initializing... (waiting for window size)")
		}
		return dimStyle.Render(m.Spinner.View() + " Discovering kubeconfig contexts...")
	}

	if m.FatalError != "" {
		return appStyle.Render(errorTextStyle.Render("podscope: " + m.FatalError))
	}

	contentWidth := m.Width - appStyle.GetHorizontalFrameSize()
	contentHeight := m.Height - appStyle.GetVerticalFrameSize()

	header := renderHeader(m, contentWidth)
	statusBar := renderStatusBar(m, contentWidth)

	bodyHeight := contentHeight - lipgloss.Height(header) - lipgloss.Height(statusBar) - 1

	var body string
	switch m.CurrentAppMode {
	case model.ModeLogOverlay:
		body = renderLogOverlay(m, contentWidth, bodyHeight)
	case model.ModeHelpOverlay:
		body = renderHelpOverlay(m, contentWidth, bodyHeight)
	default:
		body = renderDashboard(m, contentWidth, bodyHeight)
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar))
}

func renderHeader(m *model.Model, width int) string {
	title := titleStyle.Render("podscope")

	contextPart := "no kubeconfig contexts"
	if kctx, ok := m.CurrentContext(); ok {
		contextPart = fmt.Sprintf("%s · %s", kctx.DisplayName, m.CurrentNamespace())
		if health, ok := m.Health[kctx.ContextName]; ok {
			nodes := fmt.Sprintf(" · nodes %d/%d", health.ReadyNodes, health.TotalNodes)
			if health.ReadyNodes == health.TotalNodes {
				contextPart += successTextStyle.Render(nodes)
			} else {
				contextPart += warningTextStyle.Render(nodes)
			}
		}
	}

	line := title + "  " + dimStyle.Render(Truncate(contextPart, max(0, width-lipgloss.Width(title)-2)))
	return line
}

func renderDashboard(m *model.Model, width, height int) string {
	listWidth := width / 3
	if listWidth > 44 {
		listWidth = 44
	}
	if listWidth < 24 {
		listWidth = 24
	}
	rightWidth := width - listWidth - 2

	podPane := renderPodList(m, listWidth, height)

	insightsHeight := 0
	if m.InspectMode == inspect.ModeLogs || m.InspectMode == inspect.ModeDescribe {
		insightsHeight = height / 3
		if insightsHeight < 6 {
			insightsHeight = 6
		}
	}
	outputHeight := height - insightsHeight

	outputPane := renderOutput(m, rightWidth, outputHeight)
	right := outputPane
	if insightsHeight > 0 {
		right = lipgloss.JoinVertical(lipgloss.Left, outputPane, renderInsights(m, rightWidth, insightsHeight))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, podPane, right)
}

func renderStatusBar(m *model.Model, width int) string {
	left := m.StatusMessage
	if left == "" {
		left = modeHint(m)
	}
	hints := "e/l/d modes · : command · a analyze · y copy · L log · q quit"
	gap := width - lipgloss.Width(left) - lipgloss.Width(hints)
	if gap < 1 {
		return statusBarStyle.Width(max(0, width)).Render(Truncate(left, max(0, width)))
	}
	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + hints)
}

func modeHint(m *model.Model) string {
	if pod, ok := m.CurrentPod(); ok {
		return fmt.Sprintf("%s · %s", pod.Name, pod.Status)
	}
	return "select a pod"
}

func renderLogOverlay(m *model.Model, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Debug log") + "\n")

	entries := m.LogEntries
	maxLines := height - 3
	if maxLines > 0 && len(entries) > maxLines {
		entries = entries[len(entries)-maxLines:]
	}
	for _, entry := range entries {
		line := fmt.Sprintf("%s [%s] %s: %s",
			entry.Timestamp.Format("15:04:05"), entry.Level, entry.Subsystem, entry.Message)
		b.WriteString(Truncate(line, width-4) + "\n")
	}
	return paneStyle.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func renderHelpOverlay(m *model.Model, width, height int) string {
	rows := [][2]string{
		{"↑/k ↓/j", "navigate pods"},
		{"enter", "attach to selected pod"},
		{"e / l / d", "exec / logs / describe mode"},
		{":", "run a kubectl command against the pod"},
		{"f", "toggle log follow"},
		{"n / c", "cycle namespace / context"},
		{"a", "re-run analysis on current output"},
		{"y", "copy selected insight's command"},
		{"tab", "cycle pane focus"},
		{"r", "refresh pod list"},
		{"L", "toggle debug log overlay"},
		{"esc", "detach from pod / close overlay"},
		{"q / ctrl+c", "quit"},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys") + "\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n", PadRight(row[0], 12), dimStyle.Render(row[1])))
	}
	return paneStyle.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}
