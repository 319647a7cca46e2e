package view

import (
	"fmt"
	"strings"

	"podscope/internal/inspect"
	"podscope/internal/tui/model"
)

func renderPodList(m *model.Model, width, height int) string {
	style := paneStyle
	if m.Focus == model.FocusPods {
		style = focusedPaneStyle
	}
	innerWidth := width - style.GetHorizontalFrameSize()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Pods (%d)", len(m.Pods))) + "\n")

	maxRows := height - style.GetVerticalFrameSize() - 1
	start := 0
	if maxRows > 0 && m.PodCursor >= maxRows {
		start = m.PodCursor - maxRows + 1
	}
	for i := start; i < len(m.Pods) && i-start < maxRows; i++ {
		pod := m.Pods[i]
		row := fmt.Sprintf("%s %s %s",
			PadRight(pod.Name, max(10, innerWidth-16)),
			PadRight(pod.Ready, 5),
			pod.Status)
		row = Truncate(row, innerWidth)
		if i == m.PodCursor {
			row = selectedRowStyle.Render(row)
		} else if pod.Status != "Running" && pod.Status != "Completed" {
			row = warningTextStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}
	if len(m.Pods) == 0 {
		b.WriteString(dimStyle.Render("no pods in " + m.CurrentNamespace()))
	}

	return style.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func renderModeTabs(m *model.Model) string {
	modes := []inspect.Mode{inspect.ModeExec, inspect.ModeLogs, inspect.ModeDescribe, inspect.ModeCommand}
	parts := make([]string, 0, len(modes))
	for _, mode := range modes {
		label := string(mode)
		if mode == inspect.ModeLogs && m.Follow {
			label += " (follow)"
		}
		if mode == m.InspectMode {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func renderOutput(m *model.Model, width, height int) string {
	style := paneStyle
	if m.Focus == model.FocusOutput {
		style = focusedPaneStyle
	}
	innerWidth := width - style.GetHorizontalFrameSize()
	innerHeight := height - style.GetVerticalFrameSize() - 1

	var b strings.Builder
	b.WriteString(renderModeTabs(m) + "\n")

	if m.CommandActive {
		b.WriteString(m.CommandInput.View() + "\n")
		innerHeight--
	}

	switch m.InspectMode {
	case inspect.ModeExec:
		b.WriteString(renderTerminal(m, innerWidth, innerHeight))
	default:
		b.WriteString(renderStreamLines(m, innerWidth, innerHeight))
	}

	return style.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}

func renderTerminal(m *model.Model, width, height int) string {
	state, reason := m.Session.State()
	switch state {
	case inspect.SessionIdle:
		return dimStyle.Render("press enter to open a shell in the selected pod")
	case inspect.SessionConnecting:
		return m.Spinner.View() + " connecting..."
	case inspect.SessionFailed:
		return errorTextStyle.Render("session failed: " + reason)
	}

	content := m.Terminal.Snapshot()
	lines := strings.Split(content, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for i, line := range lines {
		lines[i] = Truncate(line, width)
	}
	return strings.Join(lines, "\n")
}

func renderStreamLines(m *model.Model, width, height int) string {
	state, reason := m.Stream.State()
	if state == inspect.StreamIdle {
		return dimStyle.Render("press enter to inspect the selected pod")
	}
	if state == inspect.StreamLoading {
		return m.Spinner.View() + " loading..."
	}

	lines := m.Stream.Lines()
	var b strings.Builder
	start := 0
	if height > 0 && len(lines) > height {
		start = len(lines) - height
	}
	for _, line := range lines[start:] {
		text := Truncate(line.Text, width)
		switch line.Level {
		case inspect.LineError:
			text = errorTextStyle.Render(text)
		case inspect.LineWarning:
			text = warningTextStyle.Render(text)
		}
		b.WriteString(text + "\n")
	}
	if state == inspect.StreamFailed && len(lines) == 0 {
		b.WriteString(errorTextStyle.Render(reason))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderInsights(m *model.Model, width, height int) string {
	style := paneStyle
	if m.Focus == model.FocusInsights {
		style = focusedPaneStyle
	}
	innerWidth := width - style.GetHorizontalFrameSize()

	var b strings.Builder
	state, reason := m.Analysis.State()
	switch state {
	case inspect.AnalysisIdle:
		b.WriteString(titleStyle.Render("Insights") + "\n")
		b.WriteString(dimStyle.Render("analysis runs when new output completes"))
	case inspect.AnalysisStreaming:
		b.WriteString(titleStyle.Render("Insights") + "\n")
		b.WriteString(fmt.Sprintf("%s analyzing... (%d tokens)", m.Spinner.View(), m.Analysis.TokenCount()))
	case inspect.AnalysisFailed:
		b.WriteString(titleStyle.Render("Insights") + "\n")
		b.WriteString(errorTextStyle.Render(reason))
	case inspect.AnalysisDone:
		insights := m.Analysis.Insights()
		b.WriteString(titleStyle.Render(fmt.Sprintf("Insights (%d)", len(insights))) + "\n")
		if len(insights) == 0 {
			b.WriteString(successTextStyle.Render("nothing concerning found"))
		}
		for i, insight := range insights {
			title := Truncate(insight.Title, innerWidth-4)
			switch insight.Kind {
			case inspect.InsightCritical:
				title = criticalInsightStyle.Render("✗ " + title)
			case inspect.InsightWarning:
				title = warningInsightStyle.Render("⚠ " + title)
			default:
				title = suggestionInsightStyle.Render("➜ " + title)
			}
			if i == m.InsightCursor && m.Focus == model.FocusInsights {
				title = "› " + title
			} else {
				title = "  " + title
			}
			b.WriteString(title + "\n")
			b.WriteString("    " + Truncate(insight.Body, innerWidth-4) + "\n")
			if insight.Command != "" {
				b.WriteString("    " + commandHintStyle.Render(Truncate("$ "+insight.Command, innerWidth-4)) + "\n")
			}
		}
	}

	return style.Width(width - 2).Height(height - 2).Render(strings.TrimRight(b.String(), "\n"))
}
