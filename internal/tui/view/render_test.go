package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"podscope/internal/config"
	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/internal/kube"
	"podscope/internal/tui/model"
)

type stubSessionBackend struct{}

func (stubSessionBackend) StartSession(inspect.Target, int, int) error { return nil }
func (stubSessionBackend) SendInput([]byte) error                     { return nil }
func (stubSessionBackend) ResizeSession(int, int) error               { return nil }
func (stubSessionBackend) StopSession() error                         { return nil }

type stubOutputBackend struct{}

func (stubOutputBackend) Describe(context.Context, inspect.Target) (string, error) {
	return "", nil
}
func (stubOutputBackend) StreamLogs(context.Context, inspect.Target, inspect.LogOptions) error {
	return nil
}
func (stubOutputBackend) RunCommand(context.Context, inspect.Target, string) error {
	return nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Analyze(context.Context, string, string) error { return nil }

func renderableModel() *model.Model {
	bus := events.NewBus()
	m := model.InitializeModel(config.GetDefaultConfig(), nil)
	m.Session = inspect.NewSessionController(bus, stubSessionBackend{}, m.Terminal, nil)
	m.Stream = inspect.NewStreamedOutputController(bus, stubOutputBackend{}, nil)
	m.Analysis = inspect.NewAnalysisController(bus, stubAnalyzer{}, nil)
	m.CurrentAppMode = model.ModeBrowsing
	m.Width, m.Height = 120, 40
	m.Contexts = []kube.Context{{DisplayName: "prod", ContextName: "prod-ctx", SourceFile: "/tmp/kc"}}
	m.Namespaces = []string{"prod"}
	m.Pods = []kube.PodSummary{
		{Name: "api-7f", Namespace: "prod", Status: "Running", Ready: "1/1"},
		{Name: "worker-1", Namespace: "prod", Status: "CrashLoopBackOff", Ready: "0/1"},
	}
	m.Health = map[string]kube.NodeHealth{"prod-ctx": {ReadyNodes: 3, TotalNodes: 3}}
	return m
}

func TestRender_Dashboard(t *testing.T) {
	m := renderableModel()
	out := Render(m)

	assert.Contains(t, out, "podscope")
	assert.Contains(t, out, "api-7f")
	assert.Contains(t, out, "worker-1")
	assert.Contains(t, out, "Pods (2)")
}

func TestRender_InitializingBeforeWindowSize(t *testing.T) {
	m := renderableModel()
	m.CurrentAppMode = model.ModeInitializing
	m.Width, m.Height = 0, 0

	assert.Contains(t, Render(m), "Initializing")
}

func TestRender_QuittingMessage(t *testing.T) {
	m := renderableModel()
	m.CurrentAppMode = model.ModeQuitting
	assert.Contains(t, Render(m), "Shutting down")
}

func TestRender_HelpOverlayListsKeys(t *testing.T) {
	m := renderableModel()
	m.CurrentAppMode = model.ModeHelpOverlay
	out := Render(m)

	assert.Contains(t, out, "exec / logs / describe")
	assert.Contains(t, out, "quit")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hell…", Truncate("hello world", 5))
	assert.Equal(t, "", Truncate("hello", 0))
	// Wide runes count as two cells.
	assert.Equal(t, "日…", Truncate("日本語", 4))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab  ", PadRight("ab", 4))
	assert.Equal(t, "ab…", PadRight("abcd", 3))
}
