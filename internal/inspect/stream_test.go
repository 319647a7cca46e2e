package inspect

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscope/internal/events"
)

type mockOutputBackend struct {
	mu           sync.Mutex
	bus          *events.Bus
	subsAtCall   int
	describeText string
	describeErr  error
	streamResult chan error // nil channel means immediate success
	commandErr   error
	streamCalls  int
	lastLogOpts  LogOptions
	lastCommand  string
	streamCtx    context.Context
	called       chan string
}

func newMockOutputBackend(bus *events.Bus) *mockOutputBackend {
	return &mockOutputBackend{bus: bus, called: make(chan string, 8)}
}

func (m *mockOutputBackend) Describe(_ context.Context, _ Target) (string, error) {
	m.called <- "describe"
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.describeText, m.describeErr
}

func (m *mockOutputBackend) StreamLogs(ctx context.Context, _ Target, opts LogOptions) error {
	m.mu.Lock()
	m.streamCalls++
	m.subsAtCall = m.bus.GetMetrics().ActiveSubscriptions
	m.lastLogOpts = opts
	m.streamCtx = ctx
	result := m.streamResult
	m.mu.Unlock()

	m.called <- "logs"
	if result != nil {
		return <-result
	}
	return nil
}

func (m *mockOutputBackend) RunCommand(_ context.Context, _ Target, command string) error {
	m.mu.Lock()
	m.subsAtCall = m.bus.GetMetrics().ActiveSubscriptions
	m.lastCommand = command
	err := m.commandErr
	m.mu.Unlock()

	m.called <- "command"
	return err
}

func (m *mockOutputBackend) waitCalled(t *testing.T, want string) {
	t.Helper()
	select {
	case got := <-m.called:
		require.Equal(t, want, got)
	case <-time.After(time.Second):
		t.Fatalf("backend %s was never called", want)
	}
}

func newStreamFixture(t *testing.T) (*StreamedOutputController, *mockOutputBackend, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	backend := newMockOutputBackend(bus)
	ctrl := NewStreamedOutputController(bus, backend, nil)
	return ctrl, backend, bus
}

func logOpts(tail int64, follow bool) RunOptions {
	return RunOptions{Mode: ModeLogs, TailLines: &tail, Follow: follow}
}

func TestStreamedOutputController_LogsScenario(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	target := testTarget
	target.PodName = "api-7f"
	require.NoError(t, ctrl.Run(target, logOpts(100, true)))
	backend.waitCalled(t, "logs")

	backend.mu.Lock()
	require.NotNil(t, backend.lastLogOpts.TailLines)
	assert.Equal(t, int64(100), *backend.lastLogOpts.TailLines)
	assert.True(t, backend.lastLogOpts.Follow)
	backend.mu.Unlock()

	bus.Publish(events.TopicLogLine, "starting")
	bus.Publish(events.TopicLogLine, "WARNING: backoff retry")
	bus.Publish(events.TopicLogLine, "ERROR: panic: nil pointer")

	lines := ctrl.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Text: "starting", Level: LineNone}, lines[0])
	assert.Equal(t, Line{Text: "WARNING: backoff retry", Level: LineWarning}, lines[1])
	assert.Equal(t, Line{Text: "ERROR: panic: nil pointer", Level: LineError}, lines[2])

	state, _ := ctrl.State()
	assert.Equal(t, StreamStreaming, state)

	bus.Publish(events.TopicLogDone, nil)
	state, _ = ctrl.State()
	assert.Equal(t, StreamComplete, state)
	assert.Equal(t, 0, bus.GetMetrics().ActiveSubscriptions)
}

func TestStreamedOutputController_SubscribeBeforeTrigger(t *testing.T) {
	ctrl, backend, _ := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, false)))
	backend.waitCalled(t, "logs")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 3, backend.subsAtCall, "line, error and done listeners must be registered before the stream request")
}

func TestStreamedOutputController_RequestFailureShownInline(t *testing.T) {
	ctrl, backend, _ := newStreamFixture(t)
	backend.streamResult = make(chan error, 1)
	backend.streamResult <- errors.New(`pods "api-7f" not found`)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, false)))

	assert.Eventually(t, func() bool {
		state, _ := ctrl.State()
		return state == StreamFailed
	}, time.Second, 5*time.Millisecond)

	_, reason := ctrl.State()
	assert.Equal(t, `pods "api-7f" not found`, reason)
	lines := ctrl.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, LineError, lines[0].Level)
	assert.Contains(t, lines[0].Text, "not found")
}

func TestStreamedOutputController_StaleStartFailureDropped(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	// Run A blocks inside the backend stream call.
	release := make(chan error)
	backend.streamResult = make(chan error, 1)
	go func() { backend.streamResult <- <-release }()

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, false)))
	backend.waitCalled(t, "logs")

	// Run B supersedes A.
	backend.mu.Lock()
	backend.streamResult = nil
	backend.mu.Unlock()
	require.NoError(t, ctrl.Run(testTarget, logOpts(50, true)))
	backend.waitCalled(t, "logs")

	bus.Publish(events.TopicLogLine, "fresh line")

	// A's request now fails; the failure belongs to a stale generation.
	release <- errors.New("stale failure")

	assert.Never(t, func() bool {
		state, _ := ctrl.State()
		return state == StreamFailed
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, []Line{{Text: "fresh line"}}, ctrl.Lines())
}

func TestStreamedOutputController_FaultDoesNotTerminateStream(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, true)))
	backend.waitCalled(t, "logs")

	bus.Publish(events.TopicLogLine, "before")
	bus.Publish(events.TopicLogError, "connection reset by peer")
	bus.Publish(events.TopicLogLine, "after")

	lines := ctrl.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, Line{Text: "connection reset by peer", Level: LineError}, lines[1])
	assert.Equal(t, "after", lines[2].Text)

	state, _ := ctrl.State()
	assert.Equal(t, StreamStreaming, state)
}

func TestStreamedOutputController_DescribeSuccess(t *testing.T) {
	ctrl, backend, _ := newStreamFixture(t)
	backend.describeText = "Name: api-7f\nStatus: Running\nWarning BackOff restarting\n"

	require.NoError(t, ctrl.Run(testTarget, RunOptions{Mode: ModeDescribe}))

	assert.Eventually(t, func() bool {
		state, _ := ctrl.State()
		return state == StreamComplete
	}, time.Second, 5*time.Millisecond)

	lines := ctrl.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, LineNone, lines[0].Level)
	assert.Equal(t, LineWarning, lines[2].Level)
	assert.Equal(t, "Name: api-7f\nStatus: Running\nWarning BackOff restarting", ctrl.Text())
}

func TestStreamedOutputController_DescribeFailure(t *testing.T) {
	ctrl, backend, _ := newStreamFixture(t)
	backend.describeErr = errors.New("kubectl describe failed: context deadline exceeded")

	require.NoError(t, ctrl.Run(testTarget, RunOptions{Mode: ModeDescribe}))

	assert.Eventually(t, func() bool {
		state, _ := ctrl.State()
		return state == StreamFailed
	}, time.Second, 5*time.Millisecond)

	lines := ctrl.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, LineError, lines[0].Level)
}

func TestStreamedOutputController_CommandScenario(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	opts := RunOptions{Mode: ModeCommand, Command: "kubectl get events -n prod"}
	require.NoError(t, ctrl.Run(testTarget, opts))
	backend.waitCalled(t, "command")

	backend.mu.Lock()
	assert.Equal(t, "kubectl get events -n prod", backend.lastCommand)
	// Command streams have no fault topic: line and done only.
	assert.Equal(t, 2, backend.subsAtCall)
	backend.mu.Unlock()

	bus.Publish(events.TopicCommandLine, "LAST SEEN   TYPE     REASON")
	bus.Publish(events.TopicCommandLine, "2m          Normal   Pulled")
	bus.Publish(events.TopicCommandDone, nil)

	assert.Len(t, ctrl.Lines(), 2)
	state, _ := ctrl.State()
	assert.Equal(t, StreamComplete, state)
}

func TestStreamedOutputController_UnknownModeRejected(t *testing.T) {
	ctrl, _, _ := newStreamFixture(t)
	assert.Error(t, ctrl.Run(testTarget, RunOptions{Mode: "bogus"}))
}

func TestStreamedOutputController_RunRejectsPartialTarget(t *testing.T) {
	ctrl, _, _ := newStreamFixture(t)
	partial := testTarget
	partial.ContextName = ""
	assert.Error(t, ctrl.Run(partial, logOpts(100, false)))
}

func TestStreamedOutputController_CancelStopsProducerAndDropsLateEvents(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, true)))
	backend.waitCalled(t, "logs")

	assert.NotPanics(t, func() {
		ctrl.Cancel()
		ctrl.Cancel()
	})

	backend.mu.Lock()
	ctx := backend.streamCtx
	backend.mu.Unlock()
	assert.Error(t, ctx.Err(), "cancel must stop the backend producer")

	bus.Publish(events.TopicLogLine, "late line")
	assert.Empty(t, ctrl.Lines())
	assert.Equal(t, 0, bus.GetMetrics().ActiveSubscriptions)
}

func TestStreamedOutputController_ReconcileRestartsOnlyOnChange(t *testing.T) {
	ctrl, backend, _ := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, true)))
	backend.waitCalled(t, "logs")
	gen := ctrl.Generation()

	// Identical target and options: the healthy run is left alone.
	require.NoError(t, ctrl.Reconcile(testTarget, logOpts(100, true)))
	assert.Equal(t, gen, ctrl.Generation())
	backend.mu.Lock()
	assert.Equal(t, 1, backend.streamCalls)
	backend.mu.Unlock()

	// Changing the tail count restarts the stream.
	require.NoError(t, ctrl.Reconcile(testTarget, logOpts(500, true)))
	backend.waitCalled(t, "logs")
	assert.Greater(t, ctrl.Generation(), gen)
	backend.mu.Lock()
	assert.Equal(t, 2, backend.streamCalls)
	backend.mu.Unlock()
}

func TestStreamedOutputController_NewRunClearsPriorLines(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, false)))
	backend.waitCalled(t, "logs")
	bus.Publish(events.TopicLogLine, "old content")
	require.Len(t, ctrl.Lines(), 1)

	require.NoError(t, ctrl.Run(testTarget, logOpts(200, false)))
	backend.waitCalled(t, "logs")
	assert.Empty(t, ctrl.Lines())
}

func TestStreamedOutputController_TextJoinsLines(t *testing.T) {
	ctrl, backend, bus := newStreamFixture(t)

	require.NoError(t, ctrl.Run(testTarget, logOpts(100, false)))
	backend.waitCalled(t, "logs")
	bus.Publish(events.TopicLogLine, "one")
	bus.Publish(events.TopicLogLine, "two")

	assert.Equal(t, "one\ntwo", ctrl.Text())
}
