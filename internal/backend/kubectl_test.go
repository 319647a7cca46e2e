package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podscope/internal/events"
)

// stubKubectl installs a shell script in place of the kubectl binary
// for the duration of the test.
func stubKubectl(t *testing.T, script string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubectl")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))

	orig := kubectlPath
	kubectlPath = func() string { return path }
	t.Cleanup(func() { kubectlPath = orig })
}

func TestDescribe_PassesTargetFlags(t *testing.T) {
	stubKubectl(t, `echo "$@"`)
	svc := NewService(events.NewBus())

	out, err := svc.Describe(context.Background(), streamTarget)
	require.NoError(t, err)
	assert.Contains(t, out, "describe pod api-7f")
	assert.Contains(t, out, "-n prod")
	assert.Contains(t, out, "--kubeconfig=/tmp/kubeconfig")
	assert.Contains(t, out, "--context=prod-ctx")
}

func TestDescribe_FailureIncludesKubectlOutput(t *testing.T) {
	stubKubectl(t, `echo 'Error from server (NotFound): pods "api-7f" not found'; exit 1`)
	svc := NewService(events.NewBus())

	_, err := svc.Describe(context.Background(), streamTarget)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `pods "api-7f" not found`)
}

func TestRunCommand_StreamsLinesThenDone(t *testing.T) {
	stubKubectl(t, "echo line-one\necho line-two")

	bus := events.NewBus()
	recorder := newEventRecorder(bus, events.TopicCommandLine, events.TopicCommandDone)
	svc := NewService(bus)

	require.NoError(t, svc.RunCommand(context.Background(), streamTarget, "kubectl get events"))

	require.Eventually(t, func() bool {
		return recorder.sawTopic(events.TopicCommandDone)
	}, time.Second, 5*time.Millisecond)

	_, lines := recorder.snapshot()
	assert.Equal(t, []string{"line-one", "line-two"}, lines)
}

func TestRunCommand_StripsLeadingKubectlAndAppendsFlags(t *testing.T) {
	stubKubectl(t, `echo "$@"`)

	bus := events.NewBus()
	recorder := newEventRecorder(bus, events.TopicCommandLine, events.TopicCommandDone)
	svc := NewService(bus)

	require.NoError(t, svc.RunCommand(context.Background(), streamTarget, "kubectl get pods -n prod"))

	require.Eventually(t, func() bool {
		return recorder.sawTopic(events.TopicCommandDone)
	}, time.Second, 5*time.Millisecond)

	_, lines := recorder.snapshot()
	require.Len(t, lines, 1)
	// The stub echoes its argv: the leading "kubectl" token must be
	// gone and the target flags appended.
	assert.Equal(t, "get pods -n prod --kubeconfig=/tmp/kubeconfig --context=prod-ctx", lines[0])
}

func TestRunCommand_StderrFoldedIntoStream(t *testing.T) {
	stubKubectl(t, "echo to-stdout\necho to-stderr >&2")

	bus := events.NewBus()
	recorder := newEventRecorder(bus, events.TopicCommandLine, events.TopicCommandDone)
	svc := NewService(bus)

	require.NoError(t, svc.RunCommand(context.Background(), streamTarget, "get pods"))

	require.Eventually(t, func() bool {
		return recorder.sawTopic(events.TopicCommandDone)
	}, time.Second, 5*time.Millisecond)

	_, lines := recorder.snapshot()
	assert.ElementsMatch(t, []string{"to-stdout", "to-stderr"}, lines)
}

func TestRunCommand_EmptyCommandRejected(t *testing.T) {
	svc := NewService(events.NewBus())
	assert.Error(t, svc.RunCommand(context.Background(), streamTarget, ""))
	assert.Error(t, svc.RunCommand(context.Background(), streamTarget, "kubectl"))
}
