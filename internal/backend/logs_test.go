package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"podscope/internal/events"
	"podscope/internal/inspect"
)

type eventRecorder struct {
	mu     sync.Mutex
	topics []events.Topic
	lines  []string
}

func newEventRecorder(bus *events.Bus, topics ...events.Topic) *eventRecorder {
	r := &eventRecorder{}
	for _, topic := range topics {
		topic := topic
		bus.Subscribe(topic, func(e events.Event) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.topics = append(r.topics, topic)
			if s, ok := e.Payload.(string); ok {
				r.lines = append(r.lines, s)
			}
		})
	}
	return r
}

func (r *eventRecorder) snapshot() ([]events.Topic, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Topic(nil), r.topics...), append([]string(nil), r.lines...)
}

func (r *eventRecorder) sawTopic(want events.Topic) bool {
	topics, _ := r.snapshot()
	for _, topic := range topics {
		if topic == want {
			return true
		}
	}
	return false
}

var streamTarget = inspect.Target{
	PodName:     "api-7f",
	Namespace:   "prod",
	SourceFile:  "/tmp/kubeconfig",
	ContextName: "prod-ctx",
}

func TestStreamLogs_PumpsLinesThenDone(t *testing.T) {
	clientset := fake.NewSimpleClientset(&corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "api-7f", Namespace: "prod"},
	})
	origNewLogClient := newLogClient
	newLogClient = func(_, _ string) (kubernetes.Interface, error) {
		return clientset, nil
	}
	defer func() { newLogClient = origNewLogClient }()

	bus := events.NewBus()
	recorder := newEventRecorder(bus, events.TopicLogLine, events.TopicLogError, events.TopicLogDone)
	svc := NewService(bus)

	tail := int64(100)
	err := svc.StreamLogs(context.Background(), streamTarget, inspect.LogOptions{TailLines: &tail, Follow: false})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return recorder.sawTopic(events.TopicLogDone)
	}, time.Second, 5*time.Millisecond)

	topics, lines := recorder.snapshot()
	// The fake clientset serves a fixed single-line log body.
	assert.Equal(t, []events.Topic{events.TopicLogLine, events.TopicLogDone}, topics)
	assert.Equal(t, []string{"fake logs"}, lines)
}

func TestStreamLogs_ClientBuildFailureIsSynchronous(t *testing.T) {
	origNewLogClient := newLogClient
	newLogClient = func(_, _ string) (kubernetes.Interface, error) {
		return nil, errors.New("no such kubeconfig")
	}
	defer func() { newLogClient = origNewLogClient }()

	bus := events.NewBus()
	recorder := newEventRecorder(bus, events.TopicLogLine, events.TopicLogError, events.TopicLogDone)
	svc := NewService(bus)

	err := svc.StreamLogs(context.Background(), streamTarget, inspect.LogOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such kubeconfig")

	// Request-level failures return to the caller; no events are published.
	topics, _ := recorder.snapshot()
	assert.Empty(t, topics)
}
