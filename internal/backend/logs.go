package backend

import (
	"bufio"
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"

	"podscope/internal/events"
	"podscope/internal/inspect"
	"podscope/internal/kube"
	"podscope/pkg/logging"
)

// newLogClient builds the clientset for a log stream. Package variable
// so tests can substitute a fake.
var newLogClient = kube.StreamingClientFor

// StreamLogs opens a log stream for the target and pumps it onto the
// bus: logs.line per line, logs.error on a mid-stream read fault,
// logs.done at EOF or cancellation. The open itself is synchronous so
// a request-level failure is returned to the caller; after a nil
// return, cancelling ctx is the way to stop the stream.
func (s *Service) StreamLogs(ctx context.Context, target inspect.Target, opts inspect.LogOptions) error {
	client, err := newLogClient(target.SourceFile, target.ContextName)
	if err != nil {
		return err
	}

	podLogOpts := &corev1.PodLogOptions{
		Follow:    opts.Follow,
		TailLines: opts.TailLines,
	}
	stream, err := client.CoreV1().Pods(target.Namespace).GetLogs(target.PodName, podLogOpts).Stream(ctx)
	if err != nil {
		return fmt.Errorf("opening log stream for %s/%s: %w", target.Namespace, target.PodName, err)
	}

	go s.readLogStream(ctx, stream)
	return nil
}

func (s *Service) readLogStream(ctx context.Context, stream io.ReadCloser) {
	defer stream.Close()

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.bus.Publish(events.TopicLogLine, scanner.Text())
	}

	// A read error caused by our own cancellation is not a stream fault.
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logging.Debug("Backend", "log stream fault: %v", err)
		s.bus.Publish(events.TopicLogError, err.Error())
	}
	s.bus.Publish(events.TopicLogDone, nil)
}
