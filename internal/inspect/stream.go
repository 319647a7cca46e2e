package inspect

import (
	"context"
	"strings"
	"sync"

	"podscope/internal/events"
	"podscope/pkg/logging"
)

// StreamState is the lifecycle state of one output fetch/stream.
type StreamState int

const (
	StreamIdle StreamState = iota
	StreamLoading
	StreamStreaming
	StreamComplete
	StreamFailed
)

func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "Idle"
	case StreamLoading:
		return "Loading"
	case StreamStreaming:
		return "Streaming"
	case StreamComplete:
		return "Complete"
	case StreamFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// RunOptions selects what a StreamedOutputController run fetches.
type RunOptions struct {
	Mode Mode // ModeDescribe, ModeLogs or ModeCommand
	// TailLines / Follow apply to ModeLogs.
	TailLines *int64
	Follow    bool
	// Command is the raw kubectl command for ModeCommand.
	Command string
}

func (o RunOptions) equal(other RunOptions) bool {
	if o.Mode != other.Mode || o.Follow != other.Follow || o.Command != other.Command {
		return false
	}
	switch {
	case o.TailLines == nil && other.TailLines == nil:
		return true
	case o.TailLines == nil || other.TailLines == nil:
		return false
	default:
		return *o.TailLines == *other.TailLines
	}
}

// StreamedOutputController fetches (describe) or streams (logs,
// command) pod output into an annotated read-only line buffer. One
// run is live at a time; starting a new run supersedes the previous
// generation.
type StreamedOutputController struct {
	mu      sync.Mutex
	bus     *events.Bus
	backend OutputBackend
	notify  func()

	generation int
	state      StreamState
	failReason string
	target     Target
	opts       RunOptions
	lines      []Line
	subs       *SubscriptionSet
	cancel     context.CancelFunc
}

// NewStreamedOutputController creates a controller. notify, if
// non-nil, is called after every visible change.
func NewStreamedOutputController(bus *events.Bus, backend OutputBackend, notify func()) *StreamedOutputController {
	return &StreamedOutputController{
		bus:     bus,
		backend: backend,
		notify:  notify,
		subs:    NewSubscriptionSet(),
	}
}

// Run clears prior content and dispatches per mode. For streaming
// modes the event subscriptions are registered before the backend
// request is issued.
func (c *StreamedOutputController) Run(target Target, opts RunOptions) error {
	if !target.IsComplete() {
		return errIncompleteTarget(target)
	}

	c.mu.Lock()
	c.cancelLocked()

	c.generation++
	gen := c.generation
	c.state = StreamLoading
	c.failReason = ""
	c.target = target
	c.opts = opts
	c.lines = nil

	switch opts.Mode {
	case ModeDescribe:
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.mu.Unlock()

		go func() {
			text, err := c.backend.Describe(ctx, target)
			c.completeDescribe(gen, text, err)
		}()
		return nil

	case ModeLogs:
		c.subscribeStreamLocked(gen, events.TopicLogLine, events.TopicLogError, events.TopicLogDone)
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.mu.Unlock()

		go func() {
			err := c.backend.StreamLogs(ctx, target, LogOptions{TailLines: opts.TailLines, Follow: opts.Follow})
			c.streamStarted(gen, err)
		}()
		return nil

	case ModeCommand:
		c.subscribeStreamLocked(gen, events.TopicCommandLine, "", events.TopicCommandDone)
		ctx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.mu.Unlock()

		go func() {
			err := c.backend.RunCommand(ctx, target, opts.Command)
			c.streamStarted(gen, err)
		}()
		return nil

	default:
		c.mu.Unlock()
		return errUnknownMode(opts.Mode)
	}
}

// subscribeStreamLocked registers line/error/done handlers for one
// generation. errTopic may be empty for streams without a fault event.
// Caller holds c.mu.
func (c *StreamedOutputController) subscribeStreamLocked(gen int, lineTopic, errTopic, doneTopic events.Topic) {
	c.subs.Add(c.bus.Subscribe(lineTopic, func(e events.Event) {
		text, _ := e.Payload.(string)
		c.handleLine(gen, text)
	}))
	if errTopic != "" {
		c.subs.Add(c.bus.Subscribe(errTopic, func(e events.Event) {
			msg, _ := e.Payload.(string)
			c.handleFault(gen, msg)
		}))
	}
	c.subs.Add(c.bus.Subscribe(doneTopic, func(events.Event) {
		c.handleStreamDone(gen)
	}))
}

// streamStarted resolves the dispatch of a streaming request: a
// request-level failure is terminal and shown inline, a success moves
// Loading to Streaming.
func (c *StreamedOutputController) streamStarted(gen int, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.state = StreamFailed
		c.failReason = err.Error()
		c.lines = append(c.lines, Line{Text: err.Error(), Level: LineError})
		c.subs.CloseAll()
		c.cancel = nil
	} else if c.state == StreamLoading {
		c.state = StreamStreaming
	}
	c.mu.Unlock()
	c.changed()
}

func (c *StreamedOutputController) handleLine(gen int, text string) {
	c.mu.Lock()
	if gen != c.generation || c.state == StreamComplete || c.state == StreamFailed {
		c.mu.Unlock()
		return
	}
	if c.state == StreamLoading {
		c.state = StreamStreaming
	}
	c.lines = append(c.lines, Annotate(text))
	c.mu.Unlock()
	c.changed()
}

// handleFault appends a highlighted error line. It does not terminate
// the stream: the backend may keep producing after a fault.
func (c *StreamedOutputController) handleFault(gen int, msg string) {
	c.mu.Lock()
	if gen != c.generation || c.state == StreamComplete || c.state == StreamFailed {
		c.mu.Unlock()
		return
	}
	c.lines = append(c.lines, Line{Text: msg, Level: LineError})
	c.mu.Unlock()

	logging.Debug("Stream", "mid-stream fault: %s", msg)
	c.changed()
}

func (c *StreamedOutputController) handleStreamDone(gen int) {
	c.mu.Lock()
	if gen != c.generation || c.state == StreamComplete || c.state == StreamFailed {
		c.mu.Unlock()
		return
	}
	c.state = StreamComplete
	c.subs.CloseAll()
	c.cancel = nil
	c.mu.Unlock()
	c.changed()
}

func (c *StreamedOutputController) completeDescribe(gen int, text string, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.state = StreamFailed
		c.failReason = err.Error()
		c.lines = []Line{{Text: err.Error(), Level: LineError}}
	} else {
		c.state = StreamComplete
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			c.lines = append(c.lines, Annotate(line))
		}
	}
	c.cancel = nil
	c.mu.Unlock()
	c.changed()
}

// Cancel tears down the current generation's subscriptions and
// best-effort stops the backend producer. Called whenever the target,
// mode, tail count or follow flag changes, and on view teardown. Safe
// to call repeatedly.
func (c *StreamedOutputController) Cancel() {
	c.mu.Lock()
	c.cancelLocked()
	c.state = StreamIdle
	c.mu.Unlock()
}

// cancelLocked invalidates in-flight callbacks. Caller holds c.mu.
func (c *StreamedOutputController) cancelLocked() {
	c.generation++
	c.subs.CloseAll()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Reconcile restarts the run only when the target or options actually
// changed; an identical, healthy run is left alone.
func (c *StreamedOutputController) Reconcile(target Target, opts RunOptions) error {
	c.mu.Lock()
	unchanged := c.target.Equal(target) && c.opts.equal(opts) && c.state != StreamIdle && c.state != StreamFailed
	c.mu.Unlock()

	if unchanged {
		return nil
	}
	return c.Run(target, opts)
}

// Lines returns a snapshot of the annotated output.
func (c *StreamedOutputController) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Text returns the accumulated output as one string, the form the
// analysis layer consumes.
func (c *StreamedOutputController) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	parts := make([]string, len(c.lines))
	for i, l := range c.lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// State returns the current state and failure reason.
func (c *StreamedOutputController) State() (StreamState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.failReason
}

// Mode returns the mode of the current run.
func (c *StreamedOutputController) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Mode
}

// Generation returns the current generation. Exposed for tests.
func (c *StreamedOutputController) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *StreamedOutputController) changed() {
	if c.notify != nil {
		c.notify()
	}
}
