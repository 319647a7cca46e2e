package inspect

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"podscope/internal/events"
	"podscope/pkg/logging"
)

// SessionState is the lifecycle state of an interactive session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionConnecting
	SessionActive
	SessionEnded
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "Idle"
	case SessionConnecting:
		return "Connecting"
	case SessionActive:
		return "Active"
	case SessionEnded:
		return "Ended"
	case SessionFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Surface is the terminal viewport a session renders into.
type Surface interface {
	Write(data string)
	Clear()
}

const sessionPrompt = "$ "

// sessionReadyMarker is the backend's explicit readiness signal: a
// line-mode backend emits it once before any real output.
const sessionReadyMarker = "ready"

// endedNoticeDelay is how long the "session ended" notice stays on the
// surface before it is cleared. Package variable so tests can shorten it.
var endedNoticeDelay = 2 * time.Second

// SessionController mediates one interactive shell session against a
// selected pod. It owns exactly one generation's worth of bus
// subscriptions and one backend session at a time.
type SessionController struct {
	mu      sync.Mutex
	bus     *events.Bus
	backend SessionBackend
	surface Surface
	notify  func()

	generation int
	state      SessionState
	failReason string
	target     Target
	dims       Dimensions
	pending    []byte
	subs       *SubscriptionSet
}

// NewSessionController creates a controller rendering into surface.
// notify, if non-nil, is called after every visible change; it must
// not call back into the controller.
func NewSessionController(bus *events.Bus, backend SessionBackend, surface Surface, notify func()) *SessionController {
	return &SessionController{
		bus:     bus,
		backend: backend,
		surface: surface,
		notify:  notify,
		subs:    NewSubscriptionSet(),
	}
}

// Open starts a session against the target. Listeners are registered
// before the start request is issued, so output emitted between
// trigger and first delivery cannot be lost. A previous session for
// this controller is torn down first.
func (c *SessionController) Open(target Target, dims Dimensions) error {
	if c.surface == nil {
		return fmt.Errorf("session controller has no render surface")
	}
	if !target.IsComplete() {
		return errIncompleteTarget(target)
	}

	c.mu.Lock()
	c.teardownLocked()

	c.generation++
	gen := c.generation
	c.state = SessionConnecting
	c.failReason = ""
	c.target = target
	c.dims = dims
	c.pending = nil
	c.surface.Clear()

	// Subscribe happens-before trigger.
	c.subs.Add(c.bus.Subscribe(events.TopicSessionOutput, func(e events.Event) {
		data, _ := e.Payload.(string)
		c.handleOutput(gen, data)
	}))
	c.subs.Add(c.bus.Subscribe(events.TopicSessionDone, func(events.Event) {
		c.handleDone(gen)
	}))
	c.mu.Unlock()

	go func() {
		if err := c.backend.StartSession(target, dims.Columns, dims.Rows); err != nil {
			c.failStart(gen, err)
		}
	}()
	return nil
}

// handleOutput renders one output chunk for the given generation.
// Stale generations are dropped silently.
func (c *SessionController) handleOutput(gen int, data string) {
	c.mu.Lock()
	if gen != c.generation || c.state == SessionEnded || c.state == SessionFailed {
		c.mu.Unlock()
		return
	}

	var flush []byte
	if c.state == SessionConnecting {
		c.state = SessionActive
		flush = c.pending
		c.pending = nil
	}

	if data == sessionReadyMarker {
		c.surface.Write(sessionPrompt)
	} else {
		c.surface.Write(data)
		if strings.HasSuffix(data, "\n") {
			c.surface.Write(sessionPrompt)
		}
	}
	c.mu.Unlock()

	if len(flush) > 0 {
		if err := c.backend.SendInput(flush); err != nil {
			logging.Warn("Session", "flushing buffered input: %v", err)
		}
	}
	c.changed()
}

// handleDone marks the session ended and schedules the surface clear.
// The notice stays visible for endedNoticeDelay so the user sees why
// the terminal went quiet.
func (c *SessionController) handleDone(gen int) {
	c.mu.Lock()
	if gen != c.generation || c.state == SessionEnded || c.state == SessionFailed {
		c.mu.Unlock()
		return
	}
	c.state = SessionEnded
	c.subs.CloseAll()
	c.surface.Write("\r\n[session ended]\r\n")
	c.mu.Unlock()

	time.AfterFunc(endedNoticeDelay, func() {
		c.mu.Lock()
		if gen == c.generation && c.state == SessionEnded {
			c.surface.Clear()
			c.mu.Unlock()
			c.changed()
			return
		}
		c.mu.Unlock()
	})
	c.changed()
}

// failStart records a start failure. Not retried: starting a shell is
// not safe to retry silently, so the failure is surfaced instead.
func (c *SessionController) failStart(gen int, err error) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.state = SessionFailed
	c.failReason = err.Error()
	c.subs.CloseAll()
	c.surface.Write(fmt.Sprintf("\r\n[session failed: %v]\r\n", err))
	target := c.target
	c.mu.Unlock()

	logging.Error("Session", err, "session start failed for %s/%s", target.Namespace, target.PodName)
	c.changed()
}

// SendKeystroke forwards raw bytes to the current session. Keystrokes
// typed while the session is still connecting are buffered and flushed
// on activation; anything after the session ended is dropped.
func (c *SessionController) SendKeystroke(data []byte) {
	c.mu.Lock()
	switch c.state {
	case SessionConnecting:
		c.pending = append(c.pending, data...)
		c.mu.Unlock()
		return
	case SessionActive:
		c.mu.Unlock()
		if err := c.backend.SendInput(data); err != nil {
			logging.Warn("Session", "forwarding input: %v", err)
		}
		return
	default:
		c.mu.Unlock()
	}
}

// Resize forwards new viewport dimensions to the backend. Only actual
// size changes are forwarded.
func (c *SessionController) Resize(dims Dimensions) {
	c.mu.Lock()
	if dims == c.dims || (c.state != SessionConnecting && c.state != SessionActive) {
		c.mu.Unlock()
		return
	}
	c.dims = dims
	c.mu.Unlock()

	if err := c.backend.ResizeSession(dims.Columns, dims.Rows); err != nil {
		logging.Warn("Session", "resize: %v", err)
	}
}

// Close tears down the session: all listeners unsubscribed, backend
// told to stop, surface released. Runs on every exit path and is safe
// to call repeatedly.
func (c *SessionController) Close() {
	c.mu.Lock()
	alreadyIdle := c.state == SessionIdle
	c.teardownLocked()
	c.state = SessionIdle
	c.pending = nil
	if !alreadyIdle && c.surface != nil {
		c.surface.Clear()
	}
	c.mu.Unlock()

	if !alreadyIdle {
		c.changed()
	}
}

// teardownLocked invalidates in-flight callbacks and stops the backend
// session. Caller holds c.mu.
func (c *SessionController) teardownLocked() {
	c.generation++
	c.subs.CloseAll()
	if err := c.backend.StopSession(); err != nil {
		logging.Debug("Session", "stop session: %v", err)
	}
}

// Reconcile is called by the host view when the selection changes: a
// new target cancels the current session and starts a fresh one; an
// unchanged, healthy target is left alone.
func (c *SessionController) Reconcile(target Target, dims Dimensions) error {
	c.mu.Lock()
	sameTarget := c.target.Equal(target) && (c.state == SessionConnecting || c.state == SessionActive)
	c.mu.Unlock()

	if sameTarget {
		c.Resize(dims)
		return nil
	}
	return c.Open(target, dims)
}

// State returns the current lifecycle state and failure reason.
func (c *SessionController) State() (SessionState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.failReason
}

// Generation returns the current generation. Exposed for the host view
// and tests.
func (c *SessionController) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *SessionController) changed() {
	if c.notify != nil {
		c.notify()
	}
}
