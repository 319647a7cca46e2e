package inspect

import (
	"context"
	"sync"

	"podscope/internal/events"
	"podscope/pkg/logging"
)

// AnalysisState is the lifecycle state of one analysis run.
type AnalysisState int

const (
	AnalysisIdle AnalysisState = iota
	AnalysisStreaming
	AnalysisDone
	AnalysisFailed
)

func (s AnalysisState) String() string {
	switch s {
	case AnalysisIdle:
		return "Idle"
	case AnalysisStreaming:
		return "Streaming"
	case AnalysisDone:
		return "Done"
	case AnalysisFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// parseFailureMessage is the generic error surfaced on a malformed
// payload. The raw payload goes to the debug log only, never the UI.
const parseFailureMessage = "failed to parse analysis response"

// AnalysisController owns one LLM analysis run over accumulated output
// text. At most one run is live (subscribed) at a time; starting a new
// run synchronously tears down the previous run's subscriptions before
// subscribing its own.
type AnalysisController struct {
	mu       sync.Mutex
	bus      *events.Bus
	analyzer Analyzer
	notify   func()

	generation int
	state      AnalysisState
	failReason string
	insights   []Insight
	sourceText string
	mode       Mode
	tokenCount int

	lastAnalyzedText string
	lastAnalyzedMode Mode

	subs   *SubscriptionSet
	cancel context.CancelFunc
}

// NewAnalysisController creates a controller. notify, if non-nil, is
// called after every visible change.
func NewAnalysisController(bus *events.Bus, analyzer Analyzer, notify func()) *AnalysisController {
	return &AnalysisController{
		bus:      bus,
		analyzer: analyzer,
		notify:   notify,
		subs:     NewSubscriptionSet(),
	}
}

// Analyze submits text for analysis. Empty text is a no-op. The token
// subscription drives only a working indicator; insights come from the
// terminal analysis.done payload, parsed defensively.
func (c *AnalysisController) Analyze(text string, mode Mode) {
	if text == "" {
		return
	}

	c.mu.Lock()
	c.teardownLocked()

	c.generation++
	gen := c.generation
	c.state = AnalysisStreaming
	c.failReason = ""
	c.insights = nil
	c.tokenCount = 0
	c.sourceText = text
	c.mode = mode
	c.lastAnalyzedText = text
	c.lastAnalyzedMode = mode

	// Subscribe happens-before trigger, token stream first.
	c.subs.Add(c.bus.Subscribe(events.TopicAnalysisToken, func(events.Event) {
		c.handleToken(gen)
	}))
	c.subs.Add(c.bus.Subscribe(events.TopicAnalysisDone, func(e events.Event) {
		payload, _ := e.Payload.(string)
		c.handleDone(gen, payload)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		if err := c.analyzer.Analyze(ctx, text, string(mode)); err != nil {
			c.failRun(gen, err.Error())
		}
	}()
}

// MaybeAnalyze runs analysis only when the text is new for the current
// mode. Switching mode resets the comparison, so the same text can be
// re-analyzed fresh under the other mode.
func (c *AnalysisController) MaybeAnalyze(text string, mode Mode) {
	if text == "" {
		return
	}
	c.mu.Lock()
	unchanged := text == c.lastAnalyzedText && mode == c.lastAnalyzedMode
	c.mu.Unlock()

	if unchanged {
		return
	}
	c.Analyze(text, mode)
}

// Reanalyze re-runs the last analysis with identical text and mode,
// forcing a new generation. User-initiated override of the
// only-on-new-text default.
func (c *AnalysisController) Reanalyze() {
	c.mu.Lock()
	text, mode := c.sourceText, c.mode
	c.mu.Unlock()

	if text == "" {
		return
	}
	c.Analyze(text, mode)
}

func (c *AnalysisController) handleToken(gen int) {
	c.mu.Lock()
	if gen != c.generation || c.state != AnalysisStreaming {
		c.mu.Unlock()
		return
	}
	c.tokenCount++
	c.mu.Unlock()
	c.changed()
}

func (c *AnalysisController) handleDone(gen int, payload string) {
	c.mu.Lock()
	if gen != c.generation || c.state != AnalysisStreaming {
		c.mu.Unlock()
		return
	}

	insights, err := parseInsights(payload)
	if err != nil {
		c.state = AnalysisFailed
		c.failReason = parseFailureMessage
		c.subs.CloseAll()
		c.cancel = nil
		c.mu.Unlock()

		// Raw payload is kept out of the UI but retained for diagnosis.
		logging.Debug("Analysis", "unparseable payload: %s", payload)
		c.changed()
		return
	}

	c.state = AnalysisDone
	c.insights = insights
	c.subs.CloseAll()
	c.cancel = nil
	c.mu.Unlock()
	c.changed()
}

func (c *AnalysisController) failRun(gen int, reason string) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.state = AnalysisFailed
	c.failReason = reason
	c.subs.CloseAll()
	c.cancel = nil
	c.mu.Unlock()
	c.changed()
}

// Cancel tears down the live run, if any. Safe to call repeatedly.
func (c *AnalysisController) Cancel() {
	c.mu.Lock()
	c.teardownLocked()
	c.state = AnalysisIdle
	c.mu.Unlock()
}

// ResetTrigger clears the new-text comparison, typically on mode
// switch, so the next MaybeAnalyze fires even for unchanged text.
func (c *AnalysisController) ResetTrigger() {
	c.mu.Lock()
	c.lastAnalyzedText = ""
	c.lastAnalyzedMode = ""
	c.mu.Unlock()
}

// teardownLocked invalidates in-flight callbacks. Caller holds c.mu.
func (c *AnalysisController) teardownLocked() {
	c.generation++
	c.subs.CloseAll()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Insights returns a snapshot of the findings, in service order.
func (c *AnalysisController) Insights() []Insight {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Insight, len(c.insights))
	copy(out, c.insights)
	return out
}

// State returns the current state and failure reason.
func (c *AnalysisController) State() (AnalysisState, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.failReason
}

// TokenCount returns how many stream tokens have arrived for the
// current run. Drives the working indicator.
func (c *AnalysisController) TokenCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokenCount
}

// Generation returns the current generation. Exposed for tests.
func (c *AnalysisController) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *AnalysisController) changed() {
	if c.notify != nil {
		c.notify()
	}
}
