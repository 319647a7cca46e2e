package inspect

import "context"

// LogOptions configures a pod log stream.
type LogOptions struct {
	// TailLines limits the stream to the last N lines; nil streams the
	// backend default.
	TailLines *int64
	Follow    bool
}

// SessionBackend starts and drives one interactive exec session.
// Output arrives as session.output events on the bus, never through
// these calls.
type SessionBackend interface {
	StartSession(target Target, cols, rows int) error
	SendInput(data []byte) error
	ResizeSession(cols, rows int) error
	StopSession() error
}

// OutputBackend fetches or streams non-interactive pod output.
// Describe is one-shot request/response; StreamLogs and RunCommand
// publish their results as events and are stopped by cancelling the
// context they were started with.
type OutputBackend interface {
	Describe(ctx context.Context, target Target) (string, error)
	StreamLogs(ctx context.Context, target Target, opts LogOptions) error
	RunCommand(ctx context.Context, target Target, command string) error
}

// Analyzer submits output text to the analysis service. Tokens and the
// final payload arrive as analysis.token / analysis.done events; the
// returned error covers request-level failures only.
type Analyzer interface {
	Analyze(ctx context.Context, output, mode string) error
}
