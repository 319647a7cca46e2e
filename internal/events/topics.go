package events

// Topic names an event stream on the bus. Each backend operation that
// streams results publishes on a fixed set of topics; the frontend
// controllers subscribe per-topic.
type Topic string

const (
	// Interactive session events
	TopicSessionOutput Topic = "session.output"
	TopicSessionDone   Topic = "session.done"

	// Log stream events
	TopicLogLine  Topic = "logs.line"
	TopicLogError Topic = "logs.error"
	TopicLogDone  Topic = "logs.done"

	// Raw command events
	TopicCommandLine Topic = "command.line"
	TopicCommandDone Topic = "command.done"

	// Analysis events
	TopicAnalysisToken Topic = "analysis.token"
	TopicAnalysisDone  Topic = "analysis.done"
)
