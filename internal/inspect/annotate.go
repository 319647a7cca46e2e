package inspect

import "strings"

// LineLevel classifies one output line for display highlighting.
type LineLevel int

const (
	LineNone LineLevel = iota
	LineWarning
	LineError
)

// Line is one annotated output line.
type Line struct {
	Text  string
	Level LineLevel
}

// Error patterns are checked before warning patterns: a line matching
// both ("BackOff due to Error pulling image") classifies as an error.
var (
	errorPatterns   = []string{"error", "fatal", "oomkill", "crashloop"}
	warningPatterns = []string{"warning", "backoff"}
)

// Annotate classifies a line by case-insensitive substring match.
func Annotate(text string) Line {
	lower := strings.ToLower(text)
	for _, p := range errorPatterns {
		if strings.Contains(lower, p) {
			return Line{Text: text, Level: LineError}
		}
	}
	for _, p := range warningPatterns {
		if strings.Contains(lower, p) {
			return Line{Text: text, Level: LineWarning}
		}
	}
	return Line{Text: text, Level: LineNone}
}
