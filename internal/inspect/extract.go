package inspect

import (
	"encoding/json"
	"strings"
)

// InsightKind classifies one analysis finding.
type InsightKind string

const (
	InsightCritical   InsightKind = "critical"
	InsightWarning    InsightKind = "warning"
	InsightSuggestion InsightKind = "suggestion"
)

// Insight is one structured finding returned by the analysis service.
type Insight struct {
	Kind    InsightKind `json:"type"`
	Title   string      `json:"title"`
	Body    string      `json:"body"`
	Command string      `json:"command,omitempty"`
}

type analysisResponse struct {
	Insights []Insight `json:"insights"`
}

// extractPayload pulls the most plausible JSON document out of a raw
// model reply: a fenced code block if present, else the first balanced
// {...} span, else the raw text. The model is told to reply with bare
// JSON but does not always comply.
func extractPayload(raw string) string {
	if fenced, ok := extractFenced(raw); ok {
		return fenced
	}
	if span, ok := extractBalanced(raw); ok {
		return span
	}
	return raw
}

// extractFenced returns the contents of the first ``` fence, with any
// language tag on the opening line stripped.
func extractFenced(raw string) (string, bool) {
	start := strings.Index(raw, "```")
	if start < 0 {
		return "", false
	}
	rest := raw[start+3:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	content := rest[:end]
	// Drop a language tag such as "json" on the opening line.
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(content[:nl])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}") {
			content = content[nl+1:]
		}
	}
	return strings.TrimSpace(content), true
}

// extractBalanced returns the first balanced top-level {...} span.
// Brace counting ignores string contents; for the defensive use here
// that trade-off is acceptable and matches the original behavior.
func extractBalanced(raw string) (string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// parseInsights parses the terminal analysis payload. A missing
// "insights" field yields an empty list, not an error.
func parseInsights(raw string) ([]Insight, error) {
	var resp analysisResponse
	if err := json.Unmarshal([]byte(extractPayload(raw)), &resp); err != nil {
		return nil, err
	}
	return resp.Insights, nil
}
