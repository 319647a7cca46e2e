package ai

import "fmt"

const insightSchema = `Respond ONLY with a JSON object:
{
  "insights": [
    {
      "type": "critical" | "warning" | "suggestion",
      "title": "Short title",
      "body": "Explanation",
      "command": "kubectl command if applicable (optional)"
    }
  ]
}`

// buildPrompt renders the per-mode analysis prompt. The model is asked
// for a strict JSON payload; the inspect layer still parses the reply
// defensively because models do not always comply.
func buildPrompt(output, mode string) string {
	if mode == "logs" {
		return fmt.Sprintf(`You are a Kubernetes operations expert. Analyze these pod logs and identify:
1. Any errors, crashes, panics, or fatal issues
2. Warnings or concerning patterns
3. Root cause analysis if possible
4. Specific actionable kubectl commands to fix issues

%s

Pod logs:
%s`, insightSchema, output)
	}
	return fmt.Sprintf(`You are a Kubernetes operations expert. Analyze this kubectl describe output and identify:
1. Any errors, crashes, or critical issues
2. Warnings or concerning patterns
3. Specific actionable kubectl commands to fix issues

%s

kubectl describe output:
%s`, insightSchema, output)
}
