package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload_FencedBlock(t *testing.T) {
	raw := "```json\n{\"insights\":[]}\n```"
	assert.Equal(t, `{"insights":[]}`, extractPayload(raw))
}

func TestExtractPayload_FencedBlockNoLanguageTag(t *testing.T) {
	raw := "```\n{\"insights\":[]}\n```"
	assert.Equal(t, `{"insights":[]}`, extractPayload(raw))
}

func TestExtractPayload_BalancedSpanWithNoise(t *testing.T) {
	raw := `some preamble {"insights":[{"type":"warning","title":"t","body":"b"}]} trailing`
	assert.Equal(t, `{"insights":[{"type":"warning","title":"t","body":"b"}]}`, extractPayload(raw))
}

func TestExtractPayload_NestedBraces(t *testing.T) {
	raw := `x {"a":{"b":1}} y`
	assert.Equal(t, `{"a":{"b":1}}`, extractPayload(raw))
}

func TestExtractPayload_RawFallback(t *testing.T) {
	assert.Equal(t, "not json at all", extractPayload("not json at all"))
}

func TestParseInsights_EmptyList(t *testing.T) {
	insights, err := parseInsights("```json\n{\"insights\":[]}\n```")
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestParseInsights_OneInsightWithNoise(t *testing.T) {
	raw := `some preamble {"insights":[{"type":"warning","title":"t","body":"b"}]} trailing`
	insights, err := parseInsights(raw)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, InsightWarning, insights[0].Kind)
	assert.Equal(t, "t", insights[0].Title)
	assert.Equal(t, "b", insights[0].Body)
	assert.Empty(t, insights[0].Command)
}

func TestParseInsights_OptionalCommand(t *testing.T) {
	raw := `{"insights":[{"type":"critical","title":"x","body":"y","command":"kubectl delete pod x"}]}`
	insights, err := parseInsights(raw)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "kubectl delete pod x", insights[0].Command)
}

func TestParseInsights_MissingFieldDefaultsEmpty(t *testing.T) {
	insights, err := parseInsights(`{"something_else": true}`)
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestParseInsights_GarbageFails(t *testing.T) {
	_, err := parseInsights("not json at all")
	assert.Error(t, err)
}
