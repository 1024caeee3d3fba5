package handoff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPrompt(t *testing.T) {
	out, err := RenderPrompt("Implement: {{.Task}} (priority {{.Priority}})", map[string]string{
		"Task":     "add login",
		"Priority": "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "Implement: add login (priority high)", out)
}

func TestRenderPromptNoPlaceholders(t *testing.T) {
	out, err := RenderPrompt("Fixed instructions.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Fixed instructions.", out)
}

func TestRenderPromptMissingKeyFails(t *testing.T) {
	_, err := RenderPrompt("Implement: {{.Task}}", map[string]string{})
	assert.Error(t, err)
}

func TestRenderPromptBadTemplate(t *testing.T) {
	_, err := RenderPrompt("Implement: {{.Task", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestRenderPromptDeterministic(t *testing.T) {
	payload := map[string]string{"Task": "refactor"}
	first, err := RenderPrompt("Do {{.Task}}", payload)
	require.NoError(t, err)
	second, err := RenderPrompt("Do {{.Task}}", payload)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParsePrompt(t *testing.T) {
	assert.NoError(t, ParsePrompt("Implement: {{.Task}}"))
	assert.Error(t, ParsePrompt("Implement: {{.Task"))
}
