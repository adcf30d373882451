package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptBuildFramesContext(t *testing.T) {
	b := newPromptBuilder(0, testLogger())

	prompt := b.Build("dev", "how do I deploy", []RetrievedChunk{
		{Content: "deploy with the cli"},
		{Content: "roll back with the cli"},
	})

	require.Contains(t, prompt, "You are the DEV SYSTEM AI")
	require.Contains(t, prompt, "knowledge in the field of Dev.")
	require.Contains(t, prompt, "deploy with the cli\nroll back with the cli")
	require.Contains(t, prompt, "USER QUERY: how do I deploy")
	require.True(t, strings.HasSuffix(prompt, "DEV SYSTEM RESPONSE:"))
}

func TestPromptBuildNoChunks(t *testing.T) {
	b := newPromptBuilder(0, testLogger())

	prompt := b.Build("cloud", "what is a bucket", nil)
	require.Contains(t, prompt, "USER QUERY: what is a bucket")
}

func TestPromptTruncateWithoutEncoder(t *testing.T) {
	b := &promptBuilder{maxContextTokens: 1, logger: testLogger()}

	text := strings.Repeat("long context ", 100)
	require.Equal(t, text, b.truncate(text))
}

func TestDisplayCategory(t *testing.T) {
	require.Equal(t, "Unified Global Intelligence", displayCategory("unified"))
	require.Equal(t, "Dev", displayCategory("dev"))
	require.Equal(t, "Cloud", displayCategory("cloud"))
	require.Equal(t, "", displayCategory(""))
}
