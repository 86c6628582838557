package llm

import (
	"context"
	"testing"

	"bizdash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("Ram Electronics", "INR", "hi")
	assert.Contains(t, prompt, `"Ram Electronics"`)
	assert.Contains(t, prompt, "Currency: INR.")
	assert.Contains(t, prompt, `code "hi"`)

	bare := SystemPrompt(" ", "", "")
	assert.Equal(t, basePrompt, bare)
}

func TestClientDisabledWithoutCredentials(t *testing.T) {
	c, err := NewClient(config.Config{LLMModel: "openai/gpt-4o-mini"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, c.Enabled())
	assert.Equal(t, "openai/gpt-4o-mini", c.Model())

	_, err = c.ChatWithMessages(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilClient *Client
	assert.False(t, nilClient.Enabled())
}

func TestToolSchemasHaveUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range ToolSchemas() {
		require.NotNil(t, tool.Function)
		assert.False(t, seen[tool.Function.Name], tool.Function.Name)
		seen[tool.Function.Name] = true
	}
	assert.Len(t, seen, 4)
}
