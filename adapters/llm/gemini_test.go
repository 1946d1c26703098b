package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/satriahrh/arunika-assistant/domain/repositories"
)

func TestValidateGeminiConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  GeminiConfig
		wantErr bool
	}{
		{name: "valid", config: GeminiConfig{APIKey: "key"}},
		{name: "missing key", config: GeminiConfig{}, wantErr: true},
		{name: "temperature too high", config: GeminiConfig{APIKey: "key", Temperature: 3}, wantErr: true},
		{name: "topP too high", config: GeminiConfig{APIKey: "key", TopP: 1.5}, wantErr: true},
		{name: "negative tokens", config: GeminiConfig{APIKey: "key", MaxOutputTokens: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGeminiConfig(tt.config)
			assert.Equal(t, tt.wantErr, err != nil, "error: %v", err)
		})
	}
}

func TestApplyGeminiDefaults(t *testing.T) {
	config := applyGeminiDefaults(GeminiConfig{APIKey: "key"}, zaptest.NewLogger(t))
	assert.Equal(t, defaultModel, config.Model)
	assert.Equal(t, 150, config.MaxOutputTokens)
	assert.Equal(t, defaultTimeoutSeconds, config.TimeoutSeconds)

	custom := applyGeminiDefaults(GeminiConfig{APIKey: "key", Model: "gemini-pro", MaxOutputTokens: 64}, zaptest.NewLogger(t))
	assert.Equal(t, "gemini-pro", custom.Model)
	assert.Equal(t, 64, custom.MaxOutputTokens)
}

func TestConvertRepositoryToGeminiFormat(t *testing.T) {
	system, contents := convertRepositoryToGeminiFormat([]repositories.ChatMessage{
		{Role: repositories.SystemRole, Content: "be brief"},
		{Role: repositories.UserRole, Content: "hi"},
		{Role: repositories.AssistantRole, Content: "hello"},
	})

	require.NotNil(t, system)
	require.Len(t, system.Parts, 1)
	assert.Equal(t, "be brief", system.Parts[0].Text)

	require.Len(t, contents, 2)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)

	back := convertGeminiToRepositoryFormat(contents)
	assert.Equal(t, []repositories.ChatMessage{
		{Role: repositories.UserRole, Content: "hi"},
		{Role: repositories.AssistantRole, Content: "hello"},
	}, back)

	none, _ := convertRepositoryToGeminiFormat([]repositories.ChatMessage{{Role: repositories.UserRole, Content: "hi"}})
	assert.Nil(t, none)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", responseText(nil))
	assert.Equal(t, "", responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "Hello "}, {Text: "there. "}}},
		}},
	}
	assert.Equal(t, "Hello there.", responseText(resp))
}

func TestMockLLM(t *testing.T) {
	ctx := context.Background()
	session, err := NewMockLLM().GenerateChat(ctx, []repositories.ChatMessage{{Role: repositories.SystemRole, Content: "be brief"}})
	require.NoError(t, err)

	reply, err := session.SendMessage(ctx, repositories.ChatMessage{Role: repositories.UserRole, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, repositories.AssistantRole, reply.Role)
	assert.Contains(t, reply.Content, "hi")

	history, err := session.History()
	require.NoError(t, err)
	assert.Len(t, history, 3)
}
