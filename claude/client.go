package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic"

	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/summarizer"
)

const defaultMaxTokens = 1024

type ClaudeClient struct {
	claudeConfig config.ClaudeConfig
	model        string
}

func NewClaudeClient(claudeConfig config.ClaudeConfig, model string) *ClaudeClient {
	return &ClaudeClient{
		claudeConfig: claudeConfig,
		model:        model,
	}
}

// Generate calls the Messages API. Claude has no response-schema parameter,
// so the schema travels in the system prompt and the summarizer validates it.
func (c *ClaudeClient) Generate(ctx context.Context, req summarizer.GenerateRequest) (string, error) {
	client := anthropic.NewClient(c.claudeConfig.Key)

	resp, err := client.CreateMessages(ctx, toMessagesRequest(c.model, req))
	if err != nil {
		return "", fmt.Errorf("failed to create message: %w", err)
	}

	return responseText(resp)
}

func toMessagesRequest(model string, req summarizer.GenerateRequest) anthropic.MessagesRequest {
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	prompt := req.Prompt
	return anthropic.MessagesRequest{
		Model:     model,
		System:    systemPrompt(req),
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{
				Role: "user",
				Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				},
			},
		},
	}
}

func systemPrompt(req summarizer.GenerateRequest) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)
	if len(req.Schema.Properties) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Respond with JSON only, matching this JSON Schema:\n")
		b.WriteString(req.Schema.JSON())
	}
	return b.String()
}

func responseText(resp anthropic.MessagesResponse) (string, error) {
	if resp.StopReason == "max_tokens" {
		return "", errors.New("claude response truncated at max tokens")
	}

	var text strings.Builder
	for _, content := range resp.Content {
		if content.Type != "text" {
			continue
		}
		text.WriteString(content.Text)
	}

	if text.Len() == 0 {
		return "", errors.New("claude returned no text content")
	}
	return text.String(), nil
}
