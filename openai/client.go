package openai

import (
	"context"
	"errors"
	"fmt"

	openaigo "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/summarizer"
)

type OpenAIClient struct {
	client *openaigo.Client
	model  string
}

func NewOpenAIClient(openaiConfig config.OpenAIConfig, model string) *OpenAIClient {
	clientConfig := openaigo.DefaultConfig(openaiConfig.Key)
	if openaiConfig.BaseUrl != "" {
		clientConfig.BaseURL = openaiConfig.BaseUrl
	}

	return &OpenAIClient{
		client: openaigo.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Generate calls the chat completions API with a strict json_schema response format.
func (c OpenAIClient) Generate(ctx context.Context, req summarizer.GenerateRequest) (string, error) {
	response, err := c.client.CreateChatCompletion(ctx, toChatCompletionRequest(c.model, req))
	if err != nil {
		return "", fmt.Errorf("error creating chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	choice := response.Choices[0]
	if choice.FinishReason == openaigo.FinishReasonLength {
		return "", errors.New("openai response truncated at max tokens")
	}
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("openai refused: %s", choice.Message.Refusal)
	}

	return choice.Message.Content, nil
}

func toChatCompletionRequest(model string, req summarizer.GenerateRequest) openaigo.ChatCompletionRequest {
	messages := make([]openaigo.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	return openaigo.ChatCompletionRequest{
		Model:               model,
		Messages:            messages,
		MaxCompletionTokens: req.MaxOutputTokens,
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openaigo.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: toDefinition(req.Schema),
				Strict: true,
			},
		},
	}
}

func toDefinition(schema summarizer.OutputSchema) *jsonschema.Definition {
	properties := make(map[string]jsonschema.Definition, len(schema.Properties))
	for _, property := range schema.Properties {
		properties[property.Name] = jsonschema.Definition{
			Type:        jsonschema.Array,
			Description: property.Description,
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		}
	}

	return &jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           properties,
		Required:             schema.Required(),
		AdditionalProperties: false,
	}
}
