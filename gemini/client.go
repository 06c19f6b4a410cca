package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/summarizer"
)

const jsonMIMEType = "application/json"

type GeminiClient struct {
	geminiConfig config.GeminiConfig
	model        string
}

func NewGeminiClient(geminiConfig config.GeminiConfig, model string) *GeminiClient {
	return &GeminiClient{
		geminiConfig: geminiConfig,
		model:        model,
	}
}

// Generate asks Gemini for JSON constrained to req.Schema.
func (c GeminiClient) Generate(ctx context.Context, req summarizer.GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.geminiConfig.Key))
	if err != nil {
		return "", fmt.Errorf("error creating gemini client: %w", err)
	}
	defer client.Close()

	genModel := client.GenerativeModel(c.model)
	configureModel(genModel, req)

	geminiResponse, err := genModel.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("error generating content: %w", err)
	}

	return responseText(geminiResponse)
}

func configureModel(genModel *genai.GenerativeModel, req summarizer.GenerateRequest) {
	if req.SystemPrompt != "" {
		genModel.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	if req.MaxOutputTokens > 0 {
		genModel.SetMaxOutputTokens(int32(req.MaxOutputTokens))
	}
	genModel.ResponseMIMEType = jsonMIMEType
	genModel.ResponseSchema = toGeminiSchema(req.Schema)
}

func toGeminiSchema(schema summarizer.OutputSchema) *genai.Schema {
	properties := make(map[string]*genai.Schema, len(schema.Properties))
	for _, property := range schema.Properties {
		properties[property.Name] = &genai.Schema{
			Type:        genai.TypeArray,
			Description: property.Description,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   schema.Required(),
	}
}

func responseText(geminiResponse *genai.GenerateContentResponse) (string, error) {
	if geminiResponse == nil || len(geminiResponse.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	candidate := geminiResponse.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini candidate has no content (finish reason = %s)", mapFinishReason(candidate.FinishReason))
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
		return "", fmt.Errorf("gemini stopped early (finish reason = %s)", mapFinishReason(candidate.FinishReason))
	}

	return text.String(), nil
}

func mapFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "max_tokens"
	case genai.FinishReasonSafety:
		return "safety"
	case genai.FinishReasonRecitation:
		return "recitation"
	default:
		return "other"
	}
}
