package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangashelf/mangashelf/summarizer"
)

func TestToGeminiSchema(t *testing.T) {
	schema := toGeminiSchema(summarizer.ResultSchema)

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, []string{"pros", "cons"}, schema.Required)
	require.Contains(t, schema.Properties, "pros")
	require.Contains(t, schema.Properties, "cons")
	assert.Equal(t, genai.TypeArray, schema.Properties["pros"].Type)
	assert.Equal(t, genai.TypeString, schema.Properties["pros"].Items.Type)
}

func TestConfigureModel(t *testing.T) {
	genModel := &genai.GenerativeModel{}
	configureModel(genModel, summarizer.GenerateRequest{
		SystemPrompt:    "be brief",
		Schema:          summarizer.ResultSchema,
		MaxOutputTokens: 300,
	})

	assert.Equal(t, "application/json", genModel.ResponseMIMEType)
	require.NotNil(t, genModel.MaxOutputTokens)
	assert.Equal(t, int32(300), *genModel.MaxOutputTokens)
	require.NotNil(t, genModel.SystemInstruction)
	assert.Equal(t, []genai.Part{genai.Text("be brief")}, genModel.SystemInstruction.Parts)
	assert.NotNil(t, genModel.ResponseSchema)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text(`{"pros": ["Great art"],`), genai.Text(` "cons": []}`)},
			},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"pros": ["Great art"], "cons": []}`, text)
}

func TestResponseTextFailures(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.ErrorContains(t, err, "no candidates")

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorContains(t, err, "safety")

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonMaxTokens,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"pros": [`)}},
		}},
	})
	assert.ErrorContains(t, err, "max_tokens")
}
