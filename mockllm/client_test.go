package mockllm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/summarizer"
)

func TestGenerateDerivesProsAndCons(t *testing.T) {
	client := NewMockLLMClient()
	prompt := summarizer.BuildPrompt(models.SummarizeRequest{
		MangaTitle: "Test Manga",
		Reviews:    []string{"Great art, slow pacing", "Amazing art, loved it", "Pacing is too slow"},
	})

	out, err := client.Generate(context.Background(), summarizer.GenerateRequest{Prompt: prompt})
	require.NoError(t, err)

	result, err := summarizer.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Great art", "Amazing art", "Loved it"}, result.Pros)
	assert.Equal(t, []string{"Slow pacing", "Pacing is too slow"}, result.Cons)
}

func TestGenerateWithoutReviewsReturnsEmptyLists(t *testing.T) {
	client := NewMockLLMClient()
	prompt := summarizer.BuildPrompt(models.SummarizeRequest{MangaTitle: "Empty"})

	out, err := client.Generate(context.Background(), summarizer.GenerateRequest{Prompt: prompt})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pros":[],"cons":[]}`, out)
}

func TestGenerateFixedResponseAndError(t *testing.T) {
	out, err := NewMockLLMClientWithResponse(`{"pros":["x"],"cons":[]}`).Generate(context.Background(), summarizer.GenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, `{"pros":["x"],"cons":[]}`, out)

	boom := errors.New("boom")
	_, err = NewMockLLMClientWithError(boom).Generate(context.Background(), summarizer.GenerateRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestGenerateDelayHonorsContext(t *testing.T) {
	client := NewMockLLMClientWithResponse(`{}`).WithDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, summarizer.GenerateRequest{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, client.Requests(), 1)
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"great art", "Great art"},
		{"équipe soignée", "Équipe soignée"},
		{"über spannend", "Über spannend"},
		{"ワンピース", "ワンピース"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, capitalize(tt.in), tt.in)
	}
}

func TestGenerateKeepsAccentedClausesValid(t *testing.T) {
	client := NewMockLLMClient()
	prompt := summarizer.BuildPrompt(models.SummarizeRequest{
		MangaTitle: "Test Manga",
		Reviews:    []string{"écriture is great, ürban setting is boring"},
	})

	out, err := client.Generate(context.Background(), summarizer.GenerateRequest{Prompt: prompt})
	require.NoError(t, err)

	result, err := summarizer.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Écriture is great"}, result.Pros)
	assert.Equal(t, []string{"Ürban setting is boring"}, result.Cons)
}
