package summarizer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/mockllm"
	"github.com/mangashelf/mangashelf/models"
	"github.com/mangashelf/mangashelf/summarizer"
)

var testConfig = config.SummarizerConfig{Provider: "mock", TimeoutSeconds: 2, MaxOutputTokens: 256}

type recordedMetric struct {
	name   string
	labels map[string]string
}

type fakeRecorder struct {
	mu       sync.Mutex
	counters []recordedMetric
	timers   []recordedMetric
}

func (r *fakeRecorder) RecordCounter(metricName string, labels map[string]string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, recordedMetric{name: metricName, labels: labels})
}

func (r *fakeRecorder) RecordTimer(metricName string, labels map[string]string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers = append(r.timers, recordedMetric{name: metricName, labels: labels})
}

func TestSummarizeReviewsReturnsModelOutputUnmodified(t *testing.T) {
	generator := mockllm.NewMockLLMClientWithResponse(`{"pros": ["Great art"], "cons": ["Slow pacing"]}`)
	recorder := &fakeRecorder{}
	s := summarizer.NewSummarizer(generator, testConfig, recorder, nil)

	result, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{
		MangaTitle: "Test Manga",
		Reviews:    []string{"Great art, slow pacing", "Amazing art, loved it", "Pacing is too slow"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SummarizeResult{Pros: []string{"Great art"}, Cons: []string{"Slow pacing"}}, result)

	requests := generator.Requests()
	require.Len(t, requests, 1)
	assert.Contains(t, requests[0].Prompt, `"Test Manga"`)
	assert.Contains(t, requests[0].Prompt, "- Great art, slow pacing\n")
	assert.Contains(t, requests[0].Prompt, "- Amazing art, loved it\n")
	assert.Contains(t, requests[0].Prompt, "- Pacing is too slow\n")
	assert.Equal(t, summarizer.ResultSchema, requests[0].Schema)
	assert.Equal(t, 256, requests[0].MaxOutputTokens)
	assert.NotEmpty(t, requests[0].SystemPrompt)

	require.Len(t, recorder.counters, 1)
	assert.Equal(t, "success", recorder.counters[0].labels["outcome"])
	assert.Len(t, recorder.timers, 1)
}

func TestSummarizeReviewsWithNoReviewsStillCallsModel(t *testing.T) {
	generator := mockllm.NewMockLLMClientWithResponse(`{"pros": [], "cons": []}`)
	s := summarizer.NewSummarizer(generator, testConfig, nil, nil)

	result, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "Test Manga", Reviews: []string{}})
	require.NoError(t, err)
	assert.NotNil(t, result.Pros)
	assert.NotNil(t, result.Cons)
	assert.Empty(t, result.Pros)
	assert.Empty(t, result.Cons)
	assert.Len(t, generator.Requests(), 1)
}

func TestSummarizeReviewsListsAreNeverNil(t *testing.T) {
	s := summarizer.NewSummarizer(mockllm.NewMockLLMClient(), testConfig, nil, nil)

	inputs := [][]string{
		{"Great art"},
		{"Nothing to say"},
		{"Slow start", "Boring middle"},
	}
	for _, reviews := range inputs {
		result, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "T", Reviews: reviews})
		require.NoError(t, err)
		assert.NotNil(t, result.Pros)
		assert.NotNil(t, result.Cons)
	}
}

func TestSummarizeReviewsRejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
		field    string
	}{
		{"missing cons", `{"pros": ["Great art"]}`, "cons"},
		{"pros is a string", `{"pros": "Great art", "cons": []}`, "pros"},
		{"cons is null", `{"pros": [], "cons": null}`, "cons"},
		{"non-string element", `{"pros": [1], "cons": []}`, "pros"},
		{"not json", `Here are the pros and cons`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &fakeRecorder{}
			s := summarizer.NewSummarizer(mockllm.NewMockLLMClientWithResponse(tt.response), testConfig, recorder, nil)

			result, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "Test Manga", Reviews: []string{"ok"}})
			require.Error(t, err)
			assert.ErrorIs(t, err, summarizer.ErrSchemaValidation)
			assert.ErrorIs(t, err, summarizer.ErrSummaryUnavailable)
			assert.NotErrorIs(t, err, summarizer.ErrGeneration)
			assert.Equal(t, models.SummarizeResult{}, result)

			var schemaErr *summarizer.SchemaValidationError
			require.ErrorAs(t, err, &schemaErr)
			assert.Equal(t, tt.field, schemaErr.Field)
			assert.Equal(t, "schema_error", recorder.counters[0].labels["outcome"])
		})
	}
}

func TestSummarizeReviewsPropagatesProviderFailure(t *testing.T) {
	boom := errors.New("connection refused")
	s := summarizer.NewSummarizer(mockllm.NewMockLLMClientWithError(boom), testConfig, nil, nil)

	result, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "Test Manga", Reviews: []string{"ok"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, summarizer.ErrGeneration)
	assert.ErrorIs(t, err, summarizer.ErrSummaryUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, result.Pros)

	var genErr *summarizer.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "mock", genErr.Provider)
}

func TestSummarizeReviewsTimesOut(t *testing.T) {
	generator := mockllm.NewMockLLMClientWithResponse(`{"pros": [], "cons": []}`).WithDelay(5 * time.Second)
	cfg := testConfig
	cfg.TimeoutSeconds = 1
	s := summarizer.NewSummarizer(generator, cfg, nil, nil)

	start := time.Now()
	_, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "Test Manga", Reviews: []string{"ok"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, summarizer.ErrGeneration)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestSummarizeReviewsHonorsCallerCancellation(t *testing.T) {
	generator := mockllm.NewMockLLMClientWithResponse(`{"pros": [], "cons": []}`).WithDelay(5 * time.Second)
	s := summarizer.NewSummarizer(generator, testConfig, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SummarizeReviews(ctx, models.SummarizeRequest{MangaTitle: "Test Manga"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeReviewsTreatsBlankAnswerAsGenerationFailure(t *testing.T) {
	s := summarizer.NewSummarizer(mockllm.NewMockLLMClientWithResponse("  "), testConfig, nil, nil)

	_, err := s.SummarizeReviews(context.Background(), models.SummarizeRequest{MangaTitle: "Test Manga"})
	assert.ErrorIs(t, err, summarizer.ErrGeneration)
}
