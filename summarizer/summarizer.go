package summarizer

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/models"
)

const (
	requestsMetric = "summarizer_requests_total"
	latencyMetric  = "summarizer_latency_seconds"

	outcomeSuccess         = "success"
	outcomeGenerationError = "generation_error"
	outcomeValidationError = "schema_error"

	defaultMaxOutputTokens = 1024
	defaultGenerateTimeout = 15 * time.Second
)

// GenerateRequest is what a provider receives for one call.
type GenerateRequest struct {
	SystemPrompt    string
	Prompt          string
	Schema          OutputSchema
	MaxOutputTokens int
}

// Generator sends a prompt to a hosted model and returns its raw text answer.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// MetricsRecorder receives per-call metrics. It may be nil.
type MetricsRecorder interface {
	RecordCounter(metricName string, labels map[string]string, value float64)
	RecordTimer(metricName string, labels map[string]string, duration time.Duration)
}

// Summarizer turns a batch of reviews into a validated pros/cons digest.
// It keeps no state between calls and is safe for concurrent use.
type Summarizer struct {
	generator       Generator
	provider        string
	timeout         time.Duration
	maxOutputTokens int
	recorder        MetricsRecorder
	logger          *zap.Logger
}

func NewSummarizer(generator Generator, summarizerConfig config.SummarizerConfig, recorder MetricsRecorder, logger *zap.Logger) *Summarizer {
	timeout := summarizerConfig.Timeout()
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}

	maxOutputTokens := summarizerConfig.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = defaultMaxOutputTokens
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Summarizer{
		generator:       generator,
		provider:        summarizerConfig.Provider,
		timeout:         timeout,
		maxOutputTokens: maxOutputTokens,
		recorder:        recorder,
		logger:          logger,
	}
}

// SummarizeReviews makes exactly one model call. Failures are returned as
// *GenerationError or *SchemaValidationError; nothing is retried.
func (s *Summarizer) SummarizeReviews(ctx context.Context, req models.SummarizeRequest) (models.SummarizeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.generator.Generate(ctx, GenerateRequest{
		SystemPrompt:    systemPrompt,
		Prompt:          BuildPrompt(req),
		Schema:          ResultSchema,
		MaxOutputTokens: s.maxOutputTokens,
	})
	s.recordLatency(time.Since(start))

	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("model returned an empty response")
	}
	if err != nil {
		s.recordOutcome(outcomeGenerationError)
		s.logger.Warn("review summary generation failed",
			zap.String("provider", s.provider),
			zap.String("mangaTitle", req.MangaTitle),
			zap.Int("reviews", len(req.Reviews)),
			zap.Error(err))
		return models.SummarizeResult{}, &GenerationError{Provider: s.provider, Err: err}
	}

	result, err := ParseResult(raw)
	if err != nil {
		s.recordOutcome(outcomeValidationError)
		s.logger.Warn("review summary rejected",
			zap.String("provider", s.provider),
			zap.String("mangaTitle", req.MangaTitle),
			zap.Error(err))
		return models.SummarizeResult{}, err
	}

	s.recordOutcome(outcomeSuccess)
	return result, nil
}

func (s *Summarizer) recordOutcome(outcome string) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordCounter(requestsMetric, map[string]string{
		"provider": s.provider,
		"outcome":  outcome,
	}, 1)
}

func (s *Summarizer) recordLatency(duration time.Duration) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordTimer(latencyMetric, map[string]string{"provider": s.provider}, duration)
}
