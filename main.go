package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/claude"
	"github.com/mangashelf/mangashelf/gemini"
	googlemonitoring "github.com/mangashelf/mangashelf/googleMonitoring"
	"github.com/mangashelf/mangashelf/internal/config"
	"github.com/mangashelf/mangashelf/internal/handlers"
	"github.com/mangashelf/mangashelf/localratelimiter"
	"github.com/mangashelf/mangashelf/mockllm"
	"github.com/mangashelf/mangashelf/openai"
	"github.com/mangashelf/mangashelf/storage"
	"github.com/mangashelf/mangashelf/summarizer"
	"github.com/mangashelf/mangashelf/supabase"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "default"
	}

	logger, err := newLogger(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize configuration
	config, err := config.LoadConfig(env)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// Google Monitoring Client
	googleMonitoringClient, err := googlemonitoring.NewMonitoringClient(ctx, config.GoogleService.ProjectId, config.GoogleService.JsonKey)
	if err != nil {
		logger.Fatal("failed to create monitoring client", zap.Error(err))
	}
	defer googleMonitoringClient.Close()

	// Summarizer
	generator, err := newGenerator(config)
	if err != nil {
		logger.Fatal("failed to create model client", zap.Error(err))
	}
	reviewSummarizer := summarizer.NewSummarizer(generator, config.Summarizer, googleMonitoringClient, logger)

	// Supabase Client
	supabaseClient := supabase.NewSupabaseClient(config.Clients.Supabase)

	// Storage Client, only when a bucket is configured
	var uploader handlers.ImageUploader
	if config.Storage.Bucket != "" {
		storageClient, err := storage.NewStorageClient(ctx, config.Storage, config.GoogleService.JsonKey)
		if err != nil {
			logger.Fatal("failed to create storage client", zap.Error(err))
		}
		defer storageClient.Close()
		uploader = storageClient
	}

	// Rate Limiter
	rateLimiter := localratelimiter.NewRateLimiter(ctx, config.RateLimit)

	if env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterOptions{
		Store:          supabaseClient,
		Summarizer:     reviewSummarizer,
		Uploader:       uploader,
		MetricsHandler: googleMonitoringClient.Handler(),
		SummaryLimiter: rateLimiter.RateLimiterMiddleware(),
		AdminPassword:  config.Admin.Password,
		AllowedOrigins: config.Server.AllowedOrigins,
		Logger:         logger,
	})

	if googleMonitoringClient.PushEnabled() {
		pusher := googlemonitoring.NewPusher(ctx, googleMonitoringClient, logger)
		if err := pusher.Start(); err != nil {
			logger.Fatal("failed to schedule metrics push", zap.Error(err))
		}
		defer pusher.Stop()
	}

	logger.Info("starting server",
		zap.Int("port", config.Server.Port),
		zap.String("provider", config.Summarizer.Provider),
		zap.String("model", config.Summarizer.Model))

	errCh := make(chan error, 1)
	go func() {
		errCh <- router.Run(fmt.Sprintf(":%d", config.Server.Port))
	}()

	select {
	case err := <-errCh:
		logger.Fatal("server stopped", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newGenerator picks the hosted model behind the summarizer.
func newGenerator(cfg *config.Config) (summarizer.Generator, error) {
	switch cfg.Summarizer.Provider {
	case "gemini":
		return gemini.NewGeminiClient(cfg.LLM.Gemini, cfg.Summarizer.Model), nil
	case "openai":
		return openai.NewOpenAIClient(cfg.LLM.OpenAI, cfg.Summarizer.Model), nil
	case "claude":
		return claude.NewClaudeClient(cfg.LLM.Claude, cfg.Summarizer.Model), nil
	case "mock":
		return mockllm.NewMockLLMClient(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Summarizer.Provider)
	}
}
