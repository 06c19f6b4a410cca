package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Admin         AdminConfig
	Summarizer    SummarizerConfig
	LLM           LLMConfigs
	Clients       ClientConfigs
	Storage       StorageConfig
	GoogleService GoogleServiceConfig
	RateLimit     RateLimitConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

type AdminConfig struct {
	Password string
}

type SummarizerConfig struct {
	Provider        string
	Model           string
	TimeoutSeconds  int
	MaxOutputTokens int
}

// Timeout bounds a single call to the hosted model.
func (c SummarizerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type LLMConfigs struct {
	OpenAI OpenAIConfig
	Gemini GeminiConfig
	Claude ClaudeConfig
}

type OpenAIConfig struct {
	Key     string
	BaseUrl string
}

type GeminiConfig struct {
	Key string
}

type ClaudeConfig struct {
	Key string
}

type ClientConfigs struct {
	Supabase SupabaseConfig
}

type SupabaseConfig struct {
	Url          string
	Key          string
	CacheMinutes int
}

type StorageConfig struct {
	Bucket        string
	PublicBaseUrl string
}

type GoogleServiceConfig struct {
	ProjectId string
	JsonKey   string
}

type RateLimitConfig struct {
	SummariesPerSecond float64
	Burst              int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("summarizer.provider", "gemini")
	v.SetDefault("summarizer.model", "gemini-1.5-flash")
	v.SetDefault("summarizer.timeoutSeconds", 15)
	v.SetDefault("summarizer.maxOutputTokens", 1024)
	v.SetDefault("clients.supabase.cacheMinutes", 5)
	v.SetDefault("rateLimit.summariesPerSecond", 1)
	v.SetDefault("rateLimit.burst", 5)
}

func LoadConfig(configName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if config.Summarizer.TimeoutSeconds <= 0 {
		return nil, fmt.Errorf("summarizer.timeoutSeconds must be positive, got %d", config.Summarizer.TimeoutSeconds)
	}

	return &config, nil
}
