package config

import (
	"fmt"
	"strings"
	"time"

	"pdf-insight/internal/answering"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        int    `env:"PORT" envDefault:"8001"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"pdf-insight.db"`

	LLMProvider         string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIKey           string        `env:"OPENAI_API_KEY"`
	LLMModel            string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMBaseURL          string        `env:"LLM_BASE_URL"`
	AnsweringServiceURL string        `env:"ANSWERING_SERVICE_URL"`
	LLMTemperature      float64       `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	AnswerMaxRetries    int           `env:"ANSWER_MAX_RETRIES" envDefault:"2"`
	AnswerTimeout       time.Duration `env:"ANSWER_TIMEOUT" envDefault:"0s"`
	// AnswerAttemptTimeout bounds one backend attempt. AnswerTimeout bounds the whole call.
	AnswerAttemptTimeout time.Duration `env:"ANSWER_ATTEMPT_TIMEOUT" envDefault:"0s"`

	ChatWorkers       int   `env:"CHAT_WORKERS" envDefault:"4"`
	ChatQueueCapacity int   `env:"CHAT_QUEUE_CAPACITY" envDefault:"100"`
	IngestWorkers     int   `env:"INGEST_WORKERS" envDefault:"4"`
	MaxUploadBytes    int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"`

	InboxDir       string   `env:"INBOX_DIR"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	LogFile        string   `env:"LOG_FILE"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.LLMProvider) {
	case answering.ProviderOpenAI, answering.ProviderLangchain:
	case answering.ProviderHTTP:
		if c.AnsweringServiceURL == "" {
			return fmt.Errorf("ANSWERING_SERVICE_URL is required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	default:
		return fmt.Errorf("%w: %s", answering.ErrUnknownProvider, c.LLMProvider)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", c.LLMTemperature)
	}
	if c.AnswerMaxRetries < 0 {
		return fmt.Errorf("ANSWER_MAX_RETRIES must not be negative")
	}
	if c.AnswerTimeout < 0 || c.AnswerAttemptTimeout < 0 {
		return fmt.Errorf("ANSWER_TIMEOUT and ANSWER_ATTEMPT_TIMEOUT must not be negative")
	}
	return nil
}

func (c Config) Backend() answering.BackendConfig {
	return answering.BackendConfig{
		Provider:    c.LLMProvider,
		APIKey:      c.OpenAIKey,
		Model:       c.LLMModel,
		BaseURL:     c.LLMBaseURL,
		ServiceURL:  c.AnsweringServiceURL,
		Temperature: c.LLMTemperature,
	}
}
