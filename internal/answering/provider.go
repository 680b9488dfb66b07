package answering

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

const (
	ProviderOpenAI    = "openai"
	ProviderLangchain = "langchain"
	ProviderHTTP      = "http"
)

type BackendConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	ServiceURL  string
	Temperature float64
}

func NewBackend(cfg BackendConfig) (Backend, error) {
	prompts, err := LoadPrompts()
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, prompts), nil
	case ProviderLangchain:
		return NewLangchainBackend(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, prompts)
	case ProviderHTTP:
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("provider %q requires an answering service url", cfg.Provider)
		}
		return NewHTTPBackend(cfg.ServiceURL), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
