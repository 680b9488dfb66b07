package answering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LangchainBackend serves any OpenAI-compatible endpoint through langchaingo,
// typically a local model server reached via baseURL.
type LangchainBackend struct {
	llm     *openai.LLM
	temp    float64
	prompts *Prompts
}

func NewLangchainBackend(apiKey, baseURL, model string, temp float64, prompts *Prompts) (*LangchainBackend, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating langchain client: %w", err)
	}

	return &LangchainBackend{llm: llm, temp: temp, prompts: prompts}, nil
}

func (l *LangchainBackend) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	system, user, err := l.prompts.Answer(req)
	if err != nil {
		return AnswerResponse{}, err
	}
	text, usage, err := l.generate(ctx, system, user)
	if err != nil {
		return AnswerResponse{}, err
	}
	return AnswerResponse{Answer: text, Usage: usage}, nil
}

func (l *LangchainBackend) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	system, user, err := l.prompts.Summarize(req)
	if err != nil {
		return SummarizeResponse{}, err
	}
	text, usage, err := l.generate(ctx, system, user)
	if err != nil {
		return SummarizeResponse{}, err
	}
	return SummarizeResponse{Summary: text, Usage: usage}, nil
}

func (l *LangchainBackend) generate(ctx context.Context, systemPrompt, prompt string) (string, Usage, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}

	res, err := l.llm.GenerateContent(ctx, messages, llms.WithTemperature(l.temp))
	if err != nil {
		return "", Usage{}, fmt.Errorf("langchain generation failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", Usage{}, errors.New("langchain returned no choices")
	}

	choice := res.Choices[0]
	usage := usageFromGenerationInfo(choice.GenerationInfo)
	if strings.TrimSpace(choice.Content) == "" {
		return "", usage, &ServiceError{Kind: KindFailure, Err: fmt.Errorf("langchain: %w", ErrEmptyResponse)}
	}
	return choice.Content, usage, nil
}

func usageFromGenerationInfo(info map[string]any) Usage {
	get := func(key string) int64 {
		switch v := info[key].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
		return 0
	}
	return Usage{
		PromptTokens:     get("PromptTokens"),
		CompletionTokens: get("CompletionTokens"),
		TotalTokens:      get("TotalTokens"),
	}
}
