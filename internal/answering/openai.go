package answering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type OpenAIBackend struct {
	client  openai.Client
	model   string
	temp    float64
	prompts *Prompts
}

// NewOpenAIBackend talks to the chat completions API. An empty apiKey falls
// back to OPENAI_API_KEY; baseURL overrides the default endpoint. Retries are
// left to Client so overload handling is uniform across backends.
func NewOpenAIBackend(apiKey, baseURL, model string, temp float64, prompts *Prompts) *OpenAIBackend {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	return &OpenAIBackend{
		client:  openai.NewClient(opts...),
		model:   model,
		temp:    temp,
		prompts: prompts,
	}
}

func (o *OpenAIBackend) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	system, user, err := o.prompts.Answer(req)
	if err != nil {
		return AnswerResponse{}, err
	}
	text, usage, err := o.complete(ctx, system, user)
	if err != nil {
		return AnswerResponse{}, err
	}
	return AnswerResponse{Answer: text, Usage: usage}, nil
}

func (o *OpenAIBackend) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	system, user, err := o.prompts.Summarize(req)
	if err != nil {
		return SummarizeResponse{}, err
	}
	text, usage, err := o.complete(ctx, system, user)
	if err != nil {
		return SummarizeResponse{}, err
	}
	return SummarizeResponse{Summary: text, Usage: usage}, nil
}

func (o *OpenAIBackend) complete(ctx context.Context, systemPrompt, prompt string) (string, Usage, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	res, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    messages,
		Temperature: openai.Float(o.temp),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", Usage{}, &ServiceError{Kind: KindFromStatus(apiErr.StatusCode, apiErr.Code), Err: err}
		}
		return "", Usage{}, fmt.Errorf("openai chat completion failed: %w", err)
	}

	usage := Usage{
		PromptTokens:     res.Usage.PromptTokens,
		CompletionTokens: res.Usage.CompletionTokens,
		TotalTokens:      res.Usage.TotalTokens,
	}
	if len(res.Choices) == 0 {
		return "", usage, errors.New("openai returned no choices")
	}
	if strings.TrimSpace(res.Choices[0].Message.Content) == "" {
		return "", usage, &ServiceError{Kind: KindFailure, Err: fmt.Errorf("openai: %w", ErrEmptyResponse)}
	}
	return res.Choices[0].Message.Content, usage, nil
}
