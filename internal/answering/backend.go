package answering

import "context"

type AnswerRequest struct {
	// DocumentID is only used for bookkeeping and is never sent to a backend.
	DocumentID string `json:"-"`

	Question        string `json:"question"`
	DocumentContent string `json:"documentContent"`
	ChatHistory     string `json:"chatHistory"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
	Usage  Usage  `json:"usage,omitempty"`
}

type SummarizeRequest struct {
	DocumentID string `json:"-"`

	DocumentContent string `json:"documentContent"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
	Usage   Usage  `json:"usage,omitempty"`
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Backend is the external language-model service. Implementations may return
// a *ServiceError when the provider exposes a structured failure code; any
// other error is classified by inspecting its message.
type Backend interface {
	Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error)
	Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error)
}
