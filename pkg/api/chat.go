package api

import (
	"time"

	"github.com/google/uuid"
)

type GetMessagesParams struct {
	Format string `schema:"format"`
}

type MessagesResponse struct {
	Messages      []Message `json:"messages"`
	AwaitingReply bool      `json:"awaiting_reply"`
}

type ReplaceMessagesRequest struct {
	Messages []Message `json:"messages"`
}

type AskRequest struct {
	Question string `json:"question"`
	// Wait holds the request open until the reply has been written.
	Wait bool `json:"wait"`
}

type AskResponse struct {
	RequestId string   `json:"request_id"`
	Message   *Message `json:"message,omitempty"`
	Failed    bool     `json:"failed"`
}

type SummaryResponse struct {
	Summary string `json:"summary"`
	Failed  bool   `json:"failed"`
}

type PromptsResponse struct {
	Prompts []string `json:"prompts"`
}

type UsageRow struct {
	Operation        string  `json:"operation"`
	Outcome          string  `json:"outcome"`
	Calls            int64   `json:"calls"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	AvgLatencyMs     float64 `json:"avg_latency_ms"`
}

type UsageResponse struct {
	Usage []UsageRow `json:"usage"`
}

type GetUsageCallsParams struct {
	DocumentId string `schema:"document_id"`
	Limit      int    `schema:"limit"`
}

type UsageCall struct {
	Id               uuid.UUID `json:"id"`
	Operation        string    `json:"operation"`
	DocumentId       string    `json:"document_id"`
	Outcome          string    `json:"outcome"`
	Attempts         int       `json:"attempts"`
	LatencyMs        int64     `json:"latency_ms"`
	PromptTokens     int64     `json:"prompt_tokens"`
	CompletionTokens int64     `json:"completion_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	Error            string    `json:"error,omitempty"`
	CreationTime     time.Time `json:"creation_time"`
}

type UsageCallsResponse struct {
	Calls []UsageCall `json:"calls"`
}
