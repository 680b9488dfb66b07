package api

import (
	"log/slog"
	"net/http"

	"pdf-insight/internal/database"
	"pdf-insight/internal/ingest"
	"pdf-insight/internal/render"
	"pdf-insight/internal/store"
	"pdf-insight/pkg/api"

	"github.com/google/uuid"
)

// activeIdPtr is nil when no document is active.
func activeIdPtr(id string) *uuid.UUID {
	if id == "" {
		return nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	return &parsed
}

func documentUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		slog.Error("stored document has a non-uuid id", "document_id", id, "error", err)
		return uuid.Nil, CodedErrorf(http.StatusInternalServerError, "document id '%s' is not a valid uuid", id)
	}
	return parsed, nil
}

func (s *BackendService) convertDocumentSummary(doc store.Document) (api.DocumentSummary, error) {
	id, err := documentUUID(doc.ID)
	if err != nil {
		return api.DocumentSummary{}, err
	}
	return api.DocumentSummary{
		Id:            id,
		Name:          doc.Name,
		MessageCount:  len(doc.ChatHistory),
		AwaitingReply: s.chat.AwaitingReply(doc.ID),
	}, nil
}

func (s *BackendService) convertDocumentSummaries(docs []store.Document) ([]api.DocumentSummary, error) {
	out := make([]api.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		summary, err := s.convertDocumentSummary(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}

func convertMessage(msg store.Message, html bool) api.Message {
	out := api.Message{Role: string(msg.Role), Content: msg.Content}
	if html {
		out.HTML = render.Message(msg)
	}
	return out
}

func convertMessages(history []store.Message, html bool) []api.Message {
	out := make([]api.Message, 0, len(history))
	for _, msg := range history {
		out = append(out, convertMessage(msg, html))
	}
	return out
}

func convertNotices(notices []ingest.Notice) []api.Notice {
	out := make([]api.Notice, 0, len(notices))
	for _, n := range notices {
		out = append(out, api.Notice{Title: n.Title, Description: n.Description})
	}
	return out
}

func convertFailures(failures []ingest.FileFailure) []api.FileFailure {
	out := make([]api.FileFailure, 0, len(failures))
	for _, f := range failures {
		out = append(out, api.FileFailure{Name: f.Name, Error: f.Err.Error()})
	}
	return out
}

func convertUsageCall(call database.AnsweringCall) api.UsageCall {
	return api.UsageCall{
		Id:               call.Id,
		Operation:        call.Operation,
		DocumentId:       call.DocumentId,
		Outcome:          call.Outcome,
		Attempts:         call.Attempts,
		LatencyMs:        call.LatencyMs,
		PromptTokens:     call.PromptTokens,
		CompletionTokens: call.CompletionTokens,
		TotalTokens:      call.TotalTokens,
		Error:            call.ErrorText(),
		CreationTime:     call.CreationTime,
	}
}
