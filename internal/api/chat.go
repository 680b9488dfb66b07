package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"pdf-insight/internal/answering"
	"pdf-insight/internal/chat"
	"pdf-insight/internal/store"
	"pdf-insight/pkg/api"
)

func (s *BackendService) GetMessages(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.GetMessagesParams](r)
	if err != nil {
		return nil, err
	}

	switch params.Format {
	case "", "text", "html":
	default:
		return nil, CodedErrorf(http.StatusBadRequest, "invalid format '%s': must be 'text' or 'html'", params.Format)
	}

	doc, err := s.lookupDocument(r)
	if err != nil {
		return nil, err
	}

	return api.MessagesResponse{
		Messages:      convertMessages(doc.ChatHistory, params.Format == "html"),
		AwaitingReply: s.chat.AwaitingReply(doc.ID),
	}, nil
}

// ReplaceMessages overwrites the whole transcript. Clients use it to revert
// or clear a conversation.
func (s *BackendService) ReplaceMessages(r *http.Request) (any, error) {
	req, err := ParseRequest[api.ReplaceMessagesRequest](r)
	if err != nil {
		return nil, err
	}

	doc, err := s.lookupDocument(r)
	if err != nil {
		return nil, err
	}

	history := make([]store.Message, 0, len(req.Messages))
	for i, msg := range req.Messages {
		role := store.Role(strings.ToLower(msg.Role))
		if role != store.RoleUser && role != store.RoleAssistant {
			return nil, CodedErrorf(http.StatusBadRequest, "message %d has invalid role '%s'", i, msg.Role)
		}
		history = append(history, store.Message{Role: role, Content: msg.Content})
	}

	if err := s.store.ReplaceHistory(doc.ID, history); err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %s not found", doc.ID)
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.MessagesResponse{
		Messages:      convertMessages(history, false),
		AwaitingReply: s.chat.AwaitingReply(doc.ID),
	}, nil
}

func (s *BackendService) Ask(r *http.Request) (any, error) {
	req, err := ParseRequest[api.AskRequest](r)
	if err != nil {
		return nil, err
	}

	id, err := URLParamUUID(r, "document_id")
	if err != nil {
		return nil, err
	}

	pending, err := s.chat.Ask(r.Context(), id.String(), req.Question)
	if err != nil {
		switch {
		case errors.Is(err, answering.ErrEmptyQuestion):
			return nil, CodedError(http.StatusBadRequest, err)
		case errors.Is(err, store.ErrDocumentNotFound):
			return nil, CodedErrorf(http.StatusNotFound, "document %s not found", id)
		case errors.Is(err, chat.ErrAwaitingReply):
			return nil, CodedError(http.StatusConflict, err)
		default:
			return nil, CodedError(http.StatusInternalServerError, fmt.Errorf("error submitting question: %w", err))
		}
	}

	if !req.Wait {
		return Accepted(api.AskResponse{RequestId: pending.RequestID}), nil
	}

	reply, err := pending.Wait(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %s was removed before the reply arrived", id)
		}
		// The requester went away; the reply is still written to the transcript.
		slog.Info("stopped waiting for reply", "document_id", id, "request_id", pending.RequestID, "error", err)
		return Accepted(api.AskResponse{RequestId: pending.RequestID}), nil
	}

	message := convertMessage(reply, false)
	return api.AskResponse{
		RequestId: pending.RequestID,
		Message:   &message,
		Failed:    pending.Failure() != nil,
	}, nil
}

func (s *BackendService) Summarize(r *http.Request) (any, error) {
	doc, err := s.lookupDocument(r)
	if err != nil {
		return nil, err
	}

	summary, err := s.chat.Summarize(r.Context(), doc.ID)
	if err != nil {
		if errors.Is(err, store.ErrDocumentNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "document %s not found", doc.ID)
		}
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return api.SummaryResponse{Summary: summary.Text, Failed: summary.Failed}, nil
}

func (s *BackendService) GetPrompts(r *http.Request) (any, error) {
	return api.PromptsResponse{Prompts: s.prompts.Samples()}, nil
}

func (s *BackendService) GetUsage(r *http.Request) (any, error) {
	res := api.UsageResponse{Usage: []api.UsageRow{}}
	if s.usage == nil {
		return res, nil
	}

	rows, err := s.usage.Summary(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	for _, row := range rows {
		res.Usage = append(res.Usage, api.UsageRow{
			Operation:        row.Operation,
			Outcome:          row.Outcome,
			Calls:            row.Calls,
			PromptTokens:     row.PromptTokens,
			CompletionTokens: row.CompletionTokens,
			TotalTokens:      row.TotalTokens,
			AvgLatencyMs:     row.AvgLatencyMs,
		})
	}
	return res, nil
}

const (
	defaultUsageCallsLimit = 50
	maxUsageCallsLimit     = 500
)

func (s *BackendService) GetUsageCalls(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.GetUsageCallsParams](r)
	if err != nil {
		return nil, err
	}

	if params.Limit < 0 || params.Limit > maxUsageCallsLimit {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid limit %d: must be between 0 and %d", params.Limit, maxUsageCallsLimit)
	}
	if params.Limit == 0 {
		params.Limit = defaultUsageCallsLimit
	}

	res := api.UsageCallsResponse{Calls: []api.UsageCall{}}
	if s.usage == nil {
		return res, nil
	}

	calls, err := s.usage.RecentCalls(r.Context(), params.DocumentId, params.Limit)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	for _, call := range calls {
		res.Calls = append(res.Calls, convertUsageCall(call))
	}
	return res, nil
}
