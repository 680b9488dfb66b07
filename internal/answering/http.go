package answering

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPBackend forwards requests to a remote answering service that accepts
// the AnswerRequest and SummarizeRequest JSON bodies.
type HTTPBackend struct {
	client *resty.Client
}

func NewHTTPBackend(baseURL string) *HTTPBackend {
	return &HTTPBackend{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetTimeout(5 * time.Minute),
	}
}

type serviceErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *HTTPBackend) Answer(ctx context.Context, req AnswerRequest) (AnswerResponse, error) {
	var res AnswerResponse
	if err := h.post(ctx, "/answer", req, &res); err != nil {
		return AnswerResponse{}, err
	}
	if strings.TrimSpace(res.Answer) == "" {
		return AnswerResponse{Usage: res.Usage}, emptyResponse("/answer")
	}
	return res, nil
}

func (h *HTTPBackend) Summarize(ctx context.Context, req SummarizeRequest) (SummarizeResponse, error) {
	var res SummarizeResponse
	if err := h.post(ctx, "/summarize", req, &res); err != nil {
		return SummarizeResponse{}, err
	}
	if strings.TrimSpace(res.Summary) == "" {
		return SummarizeResponse{Usage: res.Usage}, emptyResponse("/summarize")
	}
	return res, nil
}

func emptyResponse(endpoint string) error {
	slog.Error("answering service returned no text", "endpoint", endpoint)
	return &ServiceError{Kind: KindFailure, Err: fmt.Errorf("%s: %w", endpoint, ErrEmptyResponse)}
}

func (h *HTTPBackend) post(ctx context.Context, endpoint string, body, out any) error {
	res, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("error calling answering service %s: %w", endpoint, err)
	}

	if !res.IsSuccess() {
		slog.Error("answering service returned error", "endpoint", endpoint, "status_code", res.StatusCode(), "body", res.String())

		var parsed serviceErrorBody
		msg := res.String()
		if err := json.Unmarshal(res.Body(), &parsed); err == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return &ServiceError{
			Kind: KindFromStatus(res.StatusCode(), parsed.Error.Code),
			Err:  fmt.Errorf("%s returned status %d: %s", endpoint, res.StatusCode(), msg),
		}
	}

	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("error parsing answering service response: %w", err)
	}
	return nil
}
