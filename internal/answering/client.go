package answering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	OperationAnswer    = "answer"
	OperationSummarize = "summarize"

	OutcomeOK         = "ok"
	OutcomeOverloaded = "overloaded"
	OutcomeFailed     = "failed"
)

type Call struct {
	Operation  string
	DocumentID string
	Outcome    string
	Attempts   int
	Latency    time.Duration
	Usage      Usage
	Error      string
}

// Recorder receives one Call per client operation that reached the backend.
type Recorder interface {
	RecordCall(ctx context.Context, call Call) error
}

type Client struct {
	backend    Backend
	recorder   Recorder
	maxRetries int
	timeout    time.Duration
	newBackOff func() backoff.BackOff
}

type ClientOption func(*Client)

func WithRecorder(r Recorder) ClientOption {
	return func(c *Client) { c.recorder = r }
}

// WithMaxRetries sets how many times an overloaded call is retried. Generic
// failures are never retried.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = max(n, 0) }
}

// WithTimeout bounds each attempt. Zero leaves the deadline to the caller's context.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.timeout = d }
}

func WithBackOff(f func() backoff.BackOff) ClientOption {
	return func(c *Client) { c.newBackOff = f }
}

func NewClient(backend Backend, opts ...ClientOption) *Client {
	c := &Client{
		backend:    backend,
		maxRetries: 2,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 5 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer rejects blank questions before any network call. Every other
// failure is returned as a *ServiceError.
func (c *Client) Answer(ctx context.Context, req AnswerRequest) (string, error) {
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return "", ErrEmptyQuestion
	}

	var res AnswerResponse
	err := c.do(ctx, OperationAnswer, req.DocumentID, func(ctx context.Context) (Usage, error) {
		var err error
		res, err = c.backend.Answer(ctx, req)
		return res.Usage, err
	})
	if err != nil {
		return "", err
	}
	return res.Answer, nil
}

func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (string, error) {
	var res SummarizeResponse
	err := c.do(ctx, OperationSummarize, req.DocumentID, func(ctx context.Context) (Usage, error) {
		var err error
		res, err = c.backend.Summarize(ctx, req)
		return res.Usage, err
	})
	if err != nil {
		return "", err
	}
	return res.Summary, nil
}

func (c *Client) do(ctx context.Context, operation, documentID string, attempt func(context.Context) (Usage, error)) error {
	start := time.Now()
	attempts := 0
	var usage Usage
	var overloaded *ServiceError

	op := func() error {
		attempts++

		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.timeout)
		}
		defer cancel()

		u, err := attempt(attemptCtx)
		usage.PromptTokens += u.PromptTokens
		usage.CompletionTokens += u.CompletionTokens
		usage.TotalTokens += u.TotalTokens
		if err == nil {
			return nil
		}

		serr := Classify(err)
		if serr.Kind != KindOverloaded {
			return backoff.Permanent(serr)
		}
		overloaded = serr
		slog.Warn("answering service overloaded", "operation", operation, "document_id", documentID, "attempt", attempts, "error", err)
		return serr
	}

	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	err := backoff.Retry(op, b)

	call := Call{
		Operation:  operation,
		DocumentID: documentID,
		Outcome:    OutcomeOK,
		Attempts:   attempts,
		Latency:    time.Since(start),
		Usage:      usage,
	}

	if err != nil {
		serr := Classify(err)
		// Running out of time while the backend is still overloaded is overload.
		if ctx.Err() != nil && overloaded != nil && serr.Kind != KindOverloaded {
			cause := ctx.Err()
			if overloaded.Err != nil {
				cause = fmt.Errorf("%w: %w", overloaded.Err, cause)
			}
			serr = &ServiceError{Kind: KindOverloaded, Err: cause}
		}
		err = serr
		call.Outcome = OutcomeFailed
		if serr.Kind == KindOverloaded {
			call.Outcome = OutcomeOverloaded
		}
		call.Error = serr.Error()
		slog.Error("answering service call failed", "operation", operation, "document_id", documentID, "attempts", attempts, "error", serr)
	}

	if c.recorder != nil {
		// The ledger must outlive a requester that already went away.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rerr := c.recorder.RecordCall(recordCtx, call); rerr != nil {
			slog.Warn("error recording answering call", "operation", operation, "error", rerr)
		}
	}

	return err
}

// IsOverloaded reports whether err is the overloaded flavour of ErrServiceFailure.
func IsOverloaded(err error) bool {
	return errors.Is(err, ErrOverloaded)
}
