package answering_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pdf-insight/internal/answering"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	calls    int
	errs     []error
	answer   string
	summary  string
	lastReq  answering.AnswerRequest
	lastSumm answering.SummarizeRequest
	usage    answering.Usage
}

func (f *fakeBackend) next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeBackend) Answer(ctx context.Context, req answering.AnswerRequest) (answering.AnswerResponse, error) {
	f.lastReq = req
	if err := f.next(); err != nil {
		return answering.AnswerResponse{}, err
	}
	return answering.AnswerResponse{Answer: f.answer, Usage: f.usage}, nil
}

func (f *fakeBackend) Summarize(ctx context.Context, req answering.SummarizeRequest) (answering.SummarizeResponse, error) {
	f.lastSumm = req
	if err := f.next(); err != nil {
		return answering.SummarizeResponse{}, err
	}
	return answering.SummarizeResponse{Summary: f.summary, Usage: f.usage}, nil
}

type memoryRecorder struct {
	mu    sync.Mutex
	calls []answering.Call
}

func (m *memoryRecorder) RecordCall(ctx context.Context, call answering.Call) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return nil
}

func noWait() backoff.BackOff { return &backoff.ZeroBackOff{} }

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	backend := &fakeBackend{answer: "unused"}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec))

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := client.Answer(context.Background(), answering.AnswerRequest{Question: q})
		assert.ErrorIs(t, err, answering.ErrEmptyQuestion)
	}
	assert.Equal(t, 0, backend.calls)
	assert.Empty(t, rec.calls)
}

func TestAnswerReturnsBackendText(t *testing.T) {
	backend := &fakeBackend{answer: "It covers Q3 revenue.", usage: answering.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec))

	answer, err := client.Answer(context.Background(), answering.AnswerRequest{
		DocumentID:      "doc-1",
		Question:        "  What is this about?  ",
		DocumentContent: "data:application/pdf;base64,AAAA",
		ChatHistory:     "user: What is this about?",
	})
	require.NoError(t, err)
	assert.Equal(t, "It covers Q3 revenue.", answer)
	assert.Equal(t, "What is this about?", backend.lastReq.Question)

	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, answering.OperationAnswer, call.Operation)
	assert.Equal(t, "doc-1", call.DocumentID)
	assert.Equal(t, answering.OutcomeOK, call.Outcome)
	assert.Equal(t, 1, call.Attempts)
	assert.Equal(t, int64(15), call.Usage.TotalTokens)
}

func TestOverloadedIsRetried(t *testing.T) {
	backend := &fakeBackend{
		answer: "finally",
		errs:   []error{errors.New("The model is overloaded. Please try again later.")},
	}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec), answering.WithBackOff(noWait))

	answer, err := client.Answer(context.Background(), answering.AnswerRequest{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, "finally", answer)
	assert.Equal(t, 2, backend.calls)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, 2, rec.calls[0].Attempts)
}

func TestOverloadedExhaustsRetries(t *testing.T) {
	overloaded := &answering.ServiceError{Kind: answering.KindOverloaded, Err: errors.New("busy")}
	backend := &fakeBackend{errs: []error{overloaded, overloaded, overloaded, overloaded}}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec), answering.WithBackOff(noWait), answering.WithMaxRetries(2))

	_, err := client.Answer(context.Background(), answering.AnswerRequest{Question: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, answering.ErrOverloaded)
	assert.ErrorIs(t, err, answering.ErrServiceFailure)
	assert.True(t, answering.IsOverloaded(err))
	assert.Equal(t, answering.OverloadedFallback, answering.FallbackMessage(err))
	assert.Equal(t, 3, backend.calls)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, answering.OutcomeOverloaded, rec.calls[0].Outcome)
	assert.NotEmpty(t, rec.calls[0].Error)
}

func TestGenericFailureIsNotRetried(t *testing.T) {
	backend := &fakeBackend{errs: []error{errors.New("connection refused")}}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec), answering.WithBackOff(noWait))

	_, err := client.Answer(context.Background(), answering.AnswerRequest{Question: "q"})
	require.Error(t, err)
	assert.ErrorIs(t, err, answering.ErrServiceFailure)
	assert.NotErrorIs(t, err, answering.ErrOverloaded)
	assert.Equal(t, answering.GenericFallback, answering.FallbackMessage(err))
	assert.Equal(t, 1, backend.calls)
	assert.Equal(t, answering.OutcomeFailed, rec.calls[0].Outcome)
}

func TestSummarize(t *testing.T) {
	backend := &fakeBackend{summary: "A short summary."}
	client := answering.NewClient(backend)

	summary, err := client.Summarize(context.Background(), answering.SummarizeRequest{DocumentContent: "text"})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
	assert.Equal(t, "text", backend.lastSumm.DocumentContent)

	backend.errs = []error{errors.New("boom")}
	_, err = client.Summarize(context.Background(), answering.SummarizeRequest{DocumentContent: "text"})
	assert.ErrorIs(t, err, answering.ErrServiceFailure)
}

func TestOverloadedSurvivesDeadlineDuringBackOff(t *testing.T) {
	overloaded := &answering.ServiceError{Kind: answering.KindOverloaded}
	backend := &fakeBackend{errs: []error{overloaded, overloaded, overloaded, overloaded}}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend,
		answering.WithRecorder(rec),
		answering.WithBackOff(func() backoff.BackOff { return backoff.NewConstantBackOff(300 * time.Millisecond) }),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Summarize(ctx, answering.SummarizeRequest{DocumentContent: "text"})
	require.Error(t, err)
	assert.ErrorIs(t, err, answering.ErrOverloaded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, answering.OverloadedFallback, answering.FallbackMessage(err))
	assert.Equal(t, 1, backend.calls)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, answering.OutcomeOverloaded, rec.calls[0].Outcome)
}

func TestGenericFailureStaysGenericAfterDeadline(t *testing.T) {
	backend := &fakeBackend{errs: []error{context.DeadlineExceeded}}
	client := answering.NewClient(backend, answering.WithBackOff(noWait))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	_, err := client.Answer(ctx, answering.AnswerRequest{Question: "q"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, answering.ErrOverloaded)
}

type slowBackend struct {
	calls int
}

func (s *slowBackend) Answer(ctx context.Context, req answering.AnswerRequest) (answering.AnswerResponse, error) {
	s.calls++
	<-ctx.Done()
	return answering.AnswerResponse{}, ctx.Err()
}

func (s *slowBackend) Summarize(ctx context.Context, req answering.SummarizeRequest) (answering.SummarizeResponse, error) {
	s.calls++
	<-ctx.Done()
	return answering.SummarizeResponse{}, ctx.Err()
}

func TestAttemptTimeoutBoundsEachCall(t *testing.T) {
	backend := &slowBackend{}
	rec := &memoryRecorder{}
	client := answering.NewClient(backend, answering.WithRecorder(rec), answering.WithTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := client.Answer(context.Background(), answering.AnswerRequest{Question: "q"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, answering.ErrOverloaded)
	assert.Equal(t, 1, backend.calls)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, answering.OutcomeFailed, rec.calls[0].Outcome)
}
