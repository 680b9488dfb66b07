package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pdf-insight/internal/answering"
	"pdf-insight/internal/messaging"
	"pdf-insight/internal/store"
	"pdf-insight/internal/utils"

	"github.com/google/uuid"
)

var ErrAwaitingReply = errors.New("document is awaiting a reply")

// Answerer is satisfied by *answering.Client.
type Answerer interface {
	Answer(ctx context.Context, req answering.AnswerRequest) (string, error)
	Summarize(ctx context.Context, req answering.SummarizeRequest) (string, error)
}

type Summary struct {
	Text   string
	Failed bool
}

type Service struct {
	store     *store.Store
	answerer  Answerer
	publisher messaging.Publisher
	receiver  messaging.Receiver
	inflight  *utils.KeyGate

	workers int
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]*Pending

	wg sync.WaitGroup
}

type Option func(*Service)

func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// WithAnswerTimeout bounds each model call made by a worker. Zero means the
// call runs until the answering client gives up.
func WithAnswerTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithQueue replaces the default in-memory queue. Stop closes both ends.
func WithQueue(publisher messaging.Publisher, receiver messaging.Receiver) Option {
	return func(s *Service) {
		s.publisher = publisher
		s.receiver = receiver
	}
}

func NewService(st *store.Store, answerer Answerer, opts ...Option) *Service {
	s := &Service{
		store:    st,
		answerer: answerer,
		inflight: utils.NewKeyGate(0),
		workers:  4,
		pending:  make(map[string]*Pending),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.publisher == nil || s.receiver == nil {
		queue := messaging.NewInMemoryQueue(100)
		s.publisher, s.receiver = queue, queue
	}
	return s
}

func (s *Service) Store() *store.Store {
	return s.store
}

// Ask appends the question to the document's transcript and queues it for
// the answering service. A document accepts one outstanding question at a
// time; other documents are unaffected.
func (s *Service) Ask(ctx context.Context, documentID, question string) (*Pending, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, answering.ErrEmptyQuestion
	}

	doc, err := s.store.Document(documentID)
	if err != nil {
		return nil, err
	}

	if err := s.inflight.TryAcquire(documentID); err != nil {
		if errors.Is(err, utils.ErrKeyBusy) {
			return nil, fmt.Errorf("%w: %s", ErrAwaitingReply, documentID)
		}
		return nil, err
	}

	history, err := s.store.AppendMessages(documentID, store.Message{Role: store.RoleUser, Content: question})
	if err != nil {
		s.inflight.Release(documentID)
		return nil, err
	}

	p := newPending(uuid.NewString(), documentID)
	s.mu.Lock()
	s.pending[p.RequestID] = p
	s.mu.Unlock()

	payload := messaging.AskTaskPayload{
		RequestID:       p.RequestID,
		DocumentID:      documentID,
		Question:        question,
		DocumentContent: doc.PromptContent(),
		Transcript:      answering.SerializeTranscript(history),
	}

	if err := s.publisher.PublishAskTask(ctx, payload); err != nil {
		slog.Error("error queueing question", "document_id", documentID, "error", err)
		// The question is already in the transcript, so it still gets a reply.
		s.complete(payload, answering.GenericFallback, fmt.Errorf("%w: %v", answering.ErrServiceFailure, err))
	}

	return p, nil
}

func (s *Service) AwaitingReply(documentID string) bool {
	return s.inflight.Held(documentID)
}

// Summarize asks for a summary of the document. It never touches the
// transcript; a failed call yields the fallback text with Failed set.
func (s *Service) Summarize(ctx context.Context, documentID string) (Summary, error) {
	doc, err := s.store.Document(documentID)
	if err != nil {
		return Summary{}, err
	}

	text, err := s.answerer.Summarize(ctx, answering.SummarizeRequest{
		DocumentID:      documentID,
		DocumentContent: doc.PromptContent(),
	})
	if err != nil {
		slog.Error("error summarizing document", "document_id", documentID, "error", err)
		return Summary{Text: answering.FallbackMessage(err), Failed: true}, nil
	}
	return Summary{Text: text}, nil
}

// complete writes the reply, frees the document for the next question and
// resolves the matching Pending.
func (s *Service) complete(payload messaging.AskTaskPayload, text string, failure error) {
	reply := store.Message{Role: store.RoleAssistant, Content: text}

	var resolveErr error
	if _, err := s.store.AppendMessages(payload.DocumentID, reply); err != nil {
		slog.Warn("dropping reply for removed document", "document_id", payload.DocumentID, "request_id", payload.RequestID, "error", err)
		resolveErr = err
	}

	s.inflight.Release(payload.DocumentID)

	s.mu.Lock()
	p, ok := s.pending[payload.RequestID]
	delete(s.pending, payload.RequestID)
	s.mu.Unlock()

	if ok {
		p.resolve(reply, resolveErr, failure)
	}
}
