package chat

import (
	"context"
	"log/slog"

	"pdf-insight/internal/answering"
	"pdf-insight/internal/messaging"
)

// Start launches the workers that answer queued questions.
func (s *Service) Start() {
	workers := max(s.workers, 1)
	slog.Info("starting chat workers", "workers", workers)

	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.runWorker(i)
	}
}

// Stop closes the queue and waits for queued questions to be answered.
func (s *Service) Stop() {
	s.publisher.Close()
	s.receiver.Close()
	s.wg.Wait()
}

func (s *Service) runWorker(id int) {
	defer s.wg.Done()

	for task := range s.receiver.Tasks() {
		payload, err := messaging.DecodeAskTask(task)
		if err != nil {
			slog.Error("discarding malformed task", "worker", id, "type", task.Type(), "error", err)
			continue
		}
		s.answer(payload)
	}

	slog.Info("chat worker stopped", "worker", id)
}

// answer is detached from the requester: nobody can cancel a question once
// it has been queued.
func (s *Service) answer(payload messaging.AskTaskPayload) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.answerer.Answer(ctx, answering.AnswerRequest{
		DocumentID:      payload.DocumentID,
		Question:        payload.Question,
		DocumentContent: payload.DocumentContent,
		ChatHistory:     payload.Transcript,
	})
	if err != nil {
		slog.Error("error answering question", "document_id", payload.DocumentID, "request_id", payload.RequestID, "error", err)
		text = answering.FallbackMessage(err)
	}

	s.complete(payload, text, err)
}
