package messaging

import (
	"context"
	"errors"
)

const (
	AskQueue = "ask_queue"
)

var ErrQueueClosed = errors.New("queue is closed")

type Task interface {
	Type() string

	Payload() []byte
}

// AskTaskPayload is one question waiting for the answering service. The
// transcript already includes the question as its last line.
type AskTaskPayload struct {
	RequestID       string `json:"request_id"`
	DocumentID      string `json:"document_id"`
	Question        string `json:"question"`
	DocumentContent string `json:"document_content"`
	Transcript      string `json:"transcript"`
}

type Publisher interface {
	PublishAskTask(ctx context.Context, payload AskTaskPayload) error

	Close()
}

type Receiver interface {
	Tasks() <-chan Task

	Close()
}
