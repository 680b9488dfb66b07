package chat

import (
	"context"
	"sync"

	"pdf-insight/internal/store"
)

// Pending is an outstanding question. It resolves exactly once, when the
// worker has written the reply (or the fallback text) to the transcript.
type Pending struct {
	RequestID  string
	DocumentID string

	done    chan struct{}
	once    sync.Once
	reply   store.Message
	err     error
	failure error
}

func newPending(requestID, documentID string) *Pending {
	return &Pending{
		RequestID:  requestID,
		DocumentID: documentID,
		done:       make(chan struct{}),
	}
}

func (p *Pending) resolve(reply store.Message, err, failure error) {
	p.once.Do(func() {
		p.reply = reply
		p.err = err
		p.failure = failure
		close(p.done)
	})
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the reply is written or ctx ends. Giving up does not
// cancel the question; the reply still lands in the transcript.
func (p *Pending) Wait(ctx context.Context) (store.Message, error) {
	select {
	case <-p.done:
		return p.reply, p.err
	case <-ctx.Done():
		return store.Message{}, ctx.Err()
	}
}

// Failure is the answering error behind a fallback reply, nil when the
// reply came from the model. Only meaningful once Done is closed.
func (p *Pending) Failure() error {
	select {
	case <-p.done:
		return p.failure
	default:
		return nil
	}
}
