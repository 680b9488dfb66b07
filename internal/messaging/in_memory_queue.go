package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type inMemoryTask struct {
	queue   string
	payload []byte
}

func (t *inMemoryTask) Type() string {
	return t.queue
}

func (t *inMemoryTask) Payload() []byte {
	return t.payload
}

var (
	_ Publisher = (*InMemoryQueue)(nil)
	_ Receiver  = (*InMemoryQueue)(nil)
)

type InMemoryQueue struct {
	mu     sync.RWMutex
	closed bool
	tasks  chan Task
}

func NewInMemoryQueue(capacity int) *InMemoryQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &InMemoryQueue{
		tasks: make(chan Task, capacity),
	}
}

func (q *InMemoryQueue) publishTaskInternal(ctx context.Context, queue string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", queue, err)
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- &inMemoryTask{queue: queue, payload: data}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *InMemoryQueue) PublishAskTask(ctx context.Context, payload AskTaskPayload) error {
	return q.publishTaskInternal(ctx, AskQueue, payload)
}

func (q *InMemoryQueue) Tasks() <-chan Task {
	return q.tasks
}

// Close stops accepting tasks. Tasks already queued are still delivered.
func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
}

func DecodeAskTask(task Task) (AskTaskPayload, error) {
	if task.Type() != AskQueue {
		return AskTaskPayload{}, fmt.Errorf("unexpected task type %q", task.Type())
	}
	var payload AskTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AskTaskPayload{}, fmt.Errorf("error decoding ask task: %w", err)
	}
	return payload, nil
}
