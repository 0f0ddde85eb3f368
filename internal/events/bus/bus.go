// Package bus carries task store mutations and board moves between processes.
// Subjects are dotted ("task.updated", "board.task.moved") and subscriptions
// accept the NATS wildcards "*" and ">".
package bus

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one published fact about a task or the board. Data is free-form,
// but task events carry "task_id" and usually "column".
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// NewEvent stamps an event with a time-ordered id.
func NewEvent(eventType, source string, data map[string]interface{}) *Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Event{
		ID:        id.String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// TaskID returns the "task_id" entry of Data, or "".
func (e *Event) TaskID() string {
	return e.stringField("task_id")
}

// Column returns the "column" entry of Data, or "".
func (e *Event) Column() string {
	return e.stringField("column")
}

func (e *Event) stringField(key string) string {
	if e == nil || e.Data == nil {
		return ""
	}
	s, _ := e.Data[key].(string)
	return s
}

type EventHandler func(ctx context.Context, event *Event) error

// Subscription is a live registration returned by Subscribe.
type Subscription interface {
	Unsubscribe() error
	IsValid() bool
}

// EventBus is implemented by the in-memory bus (single process) and the
// NATS bus (store and board clients on separate hosts).
type EventBus interface {
	Publish(ctx context.Context, subject string, event *Event) error
	Subscribe(subject string, handler EventHandler) (Subscription, error)
	// QueueSubscribe delivers each event to one member of queue.
	QueueSubscribe(subject, queue string, handler EventHandler) (Subscription, error)
	Close()
	IsConnected() bool
}
