// Package notice surfaces failed board actions to the operator.
package notice

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
)

// Messages shown for each failing action.
const (
	MoveFailed   = "Failed to move task"
	SaveFailed   = "Failed to save task"
	DeleteFailed = "Failed to delete task"
	TitleMissing = "Title required"
)

// Notice is a user-visible message about an action that did not go through.
type Notice struct {
	Message string
	TaskID  string
	Err     error
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %v", n.Message, n.Err)
	}
	return n.Message
}

// Notifier delivers notices.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// LogNotifier writes notices to the structured log at warn level.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notice) {
	log := l.log.WithContext(ctx)
	if n.TaskID != "" {
		log = log.WithTaskID(n.TaskID)
	}
	if n.Err != nil {
		log = log.WithError(n.Err)
	}
	log.Warn(n.Message)
}

// WriterNotifier prints notices line by line, e.g. to a terminal.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (wn *WriterNotifier) Notify(_ context.Context, n Notice) {
	wn.mu.Lock()
	defer wn.mu.Unlock()
	_, _ = fmt.Fprintln(wn.w, n.String())
}

// BusNotifier publishes notices as board.notice events so other processes can show them.
type BusNotifier struct {
	bus    bus.EventBus
	source string
	log    *logger.Logger
}

func NewBusNotifier(b bus.EventBus, source string, log *logger.Logger) *BusNotifier {
	return &BusNotifier{bus: b, source: source, log: log}
}

func (bn *BusNotifier) Notify(ctx context.Context, n Notice) {
	data := map[string]interface{}{
		"message": n.Message,
	}
	if n.TaskID != "" {
		data["task_id"] = n.TaskID
	}
	if n.Err != nil {
		data["error"] = n.Err.Error()
	}
	event := bus.NewEvent(events.BoardNotice, bn.source, data)
	if err := bn.bus.Publish(ctx, events.BoardNotice, event); err != nil {
		bn.log.Error("failed to publish notice", zap.Error(err))
	}
}

// Multi fans a notice out to every non-nil notifier.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, n)
		}
	}
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}
