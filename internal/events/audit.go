package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events/bus"
)

// AuditQueue is the queue group used by audit subscribers so that only one
// store replica logs each event.
const AuditQueue = "taskstore-audit"

// SubscribeAudit logs every event matching subject at info level.
func SubscribeAudit(b bus.EventBus, subject string, log *logger.Logger) (bus.Subscription, error) {
	sub, err := b.QueueSubscribe(subject, AuditQueue, func(ctx context.Context, event *bus.Event) error {
		fields := []zap.Field{
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
			zap.String("source", event.Source),
		}
		if id := event.TaskID(); id != "" {
			fields = append(fields, zap.String("task_id", id))
		}
		if col := event.Column(); col != "" {
			fields = append(fields, zap.String("column", col))
		}
		log.Info("event", fields...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe audit log: %w", err)
	}
	return sub, nil
}
