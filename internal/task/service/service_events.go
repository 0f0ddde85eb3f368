package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
)

const eventSource = "taskstore"

func (s *Service) publishTaskEvent(ctx context.Context, eventType string, task *models.Task, previousColumn models.Column) {
	if s.eventBus == nil {
		return
	}

	data := map[string]interface{}{
		"task_id":     task.ID,
		"title":       task.Title,
		"description": task.Description,
		"column":      string(task.Column),
		"position":    task.Position,
		"created_at":  task.CreatedAt.Format(time.RFC3339),
		"updated_at":  task.UpdatedAt.Format(time.RFC3339),
	}
	if previousColumn != "" && previousColumn != task.Column {
		data["previous_column"] = string(previousColumn)
	}

	s.publish(ctx, eventType, data)
}

func (s *Service) publishRebalanceEvent(ctx context.Context, column models.Column, count int) {
	if s.eventBus == nil {
		return
	}
	s.publish(ctx, events.ColumnRebalanced, map[string]interface{}{
		"column": string(column),
		"count":  count,
	})
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	event := bus.NewEvent(eventType, eventSource, data)
	if err := s.eventBus.Publish(ctx, eventType, event); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
