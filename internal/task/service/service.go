// Package service implements the task store's business rules on top of a repository.
package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/board/position"
	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/repository"
)

// Service provides task store operations.
type Service struct {
	repo     repository.Repository
	eventBus bus.EventBus
	logger   *logger.Logger
}

// NewService creates a new task service. eventBus may be nil.
func NewService(repo repository.Repository, eventBus bus.EventBus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   log,
	}
}

// NewTaskID returns a time-ordered task id.
func NewTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CreateTask validates and stores a new task.
func (s *Service) CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	if !req.Column.Valid() {
		return nil, apperrors.ValidationError("column", "must be one of backlog, inprogress, review, done")
	}

	task := &models.Task{
		ID:          strings.TrimSpace(req.ID),
		Title:       req.Title,
		Description: req.Description,
		Column:      req.Column,
	}
	if task.ID == "" {
		task.ID = NewTaskID()
	}

	if req.Position != nil {
		task.Position = *req.Position
	} else {
		pos, err := s.tailPosition(ctx, req.Column)
		if err != nil {
			return nil, err
		}
		task.Position = pos
	}

	if _, err := s.repo.GetTask(ctx, task.ID); err == nil {
		return nil, apperrors.BadRequest("task already exists: " + task.ID)
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task", zap.String("task_id", task.ID), zap.Error(err))
		return nil, err
	}

	s.publishTaskEvent(ctx, events.TaskCreated, task, "")
	s.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("column", string(task.Column)),
		zap.Int64("position", task.Position))
	return task, nil
}

// tailPosition allocates a position after the last task of column.
func (s *Service) tailPosition(ctx context.Context, column models.Column) (int64, error) {
	last, _, err := s.repo.ListTasks(ctx, models.ListOptions{Column: column, Desc: true, Limit: 1})
	if err != nil {
		return 0, err
	}
	var positions []int64
	if len(last) > 0 {
		positions = []int64{last[0].Position}
	}
	return position.Allocate(len(positions), positions), nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// UpdateTask applies a partial update. A column change is logged as a move.
func (s *Service) UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	previousColumn := task.Column

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Column != nil {
		if !req.Column.Valid() {
			return nil, apperrors.ValidationError("column", "must be one of backlog, inprogress, review, done")
		}
		task.Column = *req.Column
	}
	if req.Position != nil {
		task.Position = *req.Position
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		s.logger.Error("failed to update task", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}

	s.publishTaskEvent(ctx, events.TaskUpdated, task, previousColumn)
	if previousColumn != task.Column || req.Position != nil {
		s.logger.Info("task moved",
			zap.String("task_id", id),
			zap.String("from_column", string(previousColumn)),
			zap.String("to_column", string(task.Column)),
			zap.Int64("position", task.Position))
	} else {
		s.logger.Info("task updated", zap.String("task_id", id))
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		s.logger.Error("failed to delete task", zap.String("task_id", id), zap.Error(err))
		return err
	}

	s.publishTaskEvent(ctx, events.TaskDeleted, task, "")
	s.logger.Info("task deleted", zap.String("task_id", id))
	return nil
}

// ListTasks returns a window of tasks.
func (s *Service) ListTasks(ctx context.Context, opts models.ListOptions) (*ListTasksResult, error) {
	if opts.Column != "" && !opts.Column.Valid() {
		return nil, apperrors.ValidationError("column", "must be one of backlog, inprogress, review, done")
	}
	tasks, total, err := s.repo.ListTasks(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &ListTasksResult{Tasks: tasks, Total: total}, nil
}

// RebalanceColumn renumbers every task of column to evenly spaced positions.
func (s *Service) RebalanceColumn(ctx context.Context, column models.Column) ([]*models.Task, error) {
	if !column.Valid() {
		return nil, apperrors.ValidationError("column", "must be one of backlog, inprogress, review, done")
	}
	tasks, err := s.repo.RebalanceColumn(ctx, column, position.Renumber)
	if err != nil {
		s.logger.Error("failed to rebalance column", zap.String("column", string(column)), zap.Error(err))
		return nil, err
	}

	s.publishRebalanceEvent(ctx, column, len(tasks))
	s.logger.Info("column rebalanced", zap.String("column", string(column)), zap.Int("count", len(tasks)))
	return tasks, nil
}
