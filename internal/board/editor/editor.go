// Package editor implements the create, edit and delete flows of the task dialog.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/board/columncache"
	"github.com/kandev/taskboard/internal/board/notice"
	"github.com/kandev/taskboard/internal/board/position"
	"github.com/kandev/taskboard/internal/board/state"
	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

// Store is the part of the task client the editor uses.
type Store interface {
	First(ctx context.Context, column models.Column) (*taskclient.Task, error)
	Create(ctx context.Context, task taskclient.Task) (*taskclient.Task, error)
	Patch(ctx context.Context, id string, patch taskclient.Patch) (*taskclient.Task, error)
	Delete(ctx context.Context, id string) error
}

// Draft is the content of the editor dialog.
type Draft struct {
	Title       string
	Description string
	Column      models.Column
}

// Editor saves drafts and deletes tasks. The cached columns are invalidated
// after every store call, failed or not; the dialog stays open on failure.
type Editor struct {
	store    Store
	cache    *columncache.Cache
	ui       *state.UI
	notifier notice.Notifier
	log      *logger.Logger
	newID    func() string
}

// New creates an Editor.
func New(store Store, cache *columncache.Cache, ui *state.UI, notifier notice.Notifier, log *logger.Logger) *Editor {
	return &Editor{
		store:    store,
		cache:    cache,
		ui:       ui,
		notifier: notifier,
		log:      log,
		newID:    newTaskID,
	}
}

func newTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// validate normalizes d and rejects a blank title before anything reaches the store.
func (e *Editor) validate(ctx context.Context, d *Draft) error {
	if strings.TrimSpace(d.Title) == "" {
		e.notifier.Notify(ctx, notice.Notice{Message: notice.TitleMissing})
		return apperrors.ValidationError("title", notice.TitleMissing)
	}
	if d.Column == "" {
		d.Column = models.ColumnBacklog
	}
	if !d.Column.Valid() {
		return apperrors.ValidationError("column", fmt.Sprintf("unknown column %q", d.Column))
	}
	return nil
}

// Create stores a new task at the top of its column.
func (e *Editor) Create(ctx context.Context, d Draft) (*taskclient.Task, error) {
	if err := e.validate(ctx, &d); err != nil {
		return nil, err
	}

	task := taskclient.Task{
		ID:          e.newID(),
		Title:       d.Title,
		Description: d.Description,
		Column:      d.Column,
		Position:    e.headPosition(ctx, d.Column),
	}
	log := e.log.WithContext(ctx).WithTaskID(task.ID)

	created, err := e.store.Create(ctx, task)
	e.cache.InvalidateAll()
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		e.notifier.Notify(ctx, notice.Notice{Message: notice.SaveFailed, TaskID: task.ID, Err: err})
		return nil, fmt.Errorf("create task: %w", err)
	}

	e.ui.CloseEditor()
	log.Info("task created",
		zap.String("column", string(task.Column)),
		zap.Int64("position", task.Position))
	return created, nil
}

// headPosition returns a position ahead of the column's first task. A failed
// lookup is logged and falls back to position.Base.
func (e *Editor) headPosition(ctx context.Context, column models.Column) int64 {
	first, err := e.store.First(ctx, column)
	if err != nil {
		e.log.WithContext(ctx).WithColumn(string(column)).
			Warn("failed to calculate position, using base", zap.Error(err))
		return position.Base
	}
	if first == nil {
		return position.Base
	}
	return position.Allocate(0, []int64{first.Position})
}

// Edit saves the title, description and column of an existing task. The
// position is left as is, so a task moved to another column keeps its key.
func (e *Editor) Edit(ctx context.Context, id string, d Draft) (*taskclient.Task, error) {
	if err := e.validate(ctx, &d); err != nil {
		return nil, err
	}
	log := e.log.WithContext(ctx).WithTaskID(id)

	updated, err := e.store.Patch(ctx, id, taskclient.Patch{
		Title:       &d.Title,
		Description: &d.Description,
		Column:      &d.Column,
	})
	e.cache.InvalidateAll()
	if err != nil {
		log.Error("failed to save task", zap.Error(err))
		e.notifier.Notify(ctx, notice.Notice{Message: notice.SaveFailed, TaskID: id, Err: err})
		return nil, fmt.Errorf("edit task %s: %w", id, err)
	}

	e.ui.CloseEditor()
	log.Info("task saved")
	return updated, nil
}

// Delete removes task and invalidates its column.
func (e *Editor) Delete(ctx context.Context, task taskclient.Task) error {
	log := e.log.WithContext(ctx).WithTaskID(task.ID)
	err := e.store.Delete(ctx, task.ID)
	e.cache.Invalidate(task.Column)
	if err != nil {
		log.Error("failed to delete task", zap.Error(err))
		e.notifier.Notify(ctx, notice.Notice{Message: notice.DeleteFailed, TaskID: task.ID, Err: err})
		return fmt.Errorf("delete task %s: %w", task.ID, err)
	}
	log.Info("task deleted", zap.String("column", string(task.Column)))
	return nil
}
