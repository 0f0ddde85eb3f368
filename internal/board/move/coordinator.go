// Package move persists drag-and-drop moves of tasks between and within board columns.
//
// The drag gesture has already reordered the screen by the time a drop reaches
// the Coordinator. The coordinator computes the task's new position from the
// destination column's loaded view, patches the store, and then invalidates the
// affected columns whether the patch succeeded or not, so the view is always
// rebuilt from what the store holds. The cache is never patched in place.
package move

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kandev/taskboard/internal/board/columncache"
	"github.com/kandev/taskboard/internal/board/notice"
	"github.com/kandev/taskboard/internal/board/position"
	"github.com/kandev/taskboard/internal/board/state"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

const eventSource = "board"

// State of the drag-and-drop protocol.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateReconciling:
		return "reconciling"
	}
	return "unknown"
}

// Outcome of a drop.
type Outcome int

const (
	// OutcomeDiscarded means the task was dropped outside any column.
	OutcomeDiscarded Outcome = iota
	// OutcomeNoop means the task was dropped where it started.
	OutcomeNoop
	// OutcomeMoved means the store accepted the new column and position.
	OutcomeMoved
	// OutcomeFailed means the store rejected or never answered the patch.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeNoop:
		return "noop"
	case OutcomeMoved:
		return "moved"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Location is a slot in a column's view.
type Location struct {
	Column models.Column
	Index  int
}

// DropResult describes a finished drag gesture. Destination is nil when the
// task was released outside every column.
type DropResult struct {
	TaskID      string
	Source      Location
	Destination *Location
}

// Store is the part of the task client the coordinator writes through.
type Store interface {
	Patch(ctx context.Context, id string, patch taskclient.Patch) (*taskclient.Task, error)
	Rebalance(ctx context.Context, column models.Column) ([]taskclient.Task, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithRebalance makes the coordinator renumber the destination column when a
// drop lands in a gap too small to split, instead of accepting a position that
// may sort past the next task.
func WithRebalance(enabled bool) Option {
	return func(c *Coordinator) { c.rebalance = enabled }
}

// WithEventBus publishes board.task.moved and board.task.move_failed events.
func WithEventBus(b bus.EventBus) Option {
	return func(c *Coordinator) { c.eventBus = b }
}

// Coordinator runs the Idle -> Dragging -> Reconciling -> Idle protocol.
// Drops are not serialized: a second move may start while the first is still
// being saved, and whichever response lands last decides the refetched view.
type Coordinator struct {
	store     Store
	cache     *columncache.Cache
	ui        *state.UI
	notifier  notice.Notifier
	eventBus  bus.EventBus
	log       *logger.Logger
	rebalance bool

	mu       sync.Mutex
	dragging bool
	inFlight int
}

// NewCoordinator creates a coordinator.
func NewCoordinator(store Store, cache *columncache.Cache, ui *state.UI, notifier notice.Notifier, log *logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		cache:    cache,
		ui:       ui,
		notifier: notifier,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current protocol state. Dragging wins over Reconciling
// when a new drag starts while an earlier move is still saving.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.dragging:
		return StateDragging
	case c.inFlight > 0:
		return StateReconciling
	}
	return StateIdle
}

// BeginDrag enters Dragging. Infinite-scroll fetches are suspended until the drop.
func (c *Coordinator) BeginDrag() {
	c.mu.Lock()
	c.dragging = true
	c.mu.Unlock()
	c.ui.SetDragging(true)
}

func (c *Coordinator) endDrag() {
	c.mu.Lock()
	c.dragging = false
	c.mu.Unlock()
	c.ui.SetDragging(false)
}

// Drop finishes a drag. A genuine move is persisted before Drop returns; on
// failure the operator is notified and the wrapped store error is returned.
// Either way the source column, and the destination when it differs, are
// invalidated.
func (c *Coordinator) Drop(ctx context.Context, r DropResult) (Outcome, error) {
	c.endDrag()

	if r.Destination == nil {
		c.log.Debug("task dropped outside any column", zap.String("task_id", r.TaskID))
		return OutcomeDiscarded, nil
	}
	dest := *r.Destination
	if r.Source.Column == dest.Column && r.Source.Index == dest.Index {
		return OutcomeNoop, nil
	}

	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	ctx = logger.ContextWithMoveID(ctx, uuid.NewString())
	log := c.log.WithContext(ctx).WithTaskID(r.TaskID)

	pos, branch := c.allocate(r.TaskID, dest.Index, c.cache.Tasks(dest.Column))
	if branch == position.BranchCollision && c.rebalance {
		pos, branch = c.rebalanceAndAllocate(ctx, log, r.TaskID, dest, pos)
	}

	_, err := c.store.Patch(ctx, r.TaskID, taskclient.MovePatch(dest.Column, pos))

	if r.Source.Column == dest.Column {
		c.cache.Invalidate(r.Source.Column)
	} else {
		c.cache.Invalidate(r.Source.Column, dest.Column)
	}

	data := map[string]interface{}{
		"task_id":     r.TaskID,
		"from_column": string(r.Source.Column),
		"to_column":   string(dest.Column),
		"to_index":    dest.Index,
		"position":    pos,
		"branch":      branch.String(),
	}

	if err != nil {
		log.Error("failed to move task",
			zap.String("from_column", string(r.Source.Column)),
			zap.String("to_column", string(dest.Column)),
			zap.Int64("position", pos),
			zap.Error(err))
		c.notifier.Notify(ctx, notice.Notice{Message: notice.MoveFailed, TaskID: r.TaskID, Err: err})
		data["error"] = err.Error()
		c.publish(ctx, events.BoardTaskMoveFailed, data)
		return OutcomeFailed, fmt.Errorf("move task %s: %w", r.TaskID, err)
	}

	log.Info("task moved",
		zap.String("from_column", string(r.Source.Column)),
		zap.String("to_column", string(dest.Column)),
		zap.Int64("position", pos),
		zap.String("branch", branch.String()))
	c.publish(ctx, events.BoardTaskMoved, data)
	return OutcomeMoved, nil
}

// allocate computes the position for taskID at index among tasks, leaving the
// task itself out so a same-column reorder does not count its old slot.
func (c *Coordinator) allocate(taskID string, index int, tasks []taskclient.Task) (int64, position.Branch) {
	others := make([]taskclient.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != taskID {
			others = append(others, t)
		}
	}
	return position.AllocateWithBranch(index, taskclient.Positions(others))
}

// rebalanceAndAllocate renumbers the destination column and allocates again.
// If the store can not rebalance, the colliding position is kept.
func (c *Coordinator) rebalanceAndAllocate(ctx context.Context, log *logger.Logger, taskID string, dest Location, fallback int64) (int64, position.Branch) {
	renumbered, err := c.store.Rebalance(ctx, dest.Column)
	if err != nil {
		log.Warn("column rebalance failed, keeping colliding position",
			zap.String("column", string(dest.Column)),
			zap.Error(err))
		return fallback, position.BranchCollision
	}

	view, err := c.cache.Refresh(ctx, dest.Column)
	if err != nil {
		log.Warn("failed to refresh column after rebalance",
			zap.String("column", string(dest.Column)),
			zap.Error(err))
		view = renumbered
	}

	pos, branch := c.allocate(taskID, dest.Index, view)
	log.Info("column rebalanced before move",
		zap.String("column", string(dest.Column)),
		zap.Int("tasks", len(renumbered)),
		zap.Int64("position", pos))
	return pos, branch
}

func (c *Coordinator) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.eventBus == nil {
		return
	}
	event := bus.NewEvent(eventType, eventSource, data)
	if err := c.eventBus.Publish(ctx, eventType, event); err != nil {
		c.log.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
