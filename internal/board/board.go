// Package board wires the board client together: the UI state, the column
// cache, the move coordinator and the editor, all talking to one task store.
package board

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kandev/taskboard/internal/board/columncache"
	"github.com/kandev/taskboard/internal/board/editor"
	"github.com/kandev/taskboard/internal/board/move"
	"github.com/kandev/taskboard/internal/board/notice"
	"github.com/kandev/taskboard/internal/board/search"
	"github.com/kandev/taskboard/internal/board/state"
	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

// Store is everything the board needs from the task store.
// *taskclient.Client implements it.
type Store interface {
	columncache.PageFetcher
	move.Store
	editor.Store
}

// Options tune a Board.
type Options struct {
	PageSize  int
	Rebalance bool
	EventBus  bus.EventBus
}

// Board is the client side of the kanban board.
type Board struct {
	UI     *state.UI
	Cache  *columncache.Cache
	Moves  *move.Coordinator
	Editor *editor.Editor

	store Store
	log   *logger.Logger
}

// New creates a Board over store. notifier receives every failure notice.
func New(store Store, notifier notice.Notifier, opts Options, log *logger.Logger) *Board {
	ui := state.New()
	cache := columncache.New(store, ui, opts.PageSize, log)
	moveOpts := []move.Option{move.WithRebalance(opts.Rebalance)}
	if opts.EventBus != nil {
		moveOpts = append(moveOpts, move.WithEventBus(opts.EventBus))
	}
	return &Board{
		UI:     ui,
		Cache:  cache,
		Moves:  move.NewCoordinator(store, cache, ui, notifier, log, moveOpts...),
		Editor: editor.New(store, cache, ui, notifier, log),
		store:  store,
		log:    log,
	}
}

// ColumnView is one rendered column.
type ColumnView struct {
	Column models.Column
	// Tasks is the loaded view narrowed by the search text.
	Tasks []taskclient.Task
	// Loaded counts every loaded task, matching the search or not.
	Loaded  int
	HasMore bool
	Err     error
}

// Title returns the column's display name.
func (v ColumnView) Title() string {
	return v.Column.Title()
}

// Summary is the column header line.
func (v ColumnView) Summary() string {
	if v.HasMore {
		return fmt.Sprintf("%d tasks loaded • Scroll to load more", v.Loaded)
	}
	return fmt.Sprintf("%d tasks loaded • All tasks loaded", v.Loaded)
}

// View loads every column concurrently and returns them in display order. A
// column that fails to load carries its error in ColumnView.Err; only
// cancellation of ctx fails the whole view.
func (b *Board) View(ctx context.Context) ([]ColumnView, error) {
	views := make([]ColumnView, len(models.Columns))
	g, gctx := errgroup.WithContext(ctx)
	for i, col := range models.Columns {
		g.Go(func() error {
			_, err := b.Cache.Load(gctx, col)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			views[i] = b.render(col, err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (b *Board) render(col models.Column, err error) ColumnView {
	all := b.Cache.Tasks(col)
	return ColumnView{
		Column:  col,
		Tasks:   search.Filter(all, b.UI.Search()),
		Loaded:  len(all),
		HasMore: err == nil && b.Cache.HasMore(col),
		Err:     err,
	}
}

// LoadMore fetches the next page of column, the equivalent of scrolling to its end.
func (b *Board) LoadMore(ctx context.Context, column models.Column) (ColumnView, error) {
	_, err := b.Cache.FetchNextPage(ctx, column)
	if err != nil && !errors.Is(err, columncache.ErrNoMorePages) {
		return ColumnView{}, err
	}
	return b.render(column, nil), nil
}

// Locate finds a task in the loaded views, fetching further pages of each
// column until it turns up. It returns the task and its index in the unfiltered view.
func (b *Board) Locate(ctx context.Context, id string) (taskclient.Task, move.Location, error) {
	for _, col := range models.Columns {
		tasks, err := b.Cache.Load(ctx, col)
		if err != nil {
			return taskclient.Task{}, move.Location{}, err
		}
		for {
			for i, t := range tasks {
				if t.ID == id {
					return t, move.Location{Column: col, Index: i}, nil
				}
			}
			if !b.Cache.HasMore(col) {
				break
			}
			tasks, err = b.Cache.FetchNextPage(ctx, col)
			if errors.Is(err, columncache.ErrNoMorePages) {
				break
			}
			if err != nil {
				return taskclient.Task{}, move.Location{}, err
			}
		}
	}
	return taskclient.Task{}, move.Location{}, apperrors.NotFound("task", id)
}

// Move drags task id to index of column. It is the programmatic form of a
// drag gesture: BeginDrag followed by a drop at the destination.
func (b *Board) Move(ctx context.Context, id string, to models.Column, index int) (move.Outcome, error) {
	_, from, err := b.Locate(ctx, id)
	if err != nil {
		return move.OutcomeDiscarded, err
	}
	// Locate stops at the source column; the destination may not be loaded yet.
	if _, err := b.Cache.Load(ctx, to); err != nil {
		return move.OutcomeDiscarded, fmt.Errorf("load %s: %w", to, err)
	}
	b.Moves.BeginDrag()
	return b.Moves.Drop(ctx, move.DropResult{
		TaskID:      id,
		Source:      from,
		Destination: &move.Location{Column: to, Index: index},
	})
}

// Rebalance renumbers column in the store and reloads its loaded pages.
func (b *Board) Rebalance(ctx context.Context, column models.Column) ([]taskclient.Task, error) {
	if _, err := b.store.Rebalance(ctx, column); err != nil {
		b.log.WithColumn(string(column)).Error("failed to rebalance column", zap.Error(err))
		b.Cache.Invalidate(column)
		return nil, fmt.Errorf("rebalance %s: %w", column, err)
	}
	return b.Cache.Refresh(ctx, column)
}
