package columncache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/taskboard/internal/board/state"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/taskclient"
)

type pageCall struct {
	column models.Column
	number int
}

// fakeFetcher pages over fixed, already sorted task lists.
type fakeFetcher struct {
	mu    sync.Mutex
	tasks map[models.Column][]taskclient.Task
	calls []pageCall
	err   error
	// hook runs once, after the request is recorded and before the page is built.
	hook func()
}

func (f *fakeFetcher) ColumnPage(_ context.Context, column models.Column, number, perPage int) (taskclient.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, pageCall{column, number})
	hook := f.hook
	f.hook = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return taskclient.Page{}, f.err
	}
	all := f.tasks[column]
	start := (number - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return taskclient.Page{
		Tasks:   append([]taskclient.Task{}, all[start:end]...),
		Number:  number,
		HasMore: end-start == perPage,
	}, nil
}

func (f *fakeFetcher) setTasks(column models.Column, tasks []taskclient.Task) {
	f.mu.Lock()
	f.tasks[column] = tasks
	f.mu.Unlock()
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() pageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func makeTasks(column models.Column, n int, prefix string) []taskclient.Task {
	out := make([]taskclient.Task, n)
	for i := range out {
		out[i] = taskclient.Task{
			ID:       fmt.Sprintf("%s%d", prefix, i+1),
			Title:    fmt.Sprintf("task %d", i+1),
			Column:   column,
			Position: int64(i+1) * 1000,
		}
	}
	return out
}

func newTestCache(t *testing.T) (*Cache, *fakeFetcher, *state.UI) {
	t.Helper()
	f := &fakeFetcher{tasks: map[models.Column][]taskclient.Task{
		models.ColumnBacklog: makeTasks(models.ColumnBacklog, 6, "b"),
		models.ColumnReview:  makeTasks(models.ColumnReview, 2, "r"),
	}}
	ui := state.New()
	return New(f, ui, 5, logger.NewNop()), f, ui
}

func TestLoadAndFetchNextPage(t *testing.T) {
	c, f, _ := newTestCache(t)
	ctx := context.Background()

	view, err := c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Len(t, view, 5)
	assert.True(t, c.HasMore(models.ColumnBacklog))
	assert.Equal(t, 1, c.LoadedPages(models.ColumnBacklog))

	view, err = c.FetchNextPage(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	require.Len(t, view, 6)
	assert.Equal(t, "b6", view[5].ID)
	assert.False(t, c.HasMore(models.ColumnBacklog))
	assert.Equal(t, pageCall{models.ColumnBacklog, 2}, f.lastCall())

	_, err = c.FetchNextPage(ctx, models.ColumnBacklog)
	assert.ErrorIs(t, err, ErrNoMorePages)

	// Already loaded: no request.
	view, err = c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Len(t, view, 6)
	assert.Equal(t, 2, f.callCount())
}

func TestShortFirstPageHasNoMore(t *testing.T) {
	c, _, _ := newTestCache(t)
	view, err := c.Load(context.Background(), models.ColumnReview)
	require.NoError(t, err)
	assert.Len(t, view, 2)
	assert.False(t, c.HasMore(models.ColumnReview))
}

func TestFetchNextPageSuspendedWhileDragging(t *testing.T) {
	c, f, ui := newTestCache(t)
	ui.SetDragging(true)

	_, err := c.FetchNextPage(context.Background(), models.ColumnBacklog)
	assert.ErrorIs(t, err, ErrFetchSuspended)
	assert.Zero(t, f.callCount())

	ui.SetDragging(false)
	view, err := c.FetchNextPage(context.Background(), models.ColumnBacklog)
	require.NoError(t, err)
	assert.Len(t, view, 5)
}

func TestInvalidateRestartsFromFirstPage(t *testing.T) {
	c, f, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	_, err = c.FetchNextPage(ctx, models.ColumnBacklog)
	require.NoError(t, err)

	c.Invalidate(models.ColumnBacklog)
	assert.False(t, c.Loaded(models.ColumnBacklog))
	assert.Empty(t, c.Tasks(models.ColumnBacklog))
	assert.True(t, c.HasMore(models.ColumnBacklog))
	assert.Equal(t, uint64(1), c.Generation(models.ColumnBacklog))

	_, err = c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Equal(t, pageCall{models.ColumnBacklog, 1}, f.lastCall())
	assert.Equal(t, 1, c.LoadedPages(models.ColumnBacklog))
}

func TestInvalidateAll(t *testing.T) {
	c, _, _ := newTestCache(t)
	ctx := context.Background()
	_, err := c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	_, err = c.Load(ctx, models.ColumnReview)
	require.NoError(t, err)

	c.InvalidateAll()
	for _, col := range models.Columns {
		assert.False(t, c.Loaded(col), col)
		assert.Equal(t, uint64(1), c.Generation(col), col)
	}
}

func TestStaleLoadIsDroppedAndRetried(t *testing.T) {
	c, f, _ := newTestCache(t)

	// The column is invalidated while page 1 is in flight, and the store has
	// changed by the time the retry lands.
	f.hook = func() {
		c.Invalidate(models.ColumnReview)
		f.setTasks(models.ColumnReview, makeTasks(models.ColumnReview, 3, "n"))
	}

	view, err := c.Load(context.Background(), models.ColumnReview)
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())
	require.Len(t, view, 3)
	assert.Equal(t, "n1", view[0].ID)
}

func TestStaleNextPageIsDropped(t *testing.T) {
	c, f, _ := newTestCache(t)
	ctx := context.Background()
	_, err := c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)

	f.hook = func() { c.Invalidate(models.ColumnBacklog) }
	_, err = c.FetchNextPage(ctx, models.ColumnBacklog)
	assert.ErrorIs(t, err, ErrStaleFetch)
	assert.Zero(t, c.LoadedPages(models.ColumnBacklog))
}

func TestRefreshRefetchesLoadedPages(t *testing.T) {
	c, f, _ := newTestCache(t)
	ctx := context.Background()
	_, err := c.Load(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	_, err = c.FetchNextPage(ctx, models.ColumnBacklog)
	require.NoError(t, err)

	f.setTasks(models.ColumnBacklog, makeTasks(models.ColumnBacklog, 7, "x"))
	view, err := c.Refresh(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Equal(t, 4, f.callCount())
	assert.Len(t, view, 7)
	assert.Equal(t, 2, c.LoadedPages(models.ColumnBacklog))
	assert.Equal(t, "x1", view[0].ID)
}

func TestFetchErrorLeavesColumnUnloaded(t *testing.T) {
	c, f, _ := newTestCache(t)
	boom := errors.New("connection refused")
	f.err = boom

	_, err := c.Load(context.Background(), models.ColumnBacklog)
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Loaded(models.ColumnBacklog))
}

func TestDefaultPageSize(t *testing.T) {
	c := New(&fakeFetcher{tasks: map[models.Column][]taskclient.Task{}}, nil, 0, logger.NewNop())
	assert.Equal(t, DefaultPageSize, c.PageSize())
}
