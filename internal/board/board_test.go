package board

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kandev/taskboard/internal/board/editor"
	"github.com/kandev/taskboard/internal/board/move"
	"github.com/kandev/taskboard/internal/board/notice"
	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/task/handlers"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/repository"
	"github.com/kandev/taskboard/internal/task/service"
	"github.com/kandev/taskboard/internal/taskclient"
)

func newTestBoard(t *testing.T) (*Board, *taskclient.Client, *notice.Recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	svc := service.NewService(repository.NewMemoryRepository(), nil, logger.NewNop())
	handlers.RegisterTaskRoutes(router, svc, logger.NewNop())
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	client := taskclient.NewClient(srv.URL, logger.NewNop())
	rec := &notice.Recorder{}
	return New(client, rec, Options{PageSize: 5}, logger.NewNop()), client, rec
}

func seed(t *testing.T, c *taskclient.Client, column models.Column, n int, prefix string) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := c.Create(context.Background(), taskclient.Task{
			ID:       fmt.Sprintf("%s%d", prefix, i),
			Title:    fmt.Sprintf("%s task %d", column, i),
			Column:   column,
			Position: int64(i) * 65536,
		})
		require.NoError(t, err)
	}
}

func viewOf(t *testing.T, views []ColumnView, col models.Column) ColumnView {
	t.Helper()
	for _, v := range views {
		if v.Column == col {
			return v
		}
	}
	t.Fatalf("column %s missing from view", col)
	return ColumnView{}
}

func TestViewAndLoadMore(t *testing.T) {
	b, client, _ := newTestBoard(t)
	seed(t, client, models.ColumnBacklog, 7, "b")
	seed(t, client, models.ColumnDone, 1, "d")
	ctx := context.Background()

	views, err := b.View(ctx)
	require.NoError(t, err)
	require.Len(t, views, len(models.Columns))

	backlog := viewOf(t, views, models.ColumnBacklog)
	assert.Equal(t, 5, backlog.Loaded)
	assert.True(t, backlog.HasMore)
	assert.Equal(t, "5 tasks loaded • Scroll to load more", backlog.Summary())
	assert.Equal(t, "Backlog", backlog.Title())

	done := viewOf(t, views, models.ColumnDone)
	assert.Equal(t, 1, done.Loaded)
	assert.False(t, done.HasMore)

	more, err := b.LoadMore(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Equal(t, 7, more.Loaded)
	assert.False(t, more.HasMore)
	assert.Equal(t, "7 tasks loaded • All tasks loaded", more.Summary())

	more, err = b.LoadMore(ctx, models.ColumnBacklog)
	require.NoError(t, err)
	assert.Equal(t, 7, more.Loaded)
}

func TestViewAppliesSearch(t *testing.T) {
	b, client, _ := newTestBoard(t)
	seed(t, client, models.ColumnBacklog, 3, "b")
	seed(t, client, models.ColumnReview, 2, "r")

	b.UI.SetSearch("REVIEW TASK 2")
	views, err := b.View(context.Background())
	require.NoError(t, err)

	review := viewOf(t, views, models.ColumnReview)
	require.Len(t, review.Tasks, 1)
	assert.Equal(t, "r2", review.Tasks[0].ID)
	assert.Equal(t, 2, review.Loaded)
	assert.Empty(t, viewOf(t, views, models.ColumnBacklog).Tasks)
}

func TestMoveAcrossColumns(t *testing.T) {
	b, client, rec := newTestBoard(t)
	seed(t, client, models.ColumnBacklog, 2, "b")
	seed(t, client, models.ColumnReview, 1, "r")
	ctx := context.Background()

	_, err := b.View(ctx)
	require.NoError(t, err)

	outcome, err := b.Move(ctx, "b1", models.ColumnReview, 0)
	require.NoError(t, err)
	assert.Equal(t, move.OutcomeMoved, outcome)
	assert.False(t, b.Cache.Loaded(models.ColumnBacklog))
	assert.False(t, b.Cache.Loaded(models.ColumnReview))

	views, err := b.View(ctx)
	require.NoError(t, err)
	review := viewOf(t, views, models.ColumnReview)
	require.Len(t, review.Tasks, 2)
	assert.Equal(t, "b1", review.Tasks[0].ID)
	assert.Equal(t, int64(32768), review.Tasks[0].Position)
	assert.Len(t, viewOf(t, views, models.ColumnBacklog).Tasks, 1)
	assert.Empty(t, rec.Notices())
}

func TestMoveIntoUnloadedColumn(t *testing.T) {
	b, client, rec := newTestBoard(t)
	seed(t, client, models.ColumnBacklog, 1, "b")
	seed(t, client, models.ColumnReview, 2, "r")
	ctx := context.Background()

	outcome, err := b.Move(ctx, "b1", models.ColumnReview, 0)
	require.NoError(t, err)
	assert.Equal(t, move.OutcomeMoved, outcome)

	moved, _, err := b.Locate(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, models.ColumnReview, moved.Column)
	assert.Equal(t, int64(32768), moved.Position)

	outcome, err = b.Move(ctx, "r1", models.ColumnDone, 0)
	require.NoError(t, err)
	assert.Equal(t, move.OutcomeMoved, outcome)
	b.Cache.InvalidateAll()

	outcome, err = b.Move(ctx, "r2", models.ColumnDone, 1)
	require.NoError(t, err)
	assert.Equal(t, move.OutcomeMoved, outcome)
	tail, _, err := b.Locate(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, models.ColumnDone, tail.Column)
	assert.Equal(t, int64(65536+65536), tail.Position)
	assert.Empty(t, rec.Notices())
}

func TestLocateSearchesUnloadedPages(t *testing.T) {
	b, client, _ := newTestBoard(t)
	seed(t, client, models.ColumnInProgress, 8, "p")

	task, loc, err := b.Locate(context.Background(), "p7")
	require.NoError(t, err)
	assert.Equal(t, "p7", task.ID)
	assert.Equal(t, move.Location{Column: models.ColumnInProgress, Index: 6}, loc)

	_, _, err = b.Locate(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateEditDeleteThroughEditor(t *testing.T) {
	b, client, _ := newTestBoard(t)
	seed(t, client, models.ColumnBacklog, 1, "b")
	ctx := context.Background()

	created, err := b.Editor.Create(ctx, editor.Draft{Title: "Fresh"})
	require.NoError(t, err)
	assert.Equal(t, int64(32768), created.Position)

	_, err = b.Editor.Edit(ctx, created.ID, editor.Draft{Title: "Fresh", Description: "now with notes", Column: models.ColumnDone})
	require.NoError(t, err)

	views, err := b.View(ctx)
	require.NoError(t, err)
	done := viewOf(t, views, models.ColumnDone)
	require.Len(t, done.Tasks, 1)
	assert.Equal(t, "now with notes", done.Tasks[0].Description)

	require.NoError(t, b.Editor.Delete(ctx, done.Tasks[0]))
	views, err = b.View(ctx)
	require.NoError(t, err)
	assert.Empty(t, viewOf(t, views, models.ColumnDone).Tasks)
}

func TestRebalance(t *testing.T) {
	b, client, _ := newTestBoard(t)
	ctx := context.Background()
	for i, pos := range []int64{100, 105, 110} {
		_, err := client.Create(ctx, taskclient.Task{ID: fmt.Sprintf("t%d", i), Title: "t", Column: models.ColumnReview, Position: pos})
		require.NoError(t, err)
	}

	tasks, err := b.Rebalance(ctx, models.ColumnReview)
	require.NoError(t, err)
	assert.Equal(t, []int64{65536, 131072, 196608}, taskclient.Positions(tasks))
}

func TestViewReportsUnreachableStorePerColumn(t *testing.T) {
	srv := httptest.NewServer(gin.New())
	url := srv.URL
	srv.Close()

	b := New(taskclient.NewClient(url, logger.NewNop()), &notice.Recorder{}, Options{}, logger.NewNop())
	views, err := b.View(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		assert.True(t, apperrors.IsStoreFailure(v.Err), v.Column)
		assert.False(t, v.HasMore)
		assert.Zero(t, v.Loaded)
	}
}
