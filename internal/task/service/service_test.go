package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/logger"
	"github.com/kandev/taskboard/internal/events"
	"github.com/kandev/taskboard/internal/events/bus"
	"github.com/kandev/taskboard/internal/task/models"
	"github.com/kandev/taskboard/internal/task/repository"
)

// MockEventBus implements bus.EventBus for testing
type MockEventBus struct {
	mu              sync.Mutex
	publishedEvents []*bus.Event
	closed          bool
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{publishedEvents: make([]*bus.Event, 0)}
}

func (m *MockEventBus) Publish(ctx context.Context, subject string, event *bus.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedEvents = append(m.publishedEvents, event)
	return nil
}

func (m *MockEventBus) Subscribe(subject string, handler bus.EventHandler) (bus.Subscription, error) {
	return nil, nil
}

func (m *MockEventBus) QueueSubscribe(subject, queue string, handler bus.EventHandler) (bus.Subscription, error) {
	return nil, nil
}

func (m *MockEventBus) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *MockEventBus) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *MockEventBus) GetPublishedEvents() []*bus.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*bus.Event(nil), m.publishedEvents...)
}

func createTestService(t *testing.T) (*Service, *MockEventBus, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	eventBus := NewMockEventBus()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)
	return NewService(repo, eventBus, log), eventBus, repo
}

func int64Ptr(v int64) *int64 { return &v }

func TestService_CreateTask(t *testing.T) {
	svc, eventBus, _ := createTestService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, &CreateTaskRequest{
		ID:       "t1",
		Title:    "Write docs",
		Column:   models.ColumnBacklog,
		Position: int64Ptr(65536),
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, int64(65536), task.Position)

	published := eventBus.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.TaskCreated, published[0].Type)
	assert.Equal(t, "t1", published[0].Data["task_id"])
}

func TestService_CreateTaskGeneratesIDAndAppends(t *testing.T) {
	svc, _, _ := createTestService(t)
	ctx := context.Background()

	first, err := svc.CreateTask(ctx, &CreateTaskRequest{Title: "a", Column: models.ColumnReview})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(65536), first.Position)

	second, err := svc.CreateTask(ctx, &CreateTaskRequest{Title: "b", Column: models.ColumnReview})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(131072), second.Position)
}

func TestService_CreateTaskRejectsBadInput(t *testing.T) {
	svc, eventBus, _ := createTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTask(ctx, &CreateTaskRequest{Title: "a", Column: "archive"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateTask(ctx, &CreateTaskRequest{ID: "dup", Title: "a", Column: models.ColumnDone})
	require.NoError(t, err)
	_, err = svc.CreateTask(ctx, &CreateTaskRequest{ID: "dup", Title: "b", Column: models.ColumnDone})
	assert.True(t, apperrors.IsBadRequest(err))

	assert.Len(t, eventBus.GetPublishedEvents(), 1)
}

func TestService_UpdateTaskMovesAcrossColumns(t *testing.T) {
	svc, eventBus, _ := createTestService(t)
	ctx := context.Background()
	_, err := svc.CreateTask(ctx, &CreateTaskRequest{ID: "t1", Title: "a", Description: "keep", Column: models.ColumnBacklog})
	require.NoError(t, err)

	done := models.ColumnDone
	task, err := svc.UpdateTask(ctx, "t1", &UpdateTaskRequest{Column: &done, Position: int64Ptr(42)})
	require.NoError(t, err)
	assert.Equal(t, models.ColumnDone, task.Column)
	assert.Equal(t, int64(42), task.Position)
	assert.Equal(t, "a", task.Title)
	assert.Equal(t, "keep", task.Description)

	published := eventBus.GetPublishedEvents()
	require.Len(t, published, 2)
	assert.Equal(t, events.TaskUpdated, published[1].Type)
	assert.Equal(t, "backlog", published[1].Data["previous_column"])
}

func TestService_UpdateTaskErrors(t *testing.T) {
	svc, _, _ := createTestService(t)
	ctx := context.Background()

	title := "x"
	_, err := svc.UpdateTask(ctx, "missing", &UpdateTaskRequest{Title: &title})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.CreateTask(ctx, &CreateTaskRequest{ID: "t1", Title: "a", Column: models.ColumnBacklog})
	require.NoError(t, err)
	bad := models.Column("later")
	_, err = svc.UpdateTask(ctx, "t1", &UpdateTaskRequest{Column: &bad})
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_DeleteTask(t *testing.T) {
	svc, eventBus, repo := createTestService(t)
	ctx := context.Background()
	_, err := svc.CreateTask(ctx, &CreateTaskRequest{ID: "t1", Title: "a", Column: models.ColumnBacklog})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, "t1"))
	_, err = repo.GetTask(ctx, "t1")
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(svc.DeleteTask(ctx, "t1")))

	published := eventBus.GetPublishedEvents()
	assert.Equal(t, events.TaskDeleted, published[len(published)-1].Type)
}

func TestService_RebalanceColumn(t *testing.T) {
	svc, eventBus, _ := createTestService(t)
	ctx := context.Background()
	for i, pos := range []int64{100, 105, 32868} {
		_, err := svc.CreateTask(ctx, &CreateTaskRequest{
			ID:       string(rune('a' + i)),
			Title:    "t",
			Column:   models.ColumnInProgress,
			Position: int64Ptr(pos),
		})
		require.NoError(t, err)
	}

	tasks, err := svc.RebalanceColumn(ctx, models.ColumnInProgress)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, int64(65536), tasks[0].Position)
	assert.Equal(t, int64(196608), tasks[2].Position)

	published := eventBus.GetPublishedEvents()
	last := published[len(published)-1]
	assert.Equal(t, events.ColumnRebalanced, last.Type)
	assert.Equal(t, 3, last.Data["count"])

	_, err = svc.RebalanceColumn(ctx, "nowhere")
	assert.True(t, apperrors.IsValidation(err))
}

func TestService_ListTasksValidatesColumn(t *testing.T) {
	svc, _, _ := createTestService(t)
	_, err := svc.ListTasks(context.Background(), models.ListOptions{Column: "elsewhere"})
	assert.True(t, apperrors.IsValidation(err))

	result, err := svc.ListTasks(context.Background(), models.ListOptions{Column: models.ColumnDone})
	require.NoError(t, err)
	assert.Empty(t, result.Tasks)
	assert.Equal(t, 0, result.Total)
}
