package repository

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/task/models"
)

// MemoryRepository provides in-memory task storage operations
type MemoryRepository struct {
	tasks map[string]*models.Task
	mu    sync.RWMutex
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory task repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[string]*models.Task)}
}

// Close is a no-op for in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateTask stores a copy of task. The id must be set and unused.
func (r *MemoryRepository) CreateTask(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return apperrors.BadRequest("task already exists: " + task.ID)
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

// GetTask retrieves a task by ID
func (r *MemoryRepository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, apperrors.NotFound("task", id)
	}
	result := *task
	return &result, nil
}

// UpdateTask replaces an existing task
func (r *MemoryRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[task.ID]
	if !ok {
		return apperrors.NotFound("task", task.ID)
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()

	stored := *task
	r.tasks[task.ID] = &stored
	return nil
}

// DeleteTask deletes a task by ID
func (r *MemoryRepository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return apperrors.NotFound("task", id)
	}
	delete(r.tasks, id)
	return nil
}

// ListTasks filters, sorts and windows the stored tasks.
func (r *MemoryRepository) ListTasks(ctx context.Context, opts models.ListOptions) ([]*models.Task, int, error) {
	r.mu.RLock()
	matched := make([]*models.Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		if opts.Column != "" && task.Column != opts.Column {
			continue
		}
		t := *task
		matched = append(matched, &t)
	}
	r.mu.RUnlock()

	sortTasks(matched, opts.Sort, opts.Desc)
	total := len(matched)

	offset := opts.Offset()
	if offset >= total {
		return []*models.Task{}, total, nil
	}
	end := total
	if limit := opts.RowLimit(); limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// RebalanceColumn renumbers column in place under the write lock.
func (r *MemoryRepository) RebalanceColumn(ctx context.Context, column models.Column, renumber Renumberer) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var inColumn []*models.Task
	for _, task := range r.tasks {
		if task.Column == column {
			inColumn = append(inColumn, task)
		}
	}
	sortTasks(inColumn, models.SortByPosition, false)

	positions := renumber(len(inColumn))
	now := time.Now().UTC()
	result := make([]*models.Task, len(inColumn))
	for i, task := range inColumn {
		task.Position = positions[i]
		task.UpdatedAt = now
		t := *task
		result[i] = &t
	}
	return result, nil
}
