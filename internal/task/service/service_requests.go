package service

import "github.com/kandev/taskboard/internal/task/models"

// CreateTaskRequest contains the data for creating a task. An empty ID is
// replaced by a generated one; a nil Position appends to the column.
type CreateTaskRequest struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Column      models.Column `json:"column"`
	Position    *int64        `json:"position,omitempty"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Column      *models.Column `json:"column,omitempty"`
	Position    *int64         `json:"position,omitempty"`
}

// ListTasksResult is one window of a listing and the total count behind it.
type ListTasksResult struct {
	Tasks []*models.Task
	Total int
}
