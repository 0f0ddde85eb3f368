// Package repository defines task persistence and its in-memory implementation.
package repository

import (
	"context"

	"github.com/kandev/taskboard/internal/task/models"
)

// Renumberer returns n ascending positions for a column being rebalanced.
type Renumberer = func(n int) []int64

// Repository defines the interface for task storage operations
type Repository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	// ListTasks returns the requested window and the total number of matching tasks.
	ListTasks(ctx context.Context, opts models.ListOptions) ([]*models.Task, int, error)
	// RebalanceColumn rewrites every position in column, keeping the current
	// (position, id) order, and returns the column in its new order.
	RebalanceColumn(ctx context.Context, column models.Column, renumber Renumberer) ([]*models.Task, error)
	Close() error
}
