package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "github.com/kandev/taskboard/internal/common/errors"
	"github.com/kandev/taskboard/internal/common/tracing"
	"github.com/kandev/taskboard/internal/task/models"
)

const taskColumns = `id, title, description, column_id, position, created_at, updated_at`

var sortColumns = map[models.SortField]string{
	models.SortByPosition:  "position",
	models.SortByTitle:     "title",
	models.SortByCreatedAt: "created_at",
	models.SortByID:        "id",
}

// CreateTask inserts a task. The id must be set by the caller.
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), task.ID, task.Title, task.Description, task.Column, task.Position, task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", task.ID, err)
	}
	return nil
}

// GetTask retrieves a task by ID
func (r *Repository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{}
	err := r.ro.GetContext(ctx, task, r.ro.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("task", id)
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask updates an existing task
func (r *Repository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE tasks SET title = ?, description = ?, column_id = ?, position = ?, updated_at = ?
		WHERE id = ?
	`), task.Title, task.Description, task.Column, task.Position, task.UpdatedAt, task.ID)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("task", task.ID)
	}
	return nil
}

// DeleteTask deletes a task by ID
func (r *Repository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apperrors.NotFound("task", id)
	}
	return nil
}

// ListTasks returns one window of tasks and the total count for the filter.
func (r *Repository) ListTasks(ctx context.Context, opts models.ListOptions) ([]*models.Task, int, error) {
	ctx, span := tracing.Tracer("taskstore-db").Start(ctx, "db.ListTasks")
	defer span.End()

	where := ""
	var args []interface{}
	if opts.Column != "" {
		where = " WHERE column_id = ?"
		args = append(args, opts.Column)
	}

	var total int
	if err := r.ro.GetContext(ctx, &total, r.ro.Rebind(`SELECT COUNT(*) FROM tasks`+where), args...); err != nil {
		return nil, 0, err
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + taskColumns + ` FROM tasks` + where)
	b.WriteString(orderBy(opts))
	if limit := opts.RowLimit(); limit > 0 {
		b.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, limit, opts.Offset())
	}

	tasks := []*models.Task{}
	if err := r.ro.SelectContext(ctx, &tasks, r.ro.Rebind(b.String()), args...); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

func orderBy(opts models.ListOptions) string {
	col, ok := sortColumns[opts.Sort]
	if !ok {
		col = "position"
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}
	if col == "id" {
		return fmt.Sprintf(" ORDER BY id %s", dir)
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, dir, dir)
}

// RebalanceColumn renumbers a column inside one transaction.
func (r *Repository) RebalanceColumn(ctx context.Context, column models.Column, renumber func(n int) []int64) ([]*models.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	tasks, err := rebalanceInTx(ctx, tx, column, renumber)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return nil, fmt.Errorf("rebalance %s: %w, rollback failed: %v", column, err, rollbackErr)
		}
		return nil, fmt.Errorf("rebalance %s: %w", column, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func rebalanceInTx(ctx context.Context, tx *sqlx.Tx, column models.Column, renumber func(n int) []int64) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := tx.SelectContext(ctx, &tasks, tx.Rebind(
		`SELECT `+taskColumns+` FROM tasks WHERE column_id = ? ORDER BY position ASC, id ASC`,
	), column)
	if err != nil {
		return nil, err
	}

	positions := renumber(len(tasks))
	now := time.Now().UTC()
	for i, task := range tasks {
		task.Position = positions[i]
		task.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?`,
		), task.Position, task.UpdatedAt, task.ID); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
