// Package models holds the task store's persisted types.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Column identifies one of the board's four fixed columns.
type Column string

const (
	ColumnBacklog    Column = "backlog"
	ColumnInProgress Column = "inprogress"
	ColumnReview     Column = "review"
	ColumnDone       Column = "done"
)

// Columns lists the board columns in display order.
var Columns = []Column{ColumnBacklog, ColumnInProgress, ColumnReview, ColumnDone}

// Valid reports whether c is one of the four board columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnBacklog, ColumnInProgress, ColumnReview, ColumnDone:
		return true
	}
	return false
}

// Title returns the column header shown on the board.
func (c Column) Title() string {
	switch c {
	case ColumnBacklog:
		return "Backlog"
	case ColumnInProgress:
		return "In Progress"
	case ColumnReview:
		return "Review"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// ParseColumn parses a column id, accepting any letter case.
func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid column %q: must be one of backlog, inprogress, review, done", s)
	}
	return c, nil
}

// Task is a card on the board. Position is a sparse ascending key within Column.
type Task struct {
	ID          string    `json:"id" db:"id" yaml:"id"`
	Title       string    `json:"title" db:"title" yaml:"title"`
	Description string    `json:"description" db:"description" yaml:"description"`
	Column      Column    `json:"column" db:"column_id" yaml:"column"`
	Position    int64     `json:"position" db:"position" yaml:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at" yaml:"-"`
}

// SortField is a task attribute the store can order by.
type SortField string

const (
	SortByPosition  SortField = "position"
	SortByTitle     SortField = "title"
	SortByCreatedAt SortField = "created_at"
	SortByID        SortField = "id"
)

// ParseSortField maps a _sort query value to a SortField. Empty means position.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case "":
		return SortByPosition, nil
	case SortByPosition, SortByTitle, SortByCreatedAt, SortByID:
		return SortField(s), nil
	}
	return "", fmt.Errorf("invalid sort field %q", s)
}

// ListOptions filters and pages a task listing. Page is 1-based; Page 0 means
// no paging. Limit caps the result when not paging; 0 means unlimited.
type ListOptions struct {
	Column  Column
	Sort    SortField
	Desc    bool
	Page    int
	PerPage int
	Limit   int
}

// Offset returns the row offset for Page/PerPage.
func (o ListOptions) Offset() int {
	if o.Page <= 1 || o.PerPage <= 0 {
		return 0
	}
	return (o.Page - 1) * o.PerPage
}

// RowLimit returns the number of rows to fetch, 0 meaning unlimited.
func (o ListOptions) RowLimit() int {
	if o.Page > 0 && o.PerPage > 0 {
		return o.PerPage
	}
	if o.Limit > 0 {
		return o.Limit
	}
	return 0
}
