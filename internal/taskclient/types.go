package taskclient

import "github.com/kandev/taskboard/internal/task/models"

// Task is the wire representation of a task as the board sees it.
type Task struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Column      models.Column `json:"column"`
	Position    int64         `json:"position"`
}

// Positions returns the position of each task, in order.
func Positions(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.Position
	}
	return out
}

// Patch is a partial update; nil fields are omitted from the request body.
type Patch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Column      *models.Column `json:"column,omitempty"`
	Position    *int64         `json:"position,omitempty"`
}

// MovePatch builds the {column, position} body sent when a task is dropped.
func MovePatch(column models.Column, position int64) Patch {
	return Patch{Column: &column, Position: &position}
}

// Query selects tasks. Zero values are left out of the URL.
type Query struct {
	Column  models.Column
	Page    int
	PerPage int
	Sort    string
	Order   string // "asc" or "desc"
	Limit   int
}

// Page is one page of a column listing.
type Page struct {
	Tasks   []Task
	Number  int
	HasMore bool
}

// envelope is the paginated list response.
type envelope struct {
	Data []Task `json:"data"`
	Next *int   `json:"next"`
}
