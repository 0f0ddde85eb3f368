package repository

import (
	"sort"
	"strings"

	"github.com/kandev/taskboard/internal/task/models"
)

// sortTasks orders tasks the way the SQL repository does: by the requested
// field, ties broken by id.
func sortTasks(tasks []*models.Task, field models.SortField, desc bool) {
	less := func(a, b *models.Task) int {
		switch field {
		case models.SortByTitle:
			return strings.Compare(a.Title, b.Title)
		case models.SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case models.SortByID:
			return 0
		default:
			switch {
			case a.Position < b.Position:
				return -1
			case a.Position > b.Position:
				return 1
			}
			return 0
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := less(tasks[i], tasks[j])
		if c == 0 {
			c = strings.Compare(tasks[i].ID, tasks[j].ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
