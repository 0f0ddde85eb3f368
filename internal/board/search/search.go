// Package search narrows the loaded tasks of a column to the ones matching the board's search box.
package search

import (
	"strings"

	"github.com/kandev/taskboard/internal/taskclient"
)

// Filter returns the tasks whose title or description contains query,
// ignoring case. Order is preserved. An empty query returns tasks as is.
func Filter(tasks []taskclient.Task, query string) []taskclient.Task {
	if query == "" {
		return tasks
	}
	needle := strings.ToLower(query)
	out := make([]taskclient.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t matches an already lower-cased needle.
func Matches(t taskclient.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}
