package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kandev/taskboard/internal/taskclient"
)

var sample = []taskclient.Task{
	{ID: "1", Title: "Fix login bug", Description: "OAuth redirect loops"},
	{ID: "2", Title: "Write release notes"},
	{ID: "3", Title: "Refactor cache", Description: "drop the LOGIN special case"},
	{ID: "4", Title: "Plan sprint", Description: "capacity"},
}

func ids(tasks []taskclient.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestFilterMatchesTitleOrDescription(t *testing.T) {
	assert.Equal(t, []string{"1", "3"}, ids(Filter(sample, "Login")))
	assert.Equal(t, []string{"2"}, ids(Filter(sample, "RELEASE")))
	assert.Equal(t, []string{"4"}, ids(Filter(sample, "capac")))
	assert.Empty(t, Filter(sample, "nothing like this"))
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	got := Filter(sample, "")
	assert.Equal(t, sample, got)
}

func TestFilterIsIdempotent(t *testing.T) {
	for _, q := range []string{"", "login", "e", "zzz", "Sprint"} {
		once := Filter(sample, q)
		assert.Equal(t, once, Filter(once, q), "query %q", q)
	}
}

func TestFilterMissingDescription(t *testing.T) {
	tasks := []taskclient.Task{{ID: "a", Title: "alpha"}}
	assert.Empty(t, Filter(tasks, "beta"))
	assert.Len(t, Filter(tasks, "ALP"), 1)
}
