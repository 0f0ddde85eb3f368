package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	c, err := ParseColumn(" InProgress ")
	require.NoError(t, err)
	assert.Equal(t, ColumnInProgress, c)
	assert.Equal(t, "In Progress", c.Title())

	_, err = ParseColumn("archive")
	assert.Error(t, err)
	assert.False(t, Column("").Valid())
}

func TestParseSortField(t *testing.T) {
	f, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortByPosition, f)

	_, err = ParseSortField("position; DROP TABLE tasks")
	assert.Error(t, err)
}

func TestListOptionsPaging(t *testing.T) {
	assert.Equal(t, 0, ListOptions{Page: 1, PerPage: 5}.Offset())
	assert.Equal(t, 10, ListOptions{Page: 3, PerPage: 5}.Offset())
	assert.Equal(t, 5, ListOptions{Page: 3, PerPage: 5}.RowLimit())
	assert.Equal(t, 1, ListOptions{Limit: 1}.RowLimit())
	assert.Equal(t, 0, ListOptions{}.RowLimit())
}
