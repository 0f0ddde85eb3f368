package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUIDefaults(t *testing.T) {
	ui := New()
	assert.Empty(t, ui.Search())
	assert.False(t, ui.Dragging())
	assert.Empty(t, ui.EditingTaskID())
}

func TestUISetters(t *testing.T) {
	ui := New()
	ui.SetSearch("bug")
	ui.SetDragging(true)
	ui.OpenEditor("t1")

	assert.Equal(t, "bug", ui.Search())
	assert.True(t, ui.Dragging())
	assert.Equal(t, "t1", ui.EditingTaskID())

	ui.CloseEditor()
	ui.SetDragging(false)
	assert.Empty(t, ui.EditingTaskID())
	assert.False(t, ui.Dragging())
}

func TestUIConcurrentAccess(t *testing.T) {
	ui := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ui.SetDragging(i%2 == 0)
			_ = ui.Dragging()
			ui.SetSearch("q")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "q", ui.Search())
}
