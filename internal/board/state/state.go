// Package state holds the board's interactive state: the search text, whether a
// drag is in progress, and which task the editor is open on.
//
// A UI is created by the board and handed to every component that reads it.
package state

import "sync"

// UI is safe for concurrent use.
type UI struct {
	mu        sync.RWMutex
	search    string
	dragging  bool
	editingID string
}

// New returns an empty UI state.
func New() *UI {
	return &UI{}
}

func (u *UI) Search() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.search
}

func (u *UI) SetSearch(q string) {
	u.mu.Lock()
	u.search = q
	u.mu.Unlock()
}

func (u *UI) Dragging() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.dragging
}

func (u *UI) SetDragging(v bool) {
	u.mu.Lock()
	u.dragging = v
	u.mu.Unlock()
}

// EditingTaskID returns the id the editor is open on, or "" when closed.
func (u *UI) EditingTaskID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.editingID
}

// OpenEditor opens the editor on id. An empty id opens it for a new task.
func (u *UI) OpenEditor(id string) {
	u.mu.Lock()
	u.editingID = id
	u.mu.Unlock()
}

func (u *UI) CloseEditor() {
	u.OpenEditor("")
}
