// Package events defines the event types published by the task store and the board client.
package events

// Store-side task events. The subject equals the event type.
const (
	TaskCreated      = "task.created"
	TaskUpdated      = "task.updated"
	TaskDeleted      = "task.deleted"
	ColumnRebalanced = "task.column.rebalanced"
)

// Board-side events.
const (
	BoardTaskMoved      = "board.task.moved"
	BoardTaskMoveFailed = "board.task.move_failed"
	BoardNotice         = "board.notice"
)

// Wildcard subjects.
const (
	AllTaskEvents  = "task.>"
	AllBoardEvents = "board.>"
)
