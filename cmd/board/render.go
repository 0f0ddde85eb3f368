package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kandev/taskboard/internal/board"
	"github.com/kandev/taskboard/internal/taskclient"
)

const columnWidth = 30

var (
	columnBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1).
			Width(columnWidth)
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1).
			Width(columnWidth - 4)
)

// renderBoard lays the columns out side by side.
func renderBoard(views []board.ColumnView, search string) string {
	boxes := make([]string, 0, len(views))
	for _, v := range views {
		boxes = append(boxes, renderColumn(v, search))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func renderColumn(v board.ColumnView, search string) string {
	parts := []string{
		headerStyle.Render(v.Title()),
		mutedStyle.Render(v.Summary()),
		"",
	}

	switch {
	case v.Err != nil:
		parts = append(parts, errorStyle.Render("Failed to load tasks"))
	case len(v.Tasks) == 0 && search != "":
		parts = append(parts, mutedStyle.Render("No tasks match your search"))
	case len(v.Tasks) == 0:
		parts = append(parts, mutedStyle.Render("No tasks in this column"))
	default:
		for _, t := range v.Tasks {
			parts = append(parts, renderCard(t))
		}
	}
	return columnBox.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderCard(t taskclient.Task) string {
	lines := []string{t.Title}
	if t.Description != "" {
		lines = append(lines, mutedStyle.Render(t.Description))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%s @%d", t.ID, t.Position)))
	return cardStyle.Render(strings.Join(lines, "\n"))
}
