package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/mselway/triage/internal/markdown"
	"github.com/mselway/triage/internal/ui"
	"github.com/mselway/triage/task"
)

const taskDetailLineWidth = 80

// formatTaskTable renders tasks in a table format.
func formatTaskTable(tasks []task.Task, tags []task.Tag, now time.Time) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	builder := ui.NewTableBuilder([]string{"ID", "SCORE", "PRI", "STATUS", "PROG", "DUE", "TAGS", "TITLE"}, len(tasks))
	for _, t := range tasks {
		builder.AddRow([]string{
			shortID(t.ID),
			ui.FormatScore(t.AIScore),
			ui.FormatPriority(t.Priority),
			ui.FormatStatus(t.Status),
			ui.FormatProgress(t.Progress),
			ui.FormatDueDate(t.DueDate, now),
			ui.FormatTagNames(t.TagIDs, tags),
			ui.TruncateTableCell(t.Title),
		})
	}
	return builder.String()
}

// formatTaskDetail renders one task with its full description.
func formatTaskDetail(t task.Task, tags []task.Tag, now time.Time) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "ID:       %s\n", t.ID)
	fmt.Fprintf(&builder, "Title:    %s\n", ui.Bold(t.Title))
	fmt.Fprintf(&builder, "Status:   %s\n", ui.FormatStatus(t.Status))
	fmt.Fprintf(&builder, "Priority: %s\n", ui.FormatPriority(t.Priority))
	fmt.Fprintf(&builder, "Progress: %s\n", ui.FormatProgress(t.Progress))
	fmt.Fprintf(&builder, "Score:    %s\n", ui.FormatScore(t.AIScore))
	fmt.Fprintf(&builder, "Due:      %s\n", ui.FormatDueDate(t.DueDate, now))
	fmt.Fprintf(&builder, "Tags:     %s\n", ui.FormatTagNames(t.TagIDs, tags))
	fmt.Fprintf(&builder, "Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&builder, "Updated:  %s\n", ui.FormatTimeAgo(t.UpdatedAt, now))
	if t.CompletedAt != nil {
		fmt.Fprintf(&builder, "Completed: %s\n", t.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if t.Description != "" {
		rendered := markdown.Render(taskDetailLineWidth, 0, []byte(t.Description))
		if len(rendered) > 0 {
			fmt.Fprintf(&builder, "\nDescription:\n%s\n", rendered)
		}
	}
	return builder.String()
}

// shortID trims uuids for table display; full ids remain usable
// everywhere a command takes an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
