package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mselway/triage/task"
)

var (
	boldStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityUrgent: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		task.PriorityLow:    mutedStyle,
	}

	statusStyles = map[task.Status]lipgloss.Style{
		task.StatusPending:    mutedStyle,
		task.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		task.StatusCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}

	scoreHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	scoreMidStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// FormatPriority renders a priority name, colored when ANSI is enabled.
func FormatPriority(p task.Priority) string {
	name := string(task.NormalizePriority(p))
	if !ansiEnabled() {
		return name
	}
	if style, ok := priorityStyles[task.Priority(name)]; ok {
		return style.Render(name)
	}
	return name
}

// FormatStatus renders a status name, colored when ANSI is enabled.
func FormatStatus(s task.Status) string {
	name := string(s)
	if !ansiEnabled() {
		return name
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(name)
	}
	return name
}

// FormatScore renders a score, emphasizing the urgent end of the scale.
func FormatScore(score int) string {
	value := fmt.Sprintf("%d", score)
	if !ansiEnabled() {
		return value
	}
	switch {
	case score >= 75:
		return scoreHighStyle.Render(value)
	case score >= 40:
		return scoreMidStyle.Render(value)
	default:
		return mutedStyle.Render(value)
	}
}

// FormatProgress renders a progress percentage.
func FormatProgress(progress int) string {
	return fmt.Sprintf("%d%%", progress)
}

// FormatTagNames renders a task's tag names as a comma list, looking
// each id up in tags. Unknown ids are skipped.
func FormatTagNames(tagIDs []string, tags []task.Tag) string {
	byID := make(map[string]string, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag.Name
	}
	names := make([]string, 0, len(tagIDs))
	for _, id := range tagIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

// FormatTagSwatch renders a tag name with its color applied when ANSI
// is enabled.
func FormatTagSwatch(tag task.Tag) string {
	if !ansiEnabled() || tag.Color == "" {
		return tag.Name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render(tag.Name)
}

// Bold renders a value bold when ANSI is enabled.
func Bold(value string) string {
	if !ansiEnabled() {
		return value
	}
	return boldStyle.Render(value)
}

func headerStyle(value string) string {
	if !ansiEnabled() {
		return value
	}
	return boldStyle.Render(value)
}

func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
