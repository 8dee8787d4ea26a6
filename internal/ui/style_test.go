package ui

import (
	"testing"

	"github.com/mselway/triage/task"
)

func TestFormatWithColorDisabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	if got := FormatPriority(task.PriorityUrgent); got != "urgent" {
		t.Errorf("expected plain %q, got %q", "urgent", got)
	}
	if got := FormatPriority("WHATEVER"); got != "low" {
		t.Errorf("expected unknown priorities normalized, got %q", got)
	}
	if got := FormatStatus(task.StatusInProgress); got != "in-progress" {
		t.Errorf("expected plain status, got %q", got)
	}
	if got := FormatScore(95); got != "95" {
		t.Errorf("expected plain score, got %q", got)
	}
	if got := Bold("text"); got != "text" {
		t.Errorf("expected plain text, got %q", got)
	}
}

func TestFormatProgress(t *testing.T) {
	if got := FormatProgress(25); got != "25%" {
		t.Errorf("expected %q, got %q", "25%", got)
	}
}

func TestFormatTagNames(t *testing.T) {
	tags := []task.Tag{
		{ID: "t1", Name: "work"},
		{ID: "t2", Name: "urgent"},
	}

	if got := FormatTagNames(nil, tags); got != "-" {
		t.Errorf("expected %q for no tags, got %q", "-", got)
	}
	if got := FormatTagNames([]string{"t2", "t1"}, tags); got != "urgent,work" {
		t.Errorf("expected id order preserved, got %q", got)
	}
	// Ids with no matching tag are skipped rather than rendered raw.
	if got := FormatTagNames([]string{"missing", "t1"}, tags); got != "work" {
		t.Errorf("expected unknown ids skipped, got %q", got)
	}
}
