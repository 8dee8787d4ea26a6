package score

import (
	"testing"
	"time"

	"github.com/mselway/triage/task"
)

var scoreNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func urgentTag() task.Tag {
	return task.Tag{ID: "tag-urgent", Name: "urgent", Color: "#ef4444"}
}

func dueIn(d time.Duration) *time.Time {
	due := scoreNow.Add(d)
	return &due
}

func baseTask() task.Task {
	return task.Task{
		ID:       "t1",
		Title:    "Pay rent",
		Priority: task.PriorityLow,
		Status:   task.StatusPending,
	}
}

func TestReference_ScenarioUrgentDueTomorrow(t *testing.T) {
	tags := []task.Tag{urgentTag()}
	tk := baseTask()
	tk.Priority = task.PriorityUrgent
	tk.DueDate = dueIn(24 * time.Hour)
	tk.TagIDs = []string{"tag-urgent"}
	tk.Progress = 0

	// 30 (priority) + 40 (due <=1) + 15 (urgent tag) + 10 (progress 0)
	if got := (Reference{}).Score(tk, tags, scoreNow); got != 95 {
		t.Errorf("expected score 95, got %d", got)
	}
}

func TestReference_ScenarioClampsAtHundred(t *testing.T) {
	tags := []task.Tag{urgentTag()}
	tk := baseTask()
	tk.Priority = task.PriorityUrgent
	tk.DueDate = dueIn(24 * time.Hour)
	tk.TagIDs = []string{"tag-urgent"}
	tk.Progress = 80

	// 30 + 40 + 15 + 15 = 100, already at the clamp
	if got := (Reference{}).Score(tk, tags, scoreNow); got != 100 {
		t.Errorf("expected score 100, got %d", got)
	}

	// Overdue pushes the raw sum past 100; the clamp holds it there.
	tk.DueDate = dueIn(-48 * time.Hour)
	if got := (Reference{}).Score(tk, tags, scoreNow); got != 100 {
		t.Errorf("expected clamped score 100, got %d", got)
	}
}

func TestDegraded_ScenarioLowNoDueDate(t *testing.T) {
	tk := baseTask()

	// low falls into the otherwise branch: +10, no other terms
	if got := (Degraded{}).Score(tk, nil, scoreNow); got != 10 {
		t.Errorf("expected score 10, got %d", got)
	}
}

func TestDegraded_UrgentPriorityRanksAsOtherwise(t *testing.T) {
	// Known divergence from the reference calibration: urgent is not a
	// named tier and lands in the otherwise branch.
	tk := baseTask()
	tk.Priority = task.PriorityUrgent
	if got := (Degraded{}).Score(tk, nil, scoreNow); got != 10 {
		t.Errorf("expected score 10, got %d", got)
	}
}

func TestDegraded_TagNameSubstring(t *testing.T) {
	tags := []task.Tag{{ID: "tag-1", Name: "urgent-work"}}
	tk := baseTask()
	tk.TagIDs = []string{"tag-1"}

	// 10 (otherwise) + 25 (tag name contains "urgent")
	if got := (Degraded{}).Score(tk, tags, scoreNow); got != 35 {
		t.Errorf("expected score 35, got %d", got)
	}
}

func TestReference_Bounds(t *testing.T) {
	tags := []task.Tag{urgentTag()}
	priorities := []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityHigh, task.PriorityUrgent, "legacy"}
	dues := []*time.Time{nil, dueIn(-time.Hour), dueIn(12 * time.Hour), dueIn(72 * time.Hour), dueIn(200 * time.Hour), dueIn(1000 * time.Hour)}
	progresses := []int{0, 1, 50, 74, 75, 100}

	for _, priority := range priorities {
		for _, due := range dues {
			for _, progress := range progresses {
				for _, tagIDs := range [][]string{nil, {"tag-urgent"}} {
					tk := baseTask()
					tk.Priority = priority
					tk.DueDate = due
					tk.Progress = progress
					tk.TagIDs = tagIDs
					got := (Reference{}).Score(tk, tags, scoreNow)
					if got < 0 || got > 100 {
						t.Fatalf("score out of bounds: %d for priority=%q due=%v progress=%d", got, priority, due, progress)
					}
				}
			}
		}
	}
}

func TestReference_DueDateMonotonic(t *testing.T) {
	// Decreasing days-until-due never decreases the score, all else
	// fixed.
	prev := -1
	for days := 30; days >= 0; days-- {
		tk := baseTask()
		tk.DueDate = dueIn(time.Duration(days) * 24 * time.Hour)
		got := (Reference{}).Score(tk, nil, scoreNow)
		if got < prev {
			t.Fatalf("score decreased from %d to %d at %d days out", prev, got, days)
		}
		prev = got
	}
}

func TestReference_PriorityMonotonic(t *testing.T) {
	prev := -1
	for _, priority := range task.ValidPriorities() {
		tk := baseTask()
		tk.Priority = priority
		got := (Reference{}).Score(tk, nil, scoreNow)
		if got < prev {
			t.Fatalf("score decreased to %d at priority %q", got, priority)
		}
		prev = got
	}
}

func TestReference_Deterministic(t *testing.T) {
	tags := []task.Tag{urgentTag()}
	tk := baseTask()
	tk.Priority = task.PriorityHigh
	tk.DueDate = dueIn(48 * time.Hour)
	tk.TagIDs = []string{"tag-urgent"}
	tk.Progress = 40

	first := (Reference{}).Score(tk, tags, scoreNow)
	for i := 0; i < 10; i++ {
		if got := (Reference{}).Score(tk, tags, scoreNow); got != first {
			t.Fatalf("expected deterministic score %d, got %d", first, got)
		}
	}
}

func TestForMode(t *testing.T) {
	if got := ForMode(true).Name(); got != "reference" {
		t.Errorf("expected reference for authenticated mode, got %q", got)
	}
	if got := ForMode(false).Name(); got != "degraded" {
		t.Errorf("expected degraded for guest mode, got %q", got)
	}
}

func TestDaysUntilDue(t *testing.T) {
	tests := []struct {
		offset time.Duration
		want   int
	}{
		{-48 * time.Hour, 0}, // overdue floors at 0
		{0, 0},
		{time.Hour, 1},
		{24 * time.Hour, 1},
		{25 * time.Hour, 2},
		{7 * 24 * time.Hour, 7},
	}
	for _, tt := range tests {
		if got := daysUntilDue(scoreNow.Add(tt.offset), scoreNow); got != tt.want {
			t.Errorf("daysUntilDue(now%+v) = %d, want %d", tt.offset, got, tt.want)
		}
	}
}
