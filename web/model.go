package web

import (
	"time"

	"github.com/mselway/triage/score"
	"github.com/mselway/triage/task"
)

// Model is the endpoint's own calibration. It starts from the
// reference terms and adds a staleness nudge so tasks nobody has
// touched in a while drift upward instead of sinking below fresh
// low-priority ones.
type Model struct{}

// Name identifies the calibration.
func (Model) Name() string { return "model" }

// staleness adds one point per day since the last update, capped.
const stalenessCap = 10

// Score implements score.Strategy.
func (Model) Score(t task.Task, tags []task.Tag, now time.Time) int {
	s := score.Reference{}.Score(t, tags, now)

	if t.Status != task.StatusCompleted && !t.UpdatedAt.IsZero() {
		days := int(now.Sub(t.UpdatedAt).Hours() / 24)
		if days > stalenessCap {
			days = stalenessCap
		}
		if days > 0 {
			s += days
		}
	}

	if s > 100 {
		s = 100
	}
	return s
}
