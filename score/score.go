// Package score computes task priority scores.
//
// Two local calibrations exist and are deliberately not unified: the
// reference calibration used for authenticated sessions, and a
// degraded calibration used when the session is fully offline with no
// account. They produce different scores for the same task; callers
// select a strategy once per session. A third, model-driven
// calibration lives behind the optional scoring HTTP endpoint (see
// RemoteScorer); its unavailability is non-fatal and the local score
// stands.
package score

import (
	"math"
	"strings"
	"time"

	"github.com/mselway/triage/task"
)

// Strategy assigns a priority score to a task. Implementations are
// pure: no I/O, no side effects, deterministic for a fixed now.
type Strategy interface {
	// Name identifies the calibration, for logs and explanations.
	Name() string

	// Score computes the task's priority score. tags is the owner's
	// full tag set, used to resolve the task's tag ids.
	Score(t task.Task, tags []task.Tag, now time.Time) int
}

// ForMode returns the calibration for a session: the reference
// calibration when authenticated, the degraded one for guests.
func ForMode(authenticated bool) Strategy {
	if authenticated {
		return Reference{}
	}
	return Degraded{}
}

// daysUntilDue returns ceil((due - now) / 1 day), floored at zero.
func daysUntilDue(due, now time.Time) int {
	days := int(math.Ceil(due.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

// Reference is the richer calibration used for authenticated sessions.
//
// Terms: priority (urgent 30, high 20, medium 10, otherwise 5),
// due-date tiering (40/30/20/10 at <=1/<=3/<=7/later days, skipped
// when unscheduled), +15 when the reserved "urgent" tag is attached,
// and a progress term (+15 at >=75, +10 at 0, +5 otherwise). The sum
// clamps to 100.
type Reference struct{}

// Name implements Strategy.
func (Reference) Name() string { return "reference" }

// Score implements Strategy.
func (Reference) Score(t task.Task, tags []task.Tag, now time.Time) int {
	var score int

	switch task.NormalizePriority(t.Priority) {
	case task.PriorityUrgent:
		score += 30
	case task.PriorityHigh:
		score += 20
	case task.PriorityMedium:
		score += 10
	default:
		score += 5
	}

	if t.DueDate != nil {
		switch days := daysUntilDue(*t.DueDate, now); {
		case days <= 1:
			score += 40
		case days <= 3:
			score += 30
		case days <= 7:
			score += 20
		default:
			score += 10
		}
	}

	if urgentID := reservedUrgentTagID(tags); urgentID != "" && t.HasTag(urgentID) {
		score += 15
	}

	switch {
	case t.Progress >= 75:
		score += 15
	case t.Progress == 0:
		score += 10
	default:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// reservedUrgentTagID returns the id of the owner's reserved "urgent"
// tag, or "" when the owner has none.
func reservedUrgentTagID(tags []task.Tag) string {
	for _, tag := range tags {
		if tag.Name == task.UrgentTagName {
			return tag.ID
		}
	}
	return ""
}

// Degraded is the coarser calibration used for guest sessions. It must
// work fully offline with zero network cost.
//
// Terms: priority (high 30, medium 20, otherwise 10; urgent falls
// into the otherwise branch, a known divergence from the reference
// calibration), due-date tiering (30/20/10 at <=1/<=3/<=7 days,
// nothing later), and +25 when any attached tag's name contains
// "urgent". No progress term and no clamp; the maximum reachable sum
// is 85.
type Degraded struct{}

// Name implements Strategy.
func (Degraded) Name() string { return "degraded" }

// Score implements Strategy.
func (Degraded) Score(t task.Task, tags []task.Tag, now time.Time) int {
	var score int

	switch task.NormalizePriority(t.Priority) {
	case task.PriorityHigh:
		score += 30
	case task.PriorityMedium:
		score += 20
	default:
		score += 10
	}

	if t.DueDate != nil {
		switch days := daysUntilDue(*t.DueDate, now); {
		case days <= 1:
			score += 30
		case days <= 3:
			score += 20
		case days <= 7:
			score += 10
		}
	}

	byID := make(map[string]task.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	for _, id := range t.TagIDs {
		if tag, ok := byID[id]; ok && strings.Contains(strings.ToLower(tag.Name), task.UrgentTagName) {
			score += 25
			break
		}
	}

	return score
}
