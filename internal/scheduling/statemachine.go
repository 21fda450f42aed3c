package scheduling

import (
	"strings"

	"recruiting-service/internal/model"
)

// transitions is the legal status transition table. A status missing from a
// row's target set is an illegal transition. COMPLETED is terminal.
var transitions = map[model.InterviewStatus][]model.InterviewStatus{
	model.StatusScheduled:   {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusRescheduled},
	model.StatusRescheduled: {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusScheduled},
	model.StatusCompleted:   {},
	model.StatusCancelled:   {model.StatusScheduled},
	model.StatusNoShow:      {model.StatusScheduled},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to model.InterviewStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a BadRequest error naming the allowed target set
// when the requested transition is not in the table.
func ValidateTransition(from, to model.InterviewStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	allowed := transitions[from]
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	if len(names) == 0 {
		return BadRequest("invalid transition %s -> %s: %s is terminal", from, to, from)
	}
	return BadRequest("invalid transition %s -> %s: allowed targets are %s", from, to, strings.Join(names, ", "))
}

// Reschedulable reports whether an interview in the given status may be
// rescheduled.
func Reschedulable(status model.InterviewStatus) bool {
	return status == model.StatusScheduled || status == model.StatusRescheduled
}
