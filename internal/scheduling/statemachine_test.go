package scheduling

import (
	"strings"
	"testing"

	"recruiting-service/internal/model"
)

var allStatuses = []model.InterviewStatus{
	model.StatusScheduled,
	model.StatusRescheduled,
	model.StatusCompleted,
	model.StatusCancelled,
	model.StatusNoShow,
}

var legalTransitions = map[model.InterviewStatus][]model.InterviewStatus{
	model.StatusScheduled:   {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusRescheduled},
	model.StatusRescheduled: {model.StatusCompleted, model.StatusCancelled, model.StatusNoShow, model.StatusScheduled},
	model.StatusCompleted:   {},
	model.StatusCancelled:   {model.StatusScheduled},
	model.StatusNoShow:      {model.StatusScheduled},
}

func isLegal(from, to model.InterviewStatus) bool {
	for _, s := range legalTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func TestTransitionTable(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateTransition(from, to)
			if isLegal(from, to) {
				if err != nil {
					t.Errorf("%s -> %s: unexpected error %v", from, to, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s -> %s: expected rejection", from, to)
				continue
			}
			if KindOf(err) != KindBadRequest {
				t.Errorf("%s -> %s: kind = %v, want BadRequest", from, to, KindOf(err))
			}
		}
	}
}

func TestInvalidTransitionNamesAllowedSet(t *testing.T) {
	err := ValidateTransition(model.StatusCancelled, model.StatusCompleted)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), string(model.StatusScheduled)) {
		t.Fatalf("error %q does not name the allowed set", err.Error())
	}
}

func TestTerminalStatusMentionedInError(t *testing.T) {
	err := ValidateTransition(model.StatusCompleted, model.StatusScheduled)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "terminal") {
		t.Fatalf("error %q should call out the terminal state", err.Error())
	}
}

func TestReschedulable(t *testing.T) {
	for _, s := range allStatuses {
		want := s == model.StatusScheduled || s == model.StatusRescheduled
		if got := Reschedulable(s); got != want {
			t.Errorf("Reschedulable(%s) = %v, want %v", s, got, want)
		}
	}
}
