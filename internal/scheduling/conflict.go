package scheduling

import (
	"context"
	"time"

	"recruiting-service/internal/model"
)

// ConflictSummary describes one interview that collides with a probed window.
type ConflictSummary struct {
	InterviewID    uint                  `json:"interview_id"`
	CandidateID    uint                  `json:"candidate_id"`
	InterviewerIDs model.IDList          `json:"interviewer_ids"`
	Date           time.Time             `json:"date"`
	DurationMins   int                   `json:"duration_mins"`
	Stage          string                `json:"stage,omitempty"`
	Status         model.InterviewStatus `json:"status"`
}

// DetectConflicts finds non-cancelled interviews whose window overlaps
// [start, end) and whose interviewers intersect participantIDs. Windows are
// half-open, so back-to-back interviews do not conflict. excludeID skips the
// interview being rescheduled; pass 0 otherwise.
//
// The date cutoff is pushed to storage; the overlap and intersection tests
// run here. Pure read, no side effects: callers use it both as a hard guard
// (create) and as an advisory probe (reschedule).
func DetectConflicts(ctx context.Context, store Store, tenantID uint, participantIDs model.IDList, start, end time.Time, excludeID uint) ([]ConflictSummary, error) {
	candidates, err := store.FindStartingBefore(ctx, tenantID, end, excludeID)
	if err != nil {
		return nil, err
	}
	var conflicts []ConflictSummary
	for _, iv := range candidates {
		if !iv.InterviewerIDs.Intersects(participantIDs) {
			continue
		}
		// half-open overlap: startA < endB && endA > startB
		if iv.Date.Before(end) && iv.EndTime().After(start) {
			conflicts = append(conflicts, ConflictSummary{
				InterviewID:    iv.ID,
				CandidateID:    iv.CandidateID,
				InterviewerIDs: iv.InterviewerIDs,
				Date:           iv.Date,
				DurationMins:   iv.DurationMins,
				Stage:          iv.Stage,
				Status:         iv.Status,
			})
		}
	}
	return conflicts, nil
}

func conflictDetails(conflicts []ConflictSummary) map[string]interface{} {
	return map[string]interface{}{"conflicts": conflicts}
}
