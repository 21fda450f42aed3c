package scheduling

import (
	"context"
	"fmt"
	"time"

	"recruiting-service/internal/audit"
	"recruiting-service/internal/model"
	"recruiting-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Legacy strategy values accepted for backward compatibility.
const (
	legacyStrategySameTime     = "SAME_TIME"
	legacyStrategyPerCandidate = "PER_CANDIDATE"
	legacyStrategyAuto         = "AUTO"
)

// NormalizeBulkMode translates the request's mode or legacy strategy value
// into the internal mode. The internal model is mode-only; legacy values are
// mapped at this boundary and nowhere else.
func NormalizeBulkMode(mode, strategy string) (model.BulkMode, error) {
	switch model.BulkMode(mode) {
	case model.BulkModeGroup, model.BulkModeSequential:
		return model.BulkMode(mode), nil
	}
	if mode != "" {
		return "", BadRequest("unknown bulk mode %q", mode)
	}
	switch strategy {
	case legacyStrategySameTime:
		return model.BulkModeGroup, nil
	case legacyStrategyPerCandidate, legacyStrategyAuto:
		return model.BulkModeSequential, nil
	case "":
		return "", BadRequest("bulk mode is required")
	}
	return "", BadRequest("unknown strategy %q", strategy)
}

// BulkInput carries a batch scheduling request.
type BulkInput struct {
	CandidateIDs   []uint
	InterviewerIDs []uint
	DurationMins   int
	Mode           model.BulkMode
	StartTime      time.Time
	Stage          string
}

// SkippedCandidate records why a candidate was left out of the batch.
type SkippedCandidate struct {
	CandidateID uint   `json:"candidate_id"`
	Reason      string `json:"reason"`
}

// BulkResult summarizes a batch run.
type BulkResult struct {
	BatchID           string             `json:"batch_id"`
	Mode              model.BulkMode     `json:"mode"`
	Scheduled         []model.Interview  `json:"scheduled"`
	SkippedCandidates []SkippedCandidate `json:"skipped_candidates"`
}

// BulkSchedule places many candidates into interview slots in one request.
//
// GROUP creates a single interview shared by every eligible candidate; any
// interviewer conflict for the window skips the whole group. SEQUENTIAL packs
// candidates back-to-back from StartTime, each in its own transaction, and a
// single candidate's failure never aborts the rest of the batch.
func (s *Service) BulkSchedule(ctx context.Context, tenantID, actorID uint, in BulkInput) (*BulkResult, error) {
	if len(in.CandidateIDs) == 0 {
		return nil, BadRequest("at least one candidate is required")
	}
	if err := s.validateWindow(in.StartTime, in.DurationMins); err != nil {
		return nil, err
	}
	if len(in.InterviewerIDs) == 0 {
		return nil, BadRequest("at least one interviewer is required")
	}
	if err := s.requireInterviewers(ctx, tenantID, in.InterviewerIDs); err != nil {
		return nil, err
	}

	result := &BulkResult{
		BatchID: uuid.NewString(),
		Mode:    in.Mode,
	}

	// Filter out candidates that do not resolve in this tenant before any
	// scheduling attempt.
	var valid []uint
	for _, id := range in.CandidateIDs {
		c, err := s.store.GetCandidate(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if c == nil {
			result.SkippedCandidates = append(result.SkippedCandidates, SkippedCandidate{
				CandidateID: id, Reason: "Candidate not found",
			})
			continue
		}
		valid = append(valid, id)
	}

	switch in.Mode {
	case model.BulkModeGroup:
		s.bulkGroup(ctx, tenantID, actorID, in, valid, result)
	case model.BulkModeSequential:
		s.bulkSequential(ctx, tenantID, actorID, in, valid, result)
	default:
		return nil, BadRequest("unknown bulk mode %q", in.Mode)
	}

	s.recordAudit(ctx, audit.Entry{
		TenantID: tenantID,
		UserID:   actorID,
		Action:   "interview.bulk_schedule",
		Metadata: map[string]interface{}{
			"batch_id":  result.BatchID,
			"mode":      result.Mode,
			"requested": len(in.CandidateIDs),
			"scheduled": len(result.Scheduled),
			"skipped":   len(result.SkippedCandidates),
		},
	})
	prometheus.RecordBulkOutcome(string(in.Mode), len(result.Scheduled), len(result.SkippedCandidates))
	return result, nil
}

// bulkGroup places the eligible candidates into one shared interview. A
// candidate who already has an active interview is dropped from the group
// inside the transaction; an interviewer conflict skips every candidate.
func (s *Service) bulkGroup(ctx context.Context, tenantID, actorID uint, in BulkInput, valid []uint, result *BulkResult) {
	if len(valid) == 0 {
		return
	}
	interviewers := model.IDList(in.InterviewerIDs)
	start := in.StartTime
	end := start.Add(time.Duration(in.DurationMins) * time.Minute)

	var iv *model.Interview
	var busy []SkippedCandidate
	err := s.store.InTx(ctx, func(tx Store) error {
		iv, busy = nil, nil
		var eligible []uint
		for _, candidateID := range valid {
			existing, err := tx.FindActiveInterview(ctx, tenantID, candidateID, s.now())
			if err != nil {
				return err
			}
			if existing != nil {
				busy = append(busy, SkippedCandidate{
					CandidateID: candidateID, Reason: "candidate already has an active interview",
				})
				continue
			}
			eligible = append(eligible, candidateID)
		}
		if len(eligible) == 0 {
			return nil
		}
		conflicts, err := DetectConflicts(ctx, tx, tenantID, interviewers, start, end, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			prometheus.RecordConflictDetected("bulk_group")
			return Conflict("interviewer unavailable", conflictDetails(conflicts))
		}
		iv = &model.Interview{
			TenantID:       tenantID,
			CandidateID:    eligible[0],
			CandidateIDs:   model.IDList(eligible),
			InterviewerIDs: interviewers,
			Date:           start,
			DurationMins:   in.DurationMins,
			Stage:          in.Stage,
			Status:         model.StatusScheduled,
			BulkMode:       model.BulkModeGroup,
			BulkBatchID:    result.BatchID,
		}
		if err := tx.CreateInterview(ctx, iv); err != nil {
			return err
		}
		if err := reserveBlocks(ctx, tx, tenantID, interviewers, start, end, iv.ID,
			fmt.Sprintf("Group interview #%d", iv.ID)); err != nil {
			return err
		}
		if in.Stage != "" {
			for _, candidateID := range eligible {
				if err := s.applyStage(ctx, tx, tenantID, actorID, candidateID, in.Stage, result.BatchID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		reason := "interviewer unavailable"
		if KindOf(err) != KindConflict {
			reason = err.Error()
			s.log.Error("group bulk placement failed",
				zap.String("batch_id", result.BatchID), zap.Error(err))
		}
		for _, candidateID := range valid {
			result.SkippedCandidates = append(result.SkippedCandidates, SkippedCandidate{
				CandidateID: candidateID, Reason: reason,
			})
		}
		return
	}

	result.SkippedCandidates = append(result.SkippedCandidates, busy...)
	if iv == nil {
		return
	}
	result.Scheduled = append(result.Scheduled, *iv)
	s.afterCommit(ctx, iv, "created")
}

// bulkSequential packs candidates back-to-back from StartTime. Each slot is
// its own transaction with its own conflict check; failures are recorded and
// the loop continues.
func (s *Service) bulkSequential(ctx context.Context, tenantID, actorID uint, in BulkInput, valid []uint, result *BulkResult) {
	slot := time.Duration(in.DurationMins) * time.Minute
	for i, candidateID := range valid {
		start := in.StartTime.Add(time.Duration(i) * slot)
		iv, err := s.createBulkSlot(ctx, tenantID, actorID, in, candidateID, start, result.BatchID)
		if err != nil {
			reason := err.Error()
			if KindOf(err) == KindConflict {
				prometheus.RecordConflictDetected("bulk_sequential")
			}
			result.SkippedCandidates = append(result.SkippedCandidates, SkippedCandidate{
				CandidateID: candidateID, Reason: reason,
			})
			continue
		}
		result.Scheduled = append(result.Scheduled, *iv)
		s.afterCommit(ctx, iv, "created")
	}
}

func (s *Service) createBulkSlot(ctx context.Context, tenantID, actorID uint, in BulkInput, candidateID uint, start time.Time, batchID string) (*model.Interview, error) {
	interviewers := model.IDList(in.InterviewerIDs)
	end := start.Add(time.Duration(in.DurationMins) * time.Minute)

	iv := &model.Interview{
		TenantID:       tenantID,
		CandidateID:    candidateID,
		InterviewerIDs: interviewers,
		Date:           start,
		DurationMins:   in.DurationMins,
		Stage:          in.Stage,
		Status:         model.StatusScheduled,
		BulkMode:       model.BulkModeSequential,
		BulkBatchID:    batchID,
	}
	err := s.store.InTx(ctx, func(tx Store) error {
		existing, err := tx.FindActiveInterview(ctx, tenantID, candidateID, s.now())
		if err != nil {
			return err
		}
		if existing != nil {
			return Conflict("candidate already has an active interview", map[string]interface{}{
				"existing_interview_id": existing.ID,
				"existing_date":         existing.Date,
			})
		}
		conflicts, err := DetectConflicts(ctx, tx, tenantID, interviewers, start, end, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return Conflict("interviewer unavailable", conflictDetails(conflicts))
		}
		if err := tx.CreateInterview(ctx, iv); err != nil {
			return err
		}
		if err := reserveBlocks(ctx, tx, tenantID, interviewers, start, end, iv.ID,
			fmt.Sprintf("Interview #%d", iv.ID)); err != nil {
			return err
		}
		if in.Stage != "" {
			return s.applyStage(ctx, tx, tenantID, actorID, candidateID, in.Stage, batchID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return iv, nil
}

// applyStage moves the candidate to the target stage and appends the
// corresponding history row.
func (s *Service) applyStage(ctx context.Context, tx Store, tenantID, actorID, candidateID uint, stage, batchID string) error {
	candidate, err := tx.GetCandidate(ctx, tenantID, candidateID)
	if err != nil {
		return err
	}
	previous := ""
	if candidate != nil {
		previous = candidate.Stage
	}
	if err := tx.UpdateCandidateStage(ctx, tenantID, candidateID, stage); err != nil {
		return err
	}
	return tx.CreateStageHistory(ctx, &model.CandidateStageHistory{
		TenantID:      tenantID,
		CandidateID:   candidateID,
		PreviousStage: previous,
		NewStage:      stage,
		Source:        model.StageChangeSourceSystem,
		TriggeredBy:   "bulk_schedule",
		ActorID:       actorID,
		Reason:        fmt.Sprintf("Bulk scheduling batch %s", batchID),
	})
}
