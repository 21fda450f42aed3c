package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"recruiting-service/internal/middleware"
	"recruiting-service/internal/model"
	"recruiting-service/internal/scheduling"
	"recruiting-service/pkg/database"
	"recruiting-service/pkg/logger"
	"recruiting-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var schedSvc *scheduling.Service

// InitScheduling wires the scheduling service used by the interview handlers
func InitScheduling(s *scheduling.Service) {
	schedSvc = s
}

// InterviewRequest defines the structure for interview creation requests
type InterviewRequest struct {
	CandidateID    uint      `json:"candidate_id" validate:"required"`
	InterviewerIDs []uint    `json:"interviewer_ids" validate:"required,min=1"`
	StartAt        time.Time `json:"start_at" validate:"required"`
	DurationMins   int       `json:"duration_mins" validate:"required,gt=0"`
	Stage          string    `json:"stage"`
	MeetingLink    string    `json:"meeting_link"`
	Notes          string    `json:"notes"`
}

// RescheduleRequest defines the structure for reschedule requests
type RescheduleRequest struct {
	StartAt      time.Time `json:"start_at" validate:"required"`
	DurationMins int       `json:"duration_mins" validate:"required,gt=0"`
}

// CompleteRequest captures optional feedback recorded at completion
type CompleteRequest struct {
	HasFeedback bool    `json:"has_feedback"`
	AvgRating   float64 `json:"avg_rating" validate:"gte=0,lte=5"`
}

// BulkScheduleRequest defines the structure for batch scheduling requests.
// Either bulk_mode or the legacy strategy field must be provided.
type BulkScheduleRequest struct {
	CandidateIDs   []uint    `json:"candidate_ids" validate:"required,min=1"`
	InterviewerIDs []uint    `json:"interviewer_ids" validate:"required,min=1"`
	DurationMins   int       `json:"duration_mins" validate:"required,gt=0"`
	BulkMode       string    `json:"bulk_mode"`
	Strategy       string    `json:"strategy"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	Stage          string    `json:"stage"`
}

// CreateInterview handles scheduling a new interview
func CreateInterview(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("create")

	var req InterviewRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	iv, err := schedSvc.Create(c.Request().Context(), tenantID, actorID, scheduling.CreateInput{
		CandidateID:    req.CandidateID,
		InterviewerIDs: req.InterviewerIDs,
		StartAt:        req.StartAt,
		DurationMins:   req.DurationMins,
		Stage:          req.Stage,
		MeetingLink:    req.MeetingLink,
		Notes:          req.Notes,
	})
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Interview scheduled",
		zap.Uint("interview_id", iv.ID),
		zap.Uint("candidate_id", iv.CandidateID),
		zap.Time("date", iv.Date))
	return c.JSON(http.StatusCreated, iv)
}

// GetInterview handles retrieving a single interview by ID
func GetInterview(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interview id"})
	}

	iv, err := schedSvc.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return writeSchedulingError(c, log, err)
	}
	return c.JSON(http.StatusOK, iv)
}

// ListInterviews handles retrieving interviews with optional filtering
func ListInterviews(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	defer prometheus.TrackDBOperation("select")(time.Now())

	db := database.GetDB()
	var interviews []model.Interview

	query := db.Where("tenant_id = ?", tenantID)

	// Filter by status if specified
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	// Filter by candidate if specified
	if candidateID := c.QueryParam("candidate_id"); candidateID != "" {
		query = query.Where("candidate_id = ?", candidateID)
	}

	// Filter by date range if specified
	if from := c.QueryParam("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("date >= ?", t)
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("date < ?", t)
		}
	}

	result := query.Order("date asc").Find(&interviews)
	if result.Error != nil {
		log.Error("Failed to list interviews", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve interviews"})
	}

	return c.JSON(http.StatusOK, interviews)
}

// RescheduleInterview handles moving an interview to a new window. Conflicts
// with the new window are returned as warnings, not errors.
func RescheduleInterview(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("reschedule")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interview id"})
	}

	var req RescheduleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	result, err := schedSvc.Reschedule(c.Request().Context(), tenantID, actorID, id, scheduling.RescheduleInput{
		StartAt:      req.StartAt,
		DurationMins: req.DurationMins,
	})
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Interview rescheduled",
		zap.Uint("interview_id", id),
		zap.Bool("has_conflicts", result.HasConflicts))
	return c.JSON(http.StatusOK, result)
}

// CancelInterview handles cancelling an interview
func CancelInterview(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("cancel")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interview id"})
	}

	iv, err := schedSvc.Cancel(c.Request().Context(), tenantID, actorID, id)
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Interview cancelled", zap.Uint("interview_id", iv.ID))
	return c.JSON(http.StatusOK, iv)
}

// CompleteInterview handles marking an interview as completed
func CompleteInterview(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("complete")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interview id"})
	}

	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	iv, err := schedSvc.Complete(c.Request().Context(), tenantID, actorID, id, scheduling.CompleteInput{
		HasFeedback: req.HasFeedback,
		AvgRating:   req.AvgRating,
	})
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Interview completed", zap.Uint("interview_id", iv.ID))
	return c.JSON(http.StatusOK, iv)
}

// MarkInterviewNoShow handles flagging a candidate no-show
func MarkInterviewNoShow(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("no_show")

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid interview id"})
	}

	iv, err := schedSvc.MarkNoShow(c.Request().Context(), tenantID, actorID, id)
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Interview marked as no-show", zap.Uint("interview_id", iv.ID))
	return c.JSON(http.StatusOK, iv)
}

// BulkScheduleInterviews handles batch scheduling in GROUP or SEQUENTIAL mode
func BulkScheduleInterviews(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	actorID, _ := middleware.GetUserIDFromContext(c)
	prometheus.RecordInterviewOperation("bulk_schedule")

	var req BulkScheduleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	mode, err := scheduling.NormalizeBulkMode(req.BulkMode, req.Strategy)
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	result, err := schedSvc.BulkSchedule(c.Request().Context(), tenantID, actorID, scheduling.BulkInput{
		CandidateIDs:   req.CandidateIDs,
		InterviewerIDs: req.InterviewerIDs,
		DurationMins:   req.DurationMins,
		Mode:           mode,
		StartTime:      req.StartTime,
		Stage:          req.Stage,
	})
	if err != nil {
		return writeSchedulingError(c, log, err)
	}

	log.Info("Bulk scheduling finished",
		zap.String("batch_id", result.BatchID),
		zap.String("mode", string(result.Mode)),
		zap.Int("scheduled", len(result.Scheduled)),
		zap.Int("skipped", len(result.SkippedCandidates)))
	return c.JSON(http.StatusOK, result)
}

// writeSchedulingError maps the scheduling error taxonomy to HTTP statuses
func writeSchedulingError(c echo.Context, log *zap.Logger, err error) error {
	var e *scheduling.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case scheduling.KindNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": e.Message})
		case scheduling.KindBadRequest:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": e.Message})
		case scheduling.KindConflict:
			body := echo.Map{"error": e.Message}
			for k, v := range e.Details {
				body[k] = v
			}
			return c.JSON(http.StatusConflict, body)
		}
	}
	log.Error("Scheduling operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
