package handler

import (
	"net/http"
	"time"

	"recruiting-service/internal/middleware"
	"recruiting-service/internal/model"
	"recruiting-service/pkg/database"
	"recruiting-service/pkg/logger"
	"recruiting-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CandidateRequest defines the structure for candidate creation requests
type CandidateRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
	Stage string `json:"stage"`
	Notes string `json:"notes"`
}

// ListCandidates handles retrieving all candidates with optional filtering
func ListCandidates(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	defer prometheus.TrackDBOperation("select")(time.Now())

	db := database.GetDB()
	var candidates []model.Candidate

	query := db.Where("tenant_id = ?", tenantID)
	if stage := c.QueryParam("stage"); stage != "" {
		query = query.Where("stage = ?", stage)
	}

	result := query.Find(&candidates)
	if result.Error != nil {
		log.Error("Failed to list candidates", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve candidates"})
	}

	return c.JSON(http.StatusOK, candidates)
}

// GetCandidate handles retrieving a single candidate by ID
func GetCandidate(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}

	var candidate model.Candidate
	result := database.GetDB().Where("tenant_id = ? AND id = ?", tenantID, id).First(&candidate)
	if result.Error != nil {
		log.Warn("Candidate not found", zap.Uint("candidate_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Candidate not found"})
	}

	return c.JSON(http.StatusOK, candidate)
}

// CreateCandidate handles creating a new candidate
func CreateCandidate(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var req CandidateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Request validation failed", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	candidate := model.Candidate{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Stage:    req.Stage,
		Notes:    req.Notes,
	}
	result := database.GetDB().Create(&candidate)
	if result.Error != nil {
		log.Error("Failed to create candidate", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create candidate"})
	}

	log.Info("Candidate created",
		zap.Uint("candidate_id", candidate.ID),
		zap.String("name", candidate.Name))
	return c.JSON(http.StatusCreated, candidate)
}

// ListCandidateStageHistory returns the append-only stage change log for a candidate
func ListCandidateStageHistory(c echo.Context) error {
	log := logger.FromContext(c)
	tenantID, _ := middleware.GetTenantIDFromContext(c)

	id, err := parseUintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}

	var candidate model.Candidate
	if err := database.GetDB().Where("tenant_id = ? AND id = ?", tenantID, id).First(&candidate).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Candidate not found"})
	}

	var history []model.CandidateStageHistory
	result := database.GetDB().
		Where("tenant_id = ? AND candidate_id = ?", tenantID, id).
		Order("created_at asc").
		Find(&history)
	if result.Error != nil {
		log.Error("Failed to list stage history", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve stage history"})
	}

	return c.JSON(http.StatusOK, history)
}
