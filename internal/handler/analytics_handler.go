package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/service"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
	"github.com/trainbase/evaluation-api/pkg/response"
)

// AnalyticsHandler exposes aggregation endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Stats godoc
// @Summary Aggregated evaluation statistics
// @Tags Analytics
// @Produce json
// @Param groupId query string false "Filter by group"
// @Param trainerId query string false "Filter by trainer"
// @Param courseId query string false "Filter by course"
// @Param sessionId query string false "Filter by session"
// @Param studentId query string false "Filter by student"
// @Param dateFrom query string false "Created on or after (RFC3339)"
// @Param dateTo query string false "Created on or before (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /analytics/evaluations [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	filter := models.EvaluationFilter{
		GroupID:   c.Query("groupId"),
		TrainerID: c.Query("trainerId"),
		CourseID:  c.Query("courseId"),
		SessionID: c.Query("sessionId"),
		StudentID: c.Query("studentId"),
	}
	var err error
	if filter.DateFrom, err = parseTimeQuery(c.Query("dateFrom")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dateFrom must be RFC3339"))
		return
	}
	if filter.DateTo, err = parseTimeQuery(c.Query("dateTo")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dateTo must be RFC3339"))
		return
	}
	stats, fromCache, err := h.analytics.Stats(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache": fromCache})
}

// SystemMetrics godoc
// @Summary System instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}
