package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/service"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
	"github.com/trainbase/evaluation-api/pkg/response"
)

// EvaluationHandler exposes student evaluation endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs handler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Create godoc
// @Summary Record a student evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.CreateEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, eval)
}

// Get godoc
// @Summary Get an evaluation
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	eval, err := h.evaluations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// List godoc
// @Summary List evaluations
// @Tags Evaluations
// @Produce json
// @Param groupId query string false "Filter by group"
// @Param trainerId query string false "Filter by trainer"
// @Param courseId query string false "Filter by course"
// @Param sessionId query string false "Filter by session"
// @Param studentId query string false "Filter by student"
// @Param dateFrom query string false "Created on or after (RFC3339)"
// @Param dateTo query string false "Created on or before (RFC3339)"
// @Param page query int false "Page number, starting at 1"
// @Param pageSize query int false "Page size; omit to return all matches"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
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
	if pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "0")); err != nil || pageSize < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pageSize must be a non-negative integer"))
		return
	} else if pageSize > 0 {
		filter.Limit = pageSize
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer"))
			return
		}
		filter.Offset = (page - 1) * pageSize
	}
	evaluations, pagination, err := h.evaluations.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, pagination)
}

// Update godoc
// @Summary Update an evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param payload body service.UpdateEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id} [put]
func (h *EvaluationHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// Share godoc
// @Summary Share an evaluation with its audiences
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path string true "Evaluation ID"
// @Param payload body service.ShareEvaluationRequest true "Share payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/share [post]
func (h *EvaluationHandler) Share(c *gin.Context) {
	var req service.ShareEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.Share(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// DeleteByGroup godoc
// @Summary Delete all evaluations of a group
// @Tags Evaluations
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{groupId}/evaluations [delete]
func (h *EvaluationHandler) DeleteByGroup(c *gin.Context) {
	deleted, err := h.evaluations.DeleteByGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": deleted}, nil)
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
