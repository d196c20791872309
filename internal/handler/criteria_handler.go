package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trainbase/evaluation-api/internal/models"
	"github.com/trainbase/evaluation-api/internal/service"
	appErrors "github.com/trainbase/evaluation-api/pkg/errors"
	"github.com/trainbase/evaluation-api/pkg/response"
)

// CriteriaHandler exposes criteria definition and resolution endpoints.
type CriteriaHandler struct {
	criteria *service.CriteriaService
	resolver *service.CriteriaResolver
}

// NewCriteriaHandler constructs handler.
func NewCriteriaHandler(criteria *service.CriteriaService, resolver *service.CriteriaResolver) *CriteriaHandler {
	return &CriteriaHandler{criteria: criteria, resolver: resolver}
}

// List godoc
// @Summary List evaluation criteria
// @Tags Criteria
// @Produce json
// @Param courseId query string false "Filter by course"
// @Param groupId query string false "Filter by targeted group"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /criteria [get]
func (h *CriteriaHandler) List(c *gin.Context) {
	filter := models.CriteriaFilter{CourseID: c.Query("courseId"), GroupID: c.Query("groupId")}
	if raw := c.Query("status"); raw != "" {
		status := models.CriteriaStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported status filter"))
			return
		}
		filter.Status = &status
	}
	definitions, err := h.criteria.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definitions, nil)
}

// Get godoc
// @Summary Get criteria definition
// @Tags Criteria
// @Produce json
// @Param id path string true "Criteria ID"
// @Success 200 {object} response.Envelope
// @Router /criteria/{id} [get]
func (h *CriteriaHandler) Get(c *gin.Context) {
	definition, err := h.criteria.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

// Create godoc
// @Summary Create criteria definition
// @Tags Criteria
// @Accept json
// @Produce json
// @Param payload body service.CreateCriteriaRequest true "Criteria payload"
// @Success 201 {object} response.Envelope
// @Router /criteria [post]
func (h *CriteriaHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	definition, err := h.criteria.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, definition)
}

// Update godoc
// @Summary Update criteria definition
// @Tags Criteria
// @Accept json
// @Produce json
// @Param id path string true "Criteria ID"
// @Param payload body service.UpdateCriteriaRequest true "Criteria payload"
// @Success 200 {object} response.Envelope
// @Router /criteria/{id} [put]
func (h *CriteriaHandler) Update(c *gin.Context) {
	var req service.UpdateCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	definition, err := h.criteria.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

type updateCriteriaStatusRequest struct {
	Status models.CriteriaStatus `json:"status"`
}

// UpdateStatus godoc
// @Summary Update criteria lifecycle status
// @Tags Criteria
// @Accept json
// @Produce json
// @Param id path string true "Criteria ID"
// @Param payload body updateCriteriaStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /criteria/{id}/status [patch]
func (h *CriteriaHandler) UpdateStatus(c *gin.Context) {
	var req updateCriteriaStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	definition, err := h.criteria.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

// Archive godoc
// @Summary Archive criteria definition
// @Tags Criteria
// @Produce json
// @Param id path string true "Criteria ID"
// @Success 200 {object} response.Envelope
// @Router /criteria/{id}/archive [post]
func (h *CriteriaHandler) Archive(c *gin.Context) {
	definition, err := h.criteria.Archive(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}

// ValidateWeights godoc
// @Summary Validate parameter weights without saving
// @Tags Criteria
// @Accept json
// @Produce json
// @Param payload body service.ValidateWeightsRequest true "Parameters payload"
// @Success 200 {object} response.Envelope
// @Router /criteria/validate-weights [post]
func (h *CriteriaHandler) ValidateWeights(c *gin.Context) {
	var req service.ValidateWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.criteria.ValidateWeights(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Resolve godoc
// @Summary Resolve the criteria in force for a group
// @Tags Criteria
// @Produce json
// @Param groupId path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{groupId}/criteria [get]
func (h *CriteriaHandler) Resolve(c *gin.Context) {
	definition, err := h.resolver.Resolve(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, definition, nil)
}
