package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/trainbase/evaluation-api/internal/service"
	"github.com/trainbase/evaluation-api/pkg/response"
)

// ReportHandler exposes report export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GroupReport godoc
// @Summary Export a group evaluation report
// @Tags Reports
// @Produce application/pdf
// @Produce text/csv
// @Param groupId path string true "Group ID"
// @Param format query string false "Export format (pdf or csv)" default(pdf)
// @Success 200 {file} file
// @Router /groups/{groupId}/report [get]
func (h *ReportHandler) GroupReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatPDF)))
	result, err := h.reports.GroupReport(c.Request.Context(), c.Param("groupId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(200, result.ContentType, result.Data)
}
