package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// ExportHandler xlsx downloads of the reports
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportDepartmentReport department report workbook
// GET /api/v1/reports/department/export?department=&semester=
func (h *ExportHandler) ExportDepartmentReport(c *gin.Context) {
	var req dto.GroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportDepartmentReport(c.Request.Context(), req.Department, req.Semester)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendXLSX(c, buf.Bytes(), filename)
}

// ExportNonSubmission non-submission workbook
// GET /api/v1/reports/non-submission/export?department=&semester=
func (h *ExportHandler) ExportNonSubmission(c *gin.Context) {
	var req dto.NonSubmissionSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportNonSubmission(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendXLSX(c, buf.Bytes(), filename)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoAssignments):
		response.NotFound(c, 16001, "the group has no mapped staff or subjects")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleCommonError(c, err)
	}
}
