package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// ReportHandler aggregated feedback for admins and HODs
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// StaffReport one staff member's averages
// GET /api/v1/reports/staff?staff=&subject=&department=&semester=
func (h *ReportHandler) StaffReport(c *gin.Context) {
	var req dto.StaffReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.reportSvc.StaffReport(c.Request.Context(), &req)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, result)
}

// DepartmentReport one entry per expected assignment of a group
// GET /api/v1/reports/department?department=&semester=
func (h *ReportHandler) DepartmentReport(c *gin.Context) {
	var req dto.GroupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.reportSvc.DepartmentReport(c.Request.Context(), req.Department, req.Semester)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, result)
}

// NonSubmission pending students. With both department and semester the
// group's list is returned; otherwise a summary over the matching groups.
// GET /api/v1/reports/non-submission
func (h *ReportHandler) NonSubmission(c *gin.Context) {
	var req dto.NonSubmissionSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if req.Department != "" && req.Semester != "" {
		result, err := h.reportSvc.NonSubmitters(c.Request.Context(), req.Department, req.Semester)
		if err != nil {
			handleCommonError(c, err)
			return
		}
		response.OK(c, result)
		return
	}

	result, err := h.reportSvc.NonSubmissionSummary(c.Request.Context(), &req)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, result)
}
