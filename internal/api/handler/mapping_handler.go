package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// MappingHandler mapping administration
type MappingHandler struct {
	mappingSvc service.MappingService
	maxRows    int
}

// NewMappingHandler creates a MappingHandler
func NewMappingHandler(mappingSvc service.MappingService, maxRows int) *MappingHandler {
	return &MappingHandler{mappingSvc: mappingSvc, maxRows: maxRows}
}

// Reconcile merges a JSON batch
// POST /api/v1/admin/mappings/reconcile
func (h *MappingHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	if h.maxRows > 0 && len(req.Rows) > h.maxRows {
		response.BadRequest(c, 14002, "too many rows in one batch")
		return
	}

	rows := make([]service.MappingRow, 0, len(req.Rows))
	for i, r := range req.Rows {
		rows = append(rows, service.MappingRow{
			Row:        i + 1,
			Department: r.Department,
			Semester:   r.Semester,
			Staff:      r.Staff,
			Subject:    r.Subject,
		})
	}

	h.reconcile(c, rows, req.Mode, req.Department, req.Semester)
}

// Upload merges the rows of an xlsx workbook
// POST /api/v1/admin/mappings/upload (multipart: file, mode, department, semester)
func (h *MappingHandler) Upload(c *gin.Context) {
	var req dto.UploadMappingRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}

	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := service.ParseMappingFile(file, h.maxRows)
	if err != nil {
		handleImportError(c, err)
		return
	}

	h.reconcile(c, rows, req.Mode, req.Department, req.Semester)
}

func (h *MappingHandler) reconcile(c *gin.Context, rows []service.MappingRow, mode, department, semester string) {
	result, err := h.mappingSvc.Reconcile(
		c.Request.Context(),
		rows,
		service.ReconcileMode(mode),
		service.Scope{Department: department, Semester: semester},
		CallerName(c),
	)
	if err != nil {
		h.handleMappingError(c, err)
		return
	}
	response.OK(c, result)
}

// CreateMapping adds one mapping
// POST /api/v1/admin/mappings
func (h *MappingHandler) CreateMapping(c *gin.Context) {
	var req dto.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	m, err := h.mappingSvc.Create(c.Request.Context(), &req, CallerName(c))
	if err != nil {
		h.handleMappingError(c, err)
		return
	}

	response.Created(c, m)
}

// ListMappings mappings with optional filters
// GET /api/v1/admin/mappings
func (h *MappingHandler) ListMappings(c *gin.Context) {
	var req dto.MappingListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.mappingSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleMappingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list, "total": len(list)})
}

// DeleteMapping removes one mapping
// DELETE /api/v1/admin/mappings/:id
func (h *MappingHandler) DeleteMapping(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.BadRequest(c, 10001, "invalid mapping id")
		return
	}

	if err := h.mappingSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleMappingError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteScope removes every mapping of a department, a semester or both
// DELETE /api/v1/admin/mappings?department=&semester=
func (h *MappingHandler) DeleteScope(c *gin.Context) {
	var req dto.DeleteMappingScopeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	n, err := h.mappingSvc.DeleteScope(c.Request.Context(), service.Scope{
		Department: req.Department,
		Semester:   req.Semester,
	})
	if err != nil {
		h.handleMappingError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": n})
}

// Template sample workbook for uploads
// GET /api/v1/admin/mappings/template
func (h *MappingHandler) Template(c *gin.Context) {
	buf, err := service.MappingTemplate()
	if err != nil {
		handleCommonError(c, err)
		return
	}
	sendXLSX(c, buf.Bytes(), "mapping_template.xlsx")
}

func (h *MappingHandler) handleMappingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidMode):
		response.BadRequest(c, 13001, "mode must be append or replace")
	case errors.Is(err, service.ErrScopeRequired):
		response.BadRequest(c, 13002, "replace mode needs a department or semester scope")
	case errors.Is(err, service.ErrMappingExists):
		response.Conflict(c, 13003, "mapping already exists")
	case errors.Is(err, service.ErrMappingNotFound):
		response.NotFound(c, 13004, "mapping not found")
	default:
		handleCommonError(c, err)
	}
}
