package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// StudentHandler student administration
type StudentHandler struct {
	studentSvc service.StudentService
	maxRows    int
}

// NewStudentHandler creates a StudentHandler
func NewStudentHandler(studentSvc service.StudentService, maxRows int) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, maxRows: maxRows}
}

// ListStudents paged list with optional group filters
// GET /api/v1/admin/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, page)
}

// CreateStudent adds one student
// POST /api/v1/admin/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	s, err := h.studentSvc.Create(c.Request.Context(), &req, CallerName(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, s)
}

// AddRange adds every numeric register number from start to end
// POST /api/v1/admin/students/range
func (h *StudentHandler) AddRange(c *gin.Context) {
	var req dto.AddStudentRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.studentSvc.AddRange(c.Request.Context(), &req, CallerName(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// Upload imports the students of an xlsx workbook
// POST /api/v1/admin/students/upload
func (h *StudentHandler) Upload(c *gin.Context) {
	file, ok := openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := service.ParseStudentFile(file, h.maxRows)
	if err != nil {
		handleImportError(c, err)
		return
	}

	result, err := h.studentSvc.Import(c.Request.Context(), rows, CallerName(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateStudent moves a student to another department or semester
// PUT /api/v1/admin/students/:register_no
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	s, err := h.studentSvc.Update(c.Request.Context(), c.Param("register_no"), &req, CallerName(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, s)
}

// DeleteStudent removes a student
// DELETE /api/v1/admin/students/:register_no
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("register_no")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListGroups every (department, semester) pair that has students
// GET /api/v1/admin/students/groups
func (h *StudentHandler) ListGroups(c *gin.Context) {
	groups, err := h.studentSvc.Groups(c.Request.Context())
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// Template sample workbook for uploads
// GET /api/v1/admin/students/template
func (h *StudentHandler) Template(c *gin.Context) {
	buf, err := service.StudentTemplate()
	if err != nil {
		handleCommonError(c, err)
		return
	}
	sendXLSX(c, buf.Bytes(), "student_template.xlsx")
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "register number not found")
	case errors.Is(err, service.ErrStudentExists):
		response.Conflict(c, 12002, "register number already exists")
	case errors.Is(err, service.ErrRangeTooLarge):
		response.BadRequest(c, 12003, err.Error())
	case errors.Is(err, service.ErrNothingToApply):
		response.BadRequest(c, 12004, "no fields to update")
	default:
		handleCommonError(c, err)
	}
}
