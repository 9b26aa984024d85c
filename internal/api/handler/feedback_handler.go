package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// FeedbackHandler the student portal: lookup, questions and submission
type FeedbackHandler struct {
	resolver   service.ResolverService
	submission service.SubmissionService
	authSvc    service.AuthService
}

// NewFeedbackHandler creates a FeedbackHandler
func NewFeedbackHandler(resolver service.ResolverService, submission service.SubmissionService, authSvc service.AuthService) *FeedbackHandler {
	return &FeedbackHandler{resolver: resolver, submission: submission, authSvc: authSvc}
}

// Resolve looks a student up and returns what they must rate.
// A token for submitting is issued only while feedback is still pending.
// POST /api/v1/students/resolve
func (h *FeedbackHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), req.RegisterNo)
	if err != nil {
		h.handleFeedbackError(c, err)
		return
	}

	resp := res.Response()
	if !res.Submitted && len(res.Assignments) > 0 {
		token, expiresIn, err := h.authSvc.IssueStudentToken(res.Student.RegisterNo)
		if err != nil {
			handleCommonError(c, err)
			return
		}
		resp.Token = token
		resp.ExpiresIn = expiresIn
	}

	response.OK(c, resp)
}

// Questions the ten feedback questions
// GET /api/v1/questions
func (h *FeedbackHandler) Questions(c *gin.Context) {
	response.OK(c, gin.H{"list": h.submission.Questions()})
}

// Submit records the student's ratings
// POST /api/v1/feedback/submit
func (h *FeedbackHandler) Submit(c *gin.Context) {
	regNo, ok := MustGetRegisterNo(c)
	if !ok {
		return
	}

	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.submission.Submit(c.Request.Context(), regNo, &req)
	if err != nil {
		h.handleFeedbackError(c, err)
		return
	}

	switch service.Outcome(result.Outcome) {
	case service.OutcomeSuccess:
		response.Created(c, result)
	case service.OutcomeAlreadySubmitted:
		response.ErrorWithDetails(c, http.StatusConflict, 15001, "feedback already submitted", result)
	case service.OutcomeInvalidInput:
		response.ErrorWithDetails(c, http.StatusBadRequest, 15002, "invalid ratings", result)
	case service.OutcomePartialMismatch:
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, 15003, "ratings do not match the assigned staff and subjects", result)
	default:
		response.InternalError(c)
	}
}

func (h *FeedbackHandler) handleFeedbackError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "register number not found")
	default:
		handleCommonError(c, err)
	}
}
