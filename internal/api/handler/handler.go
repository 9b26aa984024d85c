package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/config"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	pkgerrors "github.com/Suryaprasath-41/Feedback-System/pkg/errors"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// Handler aggregate entry point for every handler
type Handler struct {
	Auth     *AuthHandler
	Feedback *FeedbackHandler
	Mapping  *MappingHandler
	Student  *StudentHandler
	Catalog  *CatalogHandler
	Report   *ReportHandler
	Export   *ExportHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(svc *service.Service, cfg *config.Config) *Handler {
	maxRows := cfg.Feedback.MaxImportRows
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Feedback: NewFeedbackHandler(svc.Resolver, svc.Submission, svc.Auth),
		Mapping:  NewMappingHandler(svc.Mapping, maxRows),
		Student:  NewStudentHandler(svc.Student, maxRows),
		Catalog:  NewCatalogHandler(svc.Catalog),
		Report:   NewReportHandler(svc.Report),
		Export:   NewExportHandler(svc.Export),
	}
}

// bindFailed answers a request whose body or query could not be bound
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
		return
	}
	response.BadRequest(c, 10001, "invalid parameters: "+err.Error())
}

// handleCommonError errors every module can return
func handleCommonError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "invalid input", verr.Errors)
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		response.ServiceUnavailable(c)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
