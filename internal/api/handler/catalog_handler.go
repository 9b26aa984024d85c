package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/internal/model"
	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// CatalogHandler name catalogs and the end-of-term archive
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler creates a CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// ListCatalog every known department, semester, staff and subject name
// GET /api/v1/admin/catalog
func (h *CatalogHandler) ListCatalog(c *gin.Context) {
	list, err := h.catalogSvc.List(c.Request.Context())
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, list)
}

// AddNames bulk-adds names to one catalog
// POST /api/v1/admin/catalog/:kind
func (h *CatalogHandler) AddNames(c *gin.Context) {
	var req dto.BulkAddNamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.AddNames(c.Request.Context(), model.CatalogKind(c.Param("kind")), req.Names)
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, result)
}

// Archive clears the term's feedback data
// POST /api/v1/admin/archive
func (h *CatalogHandler) Archive(c *gin.Context) {
	var req dto.ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.Archive(c.Request.Context(), CallerName(c))
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CatalogHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownCatalog):
		response.NotFound(c, 17001, "unknown catalog")
	default:
		handleCommonError(c, err)
	}
}
