package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Suryaprasath-41/Feedback-System/internal/service"
	"github.com/Suryaprasath-41/Feedback-System/pkg/response"
)

// openUpload returns the xlsx file posted in the "file" form field.
// On failure a response has been written and the caller should return.
func openUpload(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		bindFailed(c, err)
		return nil, false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.BadRequest(c, 14004, "only .xlsx files are accepted")
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		response.BadRequest(c, 14004, "the uploaded file could not be read")
		return nil, false
	}
	return file, true
}

func handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 14004, "the uploaded file is not a readable xlsx workbook")
	default:
		handleCommonError(c, err)
	}
}

// sendXLSX writes a workbook as a download
func sendXLSX(c *gin.Context, data []byte, filename string) {
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
