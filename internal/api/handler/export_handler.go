package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler descarga de actas en Excel y del calendario de finales
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler crea el ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGradeSheet acta de cursada
// GET /api/v1/subject-commissions/:id/grades/export
func (h *ExportHandler) ExportGradeSheet(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	buf, filename, err := h.exportSvc.ExportGradeSheet(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// ExportCallRoster acta de examen del llamado
// GET /api/v1/exam-calls/:id/roster/export
func (h *ExportHandler) ExportCallRoster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	buf, filename, err := h.exportSvc.ExportCallRoster(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendXLSX(c, buf, filename)
}

// ExportExamCalendar finales del alumno en formato iCalendar
// GET /api/v1/exam-enrollments/mine/calendar.ics
func (h *ExportHandler) ExportExamCalendar(c *gin.Context) {
	studentID, _, ok := MustGetCaller(c)
	if !ok {
		return
	}
	buf, filename, err := h.exportSvc.ExportExamCalendar(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename, icsContentType)
}

func sendXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	sendFile(c, buf, filename, xlsxContentType)
}

func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.NotFound(c, 21005, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 21006, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
