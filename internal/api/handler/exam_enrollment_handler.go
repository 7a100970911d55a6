package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// ExamEnrollmentHandler inscripción a llamados y carga de resultados
type ExamEnrollmentHandler struct {
	examEnrollSvc service.ExamEnrollmentService
}

// NewExamEnrollmentHandler crea el ExamEnrollmentHandler
func NewExamEnrollmentHandler(examEnrollSvc service.ExamEnrollmentService) *ExamEnrollmentHandler {
	return &ExamEnrollmentHandler{examEnrollSvc: examEnrollSvc}
}

// Availability disponibilidad de cada llamado de la mesa para el alumno.
// Bedelía puede consultar por otro alumno con ?student_id=
// GET /api/v1/exam-tables/:id/availability
func (h *ExamEnrollmentHandler) Availability(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	studentID := callerID
	if other := c.Query("student_id"); other != "" && other != callerID {
		if !model.IsStaff(role) {
			response.Forbidden(c, 10003, service.ErrNoPermission.Error())
			return
		}
		studentID = other
	}

	result, err := h.examEnrollSvc.Availability(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		h.handleExamEnrollmentError(c, err)
		return
	}
	response.OK(c, result)
}

// Enroll inscripción al llamado
// POST /api/v1/exam-calls/:id/enrollments
func (h *ExamEnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.CreateExamEnrollmentRequest
	// el body es opcional: solo bedelía envía student_id
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidParams(c, err)
			return
		}
	}
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	result, err := h.examEnrollSvc.Enroll(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleExamEnrollmentError(c, err)
		return
	}
	response.Created(c, result)
}

// Cancel baja de la inscripción mientras la ventana siga abierta
// DELETE /api/v1/exam-enrollments/:id
func (h *ExamEnrollmentHandler) Cancel(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.examEnrollSvc.Cancel(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.handleExamEnrollmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// RecordResult nota o ausente
// PUT /api/v1/exam-enrollments/:id/result
func (h *ExamEnrollmentHandler) RecordResult(c *gin.Context) {
	var req dto.ExamResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	result, err := h.examEnrollSvc.RecordResult(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleExamEnrollmentError(c, err)
		return
	}
	response.OK(c, result)
}

// ListMine inscripciones a examen del alumno autenticado
// GET /api/v1/exam-enrollments/mine
func (h *ExamEnrollmentHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list, err := h.examEnrollSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleExamEnrollmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func (h *ExamEnrollmentHandler) handleExamEnrollmentError(c *gin.Context, err error) {
	var unavailable *service.AvailabilityError
	switch {
	case errors.As(err, &unavailable):
		response.ErrorWithDetails(c, http.StatusConflict, 20001, service.ErrExamNotAvailable.Error(), unavailable.Reason)
	case errors.Is(err, service.ErrExamEnrollmentNotFound):
		response.NotFound(c, 20002, err.Error())
	case errors.Is(err, service.ErrExamEnrollmentNotActive):
		badRequest(c, 20003, err)
	case errors.Is(err, service.ErrExamWindowClosed):
		badRequest(c, 20004, err)
	case errors.Is(err, service.ErrExamTableNotClosed):
		badRequest(c, 20005, err)
	case errors.Is(err, service.ErrExamResultGradeRequired):
		badRequest(c, 20006, err)
	case errors.Is(err, service.ErrExamResultGradeOutOfRange):
		badRequest(c, 20007, err)
	case errors.Is(err, service.ErrEnrollmentStudentRequired):
		badRequest(c, 17002, err)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
