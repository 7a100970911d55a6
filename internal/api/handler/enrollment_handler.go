package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// EnrollmentHandler inscripciones a cursada y calificaciones
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
	gradeSvc      service.GradeService
}

// NewEnrollmentHandler crea el EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService, gradeSvc service.GradeService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc, gradeSvc: gradeSvc}
}

// Enroll inscribe al alumno autenticado, o al student_id indicado si lo hace bedelía
// POST /api/v1/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Drop baja de la cursada
// DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if err := h.enrollmentSvc.Drop(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListMine cursadas del alumno autenticado
// GET /api/v1/enrollments/mine?period_id=
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	var req dto.EnrollmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list, err := h.enrollmentSvc.ListMine(c.Request.Context(), userID, req.PeriodID)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// Roster alumnos inscriptos en una materia-comisión
// GET /api/v1/subject-commissions/:id/enrollments
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	list, err := h.enrollmentSvc.Roster(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// UpsertGrade carga parciales y asistencia; recalcula la condición
// PUT /api/v1/enrollments/:id/grade
func (h *EnrollmentHandler) UpsertGrade(c *gin.Context) {
	var req dto.UpsertGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	enrollment, err := h.gradeSvc.Upsert(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, enrollment)
}

// GradeSheet planilla de calificaciones de la materia-comisión
// GET /api/v1/subject-commissions/:id/grades
func (h *EnrollmentHandler) GradeSheet(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	sheet, err := h.gradeSvc.Sheet(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleEnrollmentError(c, err)
		return
	}
	response.OK(c, sheet)
}

func (h *EnrollmentHandler) handleEnrollmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEnrollmentStudentRequired):
		badRequest(c, 17002, err)
	case errors.Is(err, service.ErrEnrollmentNotStudent):
		badRequest(c, 17003, err)
	case errors.Is(err, service.ErrEnrollmentCareerMismatch):
		badRequest(c, 17004, err)
	case errors.Is(err, service.ErrEnrollmentWindowClosed):
		badRequest(c, 17005, err)
	case errors.Is(err, service.ErrEnrollmentDuplicate):
		response.Conflict(c, 17006, err.Error())
	case errors.Is(err, service.ErrEnrollmentFull):
		response.Conflict(c, 17007, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotActive):
		badRequest(c, 17008, err)
	case errors.Is(err, service.ErrEnrollmentHasGrade):
		badRequest(c, 17009, err)
	case errors.Is(err, service.ErrGradePartialIndex):
		badRequest(c, 18001, err)
	case errors.Is(err, service.ErrGradeOutOfRange):
		badRequest(c, 18002, err)
	case errors.Is(err, service.ErrGradeEmpty):
		badRequest(c, 18003, err)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
