package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// SubjectHandler handler HTTP de materias
type SubjectHandler struct {
	subjectSvc service.SubjectService
}

// NewSubjectHandler crea el SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc}
}

// ListSubjects filtra por carrera y año
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var req dto.SubjectListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	subjects, err := h.subjectSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": subjects})
}

// GetSubject detalle
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, subject)
}

// CreateSubject alta
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	subject, err := h.subjectSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.Created(c, subject)
}

// UpdateSubject modificación
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	subject, err := h.subjectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, subject)
}

// DeleteSubject baja
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleSubjectError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSubjectCodeExists):
		response.Conflict(c, 15002, err.Error())
	case errors.Is(err, service.ErrSubjectInUse):
		response.Conflict(c, 15003, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
