package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// CommissionHandler comisiones y materias dictadas en cada una
type CommissionHandler struct {
	commissionSvc service.CommissionService
}

// NewCommissionHandler crea el CommissionHandler
func NewCommissionHandler(commissionSvc service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionSvc: commissionSvc}
}

// ────────────────────── Comisiones ──────────────────────

// ListCommissions comisiones de un período
// GET /api/v1/commissions?period_id=
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	var req dto.CommissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	list, err := h.commissionSvc.List(c.Request.Context(), req.PeriodID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetCommission detalle
// GET /api/v1/commissions/:id
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	commission, err := h.commissionSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, commission)
}

// CreateCommission alta
// POST /api/v1/commissions
func (h *CommissionHandler) CreateCommission(c *gin.Context) {
	var req dto.CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	commission, err := h.commissionSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.Created(c, commission)
}

// UpdateCommission modificación
// PUT /api/v1/commissions/:id
func (h *CommissionHandler) UpdateCommission(c *gin.Context) {
	var req dto.UpdateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	commission, err := h.commissionSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, commission)
}

// DeleteCommission baja (sin materias asignadas)
// DELETE /api/v1/commissions/:id
func (h *CommissionHandler) DeleteCommission(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.commissionSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── Materias por comisión ──────────────────────

// AssignSubject asigna materia y docente
// POST /api/v1/commissions/:id/subjects
func (h *CommissionHandler) AssignSubject(c *gin.Context) {
	var req dto.AssignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sc, err := h.commissionSvc.AssignSubject(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.Created(c, sc)
}

// ListSubjectCommissions por período o por comisión
// GET /api/v1/subject-commissions
func (h *CommissionHandler) ListSubjectCommissions(c *gin.Context) {
	var req dto.SubjectCommissionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	list, err := h.commissionSvc.ListSubjectCommissions(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// ListMine materias a cargo del docente autenticado
// GET /api/v1/subject-commissions/mine?period_id=
func (h *CommissionHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	list, err := h.commissionSvc.ListMine(c.Request.Context(), userID, c.Query("period_id"))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetSubjectCommission detalle con cantidad de inscriptos
// GET /api/v1/subject-commissions/:id
func (h *CommissionHandler) GetSubjectCommission(c *gin.Context) {
	sc, err := h.commissionSvc.GetSubjectCommission(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, sc)
}

// ChangeTeacher reemplazo de docente
// PUT /api/v1/subject-commissions/:id/teacher
func (h *CommissionHandler) ChangeTeacher(c *gin.Context) {
	var req dto.ChangeTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	sc, err := h.commissionSvc.ChangeTeacher(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, sc)
}

// RemoveSubject quita la materia de la comisión
// DELETE /api/v1/subject-commissions/:id
func (h *CommissionHandler) RemoveSubject(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.commissionSvc.RemoveSubject(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *CommissionHandler) handleCommissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCommissionNotFound):
		response.NotFound(c, 16001, err.Error())
	case errors.Is(err, service.ErrCommissionNameExists):
		response.Conflict(c, 16002, err.Error())
	case errors.Is(err, service.ErrCommissionInUse):
		response.Conflict(c, 16003, err.Error())
	case errors.Is(err, service.ErrCommissionCapacityBelow):
		badRequest(c, 16004, err)
	case errors.Is(err, service.ErrSubjectAlreadyAssigned):
		response.Conflict(c, 16006, err.Error())
	case errors.Is(err, service.ErrTeacherInvalid):
		badRequest(c, 16007, err)
	case errors.Is(err, service.ErrSubjectCommissionInUse):
		response.Conflict(c, 16008, err.Error())
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
