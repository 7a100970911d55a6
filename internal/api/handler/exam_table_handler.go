package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// ExamTableHandler mesas de examen y sus llamados
type ExamTableHandler struct {
	examSvc service.ExamTableService
}

// NewExamTableHandler crea el ExamTableHandler
func NewExamTableHandler(examSvc service.ExamTableService) *ExamTableHandler {
	return &ExamTableHandler{examSvc: examSvc}
}

// ────────────────────── Mesas ──────────────────────

// ListTables filtra por período y estado
// GET /api/v1/exam-tables
func (h *ExamTableHandler) ListTables(c *gin.Context) {
	var req dto.ExamTableListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	list, err := h.examSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetTable detalle con llamados
// GET /api/v1/exam-tables/:id
func (h *ExamTableHandler) GetTable(c *gin.Context) {
	table, err := h.examSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, table)
}

// CreateTable alta en borrador
// POST /api/v1/exam-tables
func (h *ExamTableHandler) CreateTable(c *gin.Context) {
	var req dto.CreateExamTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	table, err := h.examSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.Created(c, table)
}

// UpdateTable modificación (solo borrador)
// PUT /api/v1/exam-tables/:id
func (h *ExamTableHandler) UpdateTable(c *gin.Context) {
	var req dto.UpdateExamTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	table, err := h.examSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, table)
}

// DeleteTable baja (solo borrador)
// DELETE /api/v1/exam-tables/:id
func (h *ExamTableHandler) DeleteTable(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.examSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, nil)
}

// Transition aplica un evento del ciclo de vida: open, close, reopen, finish
// POST /api/v1/exam-tables/:id/transitions
func (h *ExamTableHandler) Transition(c *gin.Context) {
	var req dto.ExamTableTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	table, err := h.examSvc.Transition(c.Request.Context(), c.Param("id"), req.Event, callerID)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, table)
}

// ────────────────────── Llamados ──────────────────────

// CreateCall alta de llamado en la mesa
// POST /api/v1/exam-tables/:id/calls
func (h *ExamTableHandler) CreateCall(c *gin.Context) {
	var req dto.CreateExamCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	call, err := h.examSvc.CreateCall(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.Created(c, call)
}

// UpdateCall modificación de llamado
// PUT /api/v1/exam-calls/:id
func (h *ExamTableHandler) UpdateCall(c *gin.Context) {
	var req dto.UpdateExamCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	call, err := h.examSvc.UpdateCall(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, call)
}

// DeleteCall baja de llamado
// DELETE /api/v1/exam-calls/:id
func (h *ExamTableHandler) DeleteCall(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.examSvc.DeleteCall(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, nil)
}

// Roster inscriptos al llamado
// GET /api/v1/exam-calls/:id/roster
func (h *ExamTableHandler) Roster(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}
	roster, err := h.examSvc.Roster(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleExamTableError(c, err)
		return
	}
	response.OK(c, roster)
}

func (h *ExamTableHandler) handleExamTableError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamTableNameExists):
		response.Conflict(c, 19002, err.Error())
	case errors.Is(err, service.ErrExamTableDateInvalid):
		badRequest(c, 19003, err)
	case errors.Is(err, service.ErrExamTableNotDraft):
		badRequest(c, 19004, err)
	case errors.Is(err, service.ErrExamTableLocked):
		badRequest(c, 19005, err)
	case errors.Is(err, service.ErrExamTableInvalidTransition):
		response.Conflict(c, 19006, err.Error())
	case errors.Is(err, service.ErrExamTableNoCalls):
		badRequest(c, 19007, err)
	case errors.Is(err, service.ErrExamCallNumberExists):
		response.Conflict(c, 19009, err.Error())
	case errors.Is(err, service.ErrExamCallDateOutOfRange):
		badRequest(c, 19010, err)
	case errors.Is(err, service.ErrExamCallQuotaBelow):
		badRequest(c, 19011, err)
	case errors.Is(err, service.ErrExamPresidentInvalid):
		badRequest(c, 19012, err)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
