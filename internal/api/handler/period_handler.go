package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// PeriodHandler handler HTTP de períodos lectivos
type PeriodHandler struct {
	periodSvc service.PeriodService
}

// NewPeriodHandler crea el PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc}
}

// ListPeriods todos los períodos, más reciente primero
// GET /api/v1/periods
func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": periods})
}

// GetPeriod detalle
// GET /api/v1/periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	period, err := h.periodSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.OK(c, period)
}

// GetCurrentPeriod período activo
// GET /api/v1/periods/current
func (h *PeriodHandler) GetCurrentPeriod(c *gin.Context) {
	period, err := h.periodSvc.GetCurrent(c.Request.Context())
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.OK(c, period)
}

// CreatePeriod alta
// POST /api/v1/periods
func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	period, err := h.periodSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.Created(c, period)
}

// UpdatePeriod modificación
// PUT /api/v1/periods/:id
func (h *PeriodHandler) UpdatePeriod(c *gin.Context) {
	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	period, err := h.periodSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.OK(c, period)
}

// ActivatePeriod marca el período como actual
// PUT /api/v1/periods/:id/activate
func (h *PeriodHandler) ActivatePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.periodSvc.Activate(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.OK(c, nil)
}

// DeletePeriod baja (no el activo)
// DELETE /api/v1/periods/:id
func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.periodSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handlePeriodError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *PeriodHandler) handlePeriodError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrPeriodNoCurrent):
		response.NotFound(c, 14002, err.Error())
	case errors.Is(err, service.ErrPeriodDateInvalid):
		badRequest(c, 14003, err)
	case errors.Is(err, service.ErrPeriodEnrollmentWindow):
		badRequest(c, 14004, err)
	case errors.Is(err, service.ErrPeriodPartials):
		badRequest(c, 14005, err)
	case errors.Is(err, service.ErrPeriodNameExists):
		response.Conflict(c, 14006, err.Error())
	case errors.Is(err, service.ErrPeriodActiveDelete):
		badRequest(c, 14007, err)
	default:
		response.InternalError(c)
	}
}
