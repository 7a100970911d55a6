package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// CareerHandler handler HTTP de carreras
type CareerHandler struct {
	careerSvc service.CareerService
}

// NewCareerHandler crea el CareerHandler
func NewCareerHandler(careerSvc service.CareerService) *CareerHandler {
	return &CareerHandler{careerSvc: careerSvc}
}

// ListCareers listado; include_inactive=true incluye las dadas de baja
// GET /api/v1/careers
func (h *CareerHandler) ListCareers(c *gin.Context) {
	var req dto.CareerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}
	careers, err := h.careerSvc.List(c.Request.Context(), req.IncludeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": careers})
}

// GetCareer detalle
// GET /api/v1/careers/:id
func (h *CareerHandler) GetCareer(c *gin.Context) {
	career, err := h.careerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCareerError(c, err)
		return
	}
	response.OK(c, career)
}

// CreateCareer alta
// POST /api/v1/careers
func (h *CareerHandler) CreateCareer(c *gin.Context) {
	var req dto.CreateCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	career, err := h.careerSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCareerError(c, err)
		return
	}
	response.Created(c, career)
}

// UpdateCareer modificación
// PUT /api/v1/careers/:id
func (h *CareerHandler) UpdateCareer(c *gin.Context) {
	var req dto.UpdateCareerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	career, err := h.careerSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCareerError(c, err)
		return
	}
	response.OK(c, career)
}

// DeleteCareer baja
// DELETE /api/v1/careers/:id
func (h *CareerHandler) DeleteCareer(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.careerSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCareerError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *CareerHandler) handleCareerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCareerNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrCareerCodeExists):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrCareerNameExists):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrCareerInUse):
		response.Conflict(c, 13004, err.Error())
	default:
		response.InternalError(c)
	}
}
