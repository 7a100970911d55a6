package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

// UserHandler handler HTTP del módulo de usuarios
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler crea el UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers listado paginado con filtros
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		invalidParams(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OKPage(c, users, total, req.GetPage(), req.GetPageSize())
}

// GetUser detalle de usuario
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// CreateUser alta con contraseña temporal
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.userSvc.CreateUser(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateUser modificación (staff o el propio usuario; el servicio decide)
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, user)
}

// DeleteUser baja lógica
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// AssignRole cambio de rol
// PUT /api/v1/users/:id/role
func (h *UserHandler) AssignRole(c *gin.Context) {
	var req dto.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.userSvc.AssignRole(c.Request.Context(), c.Param("id"), &req, callerID); err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword genera una nueva contraseña temporal
// POST /api/v1/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	result, err := h.userSvc.ResetPassword(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, result)
}

// ImportUsers alta masiva de alumnos desde un .xlsx (multipart, campo "file")
// POST /api/v1/users/import
func (h *UserHandler) ImportUsers(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 21007, "debe adjuntar el archivo Excel en el campo file")
		return
	}
	defer file.Close()

	rows, err := h.userSvc.ParseImportFile(file)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	result, err := h.userSvc.ImportUsers(c.Request.Context(), rows, callerID)
	if err != nil {
		h.handleUserError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDNIExists):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 12003, err.Error())
	case errors.Is(err, service.ErrUserSelfRoleChange):
		badRequest(c, 12004, err)
	case errors.Is(err, service.ErrUserSelfDelete):
		badRequest(c, 12005, err)
	case errors.Is(err, service.ErrStudentNeedsCareer):
		badRequest(c, 12006, err)
	case errors.Is(err, service.ErrImportNoData):
		badRequest(c, 21001, err)
	case errors.Is(err, service.ErrImportTooManyRows):
		badRequest(c, 21002, err)
	case errors.Is(err, service.ErrImportBadHeader):
		badRequest(c, 21003, err)
	case errors.Is(err, service.ErrImportBadFile):
		badRequest(c, 21004, err)
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
