package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/internal/service"
	pkgerrors "gestion-academica/backend/pkg/errors"
	"gestion-academica/backend/pkg/response"
)

// handleCommonError errores que cruzan módulos. Devuelve false si no lo reconoce.
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10006, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrCareerNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrPeriodNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrSubjectNotFound):
		response.NotFound(c, 15001, err.Error())
	case errors.Is(err, service.ErrSubjectCommissionNotFound):
		response.NotFound(c, 16005, err.Error())
	case errors.Is(err, service.ErrEnrollmentNotFound):
		response.NotFound(c, 17001, err.Error())
	case errors.Is(err, service.ErrExamTableNotFound):
		response.NotFound(c, 19001, err.Error())
	case errors.Is(err, service.ErrExamCallNotFound):
		response.NotFound(c, 19008, err.Error())
	default:
		return false
	}
	return true
}

func badRequest(c *gin.Context, code int, err error) {
	response.Error(c, http.StatusBadRequest, code, err.Error())
}

func invalidParams(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "parámetros inválidos", err.Error())
}
