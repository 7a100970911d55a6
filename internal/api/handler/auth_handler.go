package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/service"
	"gestion-academica/backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler handler HTTP del módulo de autenticación
type AuthHandler struct {
	authSvc      service.AuthService
	secureCookie bool
	refreshTTL   time.Duration
	rememberTTL  time.Duration
}

// NewAuthHandler crea el AuthHandler. cfg puede ser nil (tests): cookie no segura y TTL de 24h.
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	h := &AuthHandler{
		authSvc:     authSvc,
		refreshTTL:  24 * time.Hour,
		rememberTTL: 7 * 24 * time.Hour,
	}
	if cfg != nil {
		h.secureCookie = strings.HasPrefix(cfg.Server.BaseURL, "https://")
		if cfg.Auth.RefreshTokenTTLDefault > 0 {
			h.refreshTTL = cfg.Auth.RefreshTokenTTLDefault
		}
		if cfg.Auth.RefreshTokenTTLRemember > 0 {
			h.rememberTTL = cfg.Auth.RefreshTokenTTLRemember
		}
	}
	return h
}

// Login ingreso con DNI o email
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	ttl := h.refreshTTL
	if req.RememberMe {
		ttl = h.rememberTTL
	}
	h.setRefreshCookie(c, result.RefreshToken, int(ttl.Seconds()))
	response.OK(c, result)
}

// RefreshToken renueva el par de tokens. El refresh token llega en el body o en la cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		cookie, cerr := c.Cookie(refreshCookieName)
		if cerr != nil || cookie == "" {
			response.BadRequest(c, 10001, "falta el refresh token")
			return
		}
		req.RefreshToken = cookie
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, int(h.refreshTTL.Seconds()))
	response.OK(c, result)
}

// Logout revoca el access token actual y el refresh token (cookie o cuerpo), y borra la cookie
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidParams(c, err)
			return
		}
	}
	if req.RefreshToken == "" {
		if cookie, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = cookie
		}
	}

	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), userID, jti, exp, req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}
	h.setRefreshCookie(c, "", -1)
	response.OK(c, nil)
}

// GetCurrentUser datos del usuario autenticado
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	user, err := h.authSvc.Me(c.Request.Context(), userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, user)
}

// ChangePassword cambio de contraseña propia
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidParams(c, err)
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		h.handleAuthError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, value, maxAge, "/api/v1/auth", "", h.secureCookie, true)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11002, err.Error())
	case errors.Is(err, service.ErrTokenRevoked):
		response.Unauthorized(c, 11003, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		badRequest(c, 11004, err)
	case errors.Is(err, service.ErrSamePassword):
		badRequest(c, 11005, err)
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
