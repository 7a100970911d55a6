package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"gestion-academica/backend/pkg/response"
)

// MustGetUserID extrae user_id del contexto de Gin.
// Si el middleware JWT no lo cargó responde 401 y devuelve false; el llamador debe cortar.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole extrae el rol del contexto de Gin.
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetCaller usuario y rol del que hace la solicitud
func MustGetCaller(c *gin.Context) (userID, role string, ok bool) {
	if userID, ok = MustGetUserID(c); !ok {
		return "", "", false
	}
	if role, ok = MustGetRole(c); !ok {
		return "", "", false
	}
	return userID, role, true
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "no autenticado")
		return "", false
	}
	return s, true
}

// tokenMeta jti y vencimiento del access token actual (vacíos si no están)
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	var exp time.Time
	if v, ok := c.Get("token_exp"); ok {
		exp, _ = v.(time.Time)
	}
	return jti, exp
}
