package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/pkg/jwt"
)

// memBlacklist lista negra en memoria
type memBlacklist struct {
	revoked map[string]time.Duration
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *memBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *memBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "clave-de-prueba-para-tests-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
		},
	}
}

func setupTestAuthService() (AuthService, *mockStore, *memBlacklist, *jwt.Manager) {
	cfg := testAuthConfig()
	repo, store := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bl := newMemBlacklist()
	return NewAuthService(cfg, repo, jwtMgr, bl, zap.NewNop()), store, bl, jwtMgr
}

func createTestUser(store *mockStore, dni, password, role string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &model.User{
		UserID:       "user-" + dni,
		Name:         "Ana",
		LastName:     "Pérez",
		DNI:          dni,
		Email:        dni + "@instituto.edu.ar",
		PasswordHash: string(hash),
		Role:         role,
	}
	store.users[user.UserID] = user
	return user
}

func TestLogin_ByDNI(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleStudent)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "30111222",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login debería funcionar: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("los tokens no deberían estar vacíos")
	}
	if result.User.DNI != "30111222" {
		t.Errorf("esperado DNI=30111222, obtenido=%s", result.User.DNI)
	}
	if result.ExpiresIn != 900 {
		t.Errorf("esperado ExpiresIn=900, obtenido=%d", result.ExpiresIn)
	}
}

func TestLogin_ByEmail(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleTeacher)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "  30111222@INSTITUTO.edu.ar ",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login por email debería funcionar: %v", err)
	}
	if result.User.Role != model.RoleTeacher {
		t.Errorf("esperado rol teacher, obtenido=%s", result.User.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleStudent)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "30111222",
		Password: "otra_clave",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("esperado ErrInvalidCredentials, obtenido: %v", err)
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username: "99999999",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("esperado ErrInvalidCredentials, obtenido: %v", err)
	}
}

func TestLogin_RememberMe(t *testing.T) {
	svc, store, _, jwtMgr := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleStudent)

	result, err := svc.Login(context.Background(), &dto.LoginRequest{
		Username:   "30111222",
		Password:   "password123",
		RememberMe: true,
	})
	if err != nil {
		t.Fatalf("Login(RememberMe) debería funcionar: %v", err)
	}

	claims, err := jwtMgr.ParseToken(result.RefreshToken)
	if err != nil {
		t.Fatalf("el refresh token debería ser válido: %v", err)
	}
	if !claims.RememberMe {
		t.Error("el refresh token debería recordar la sesión")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, store, bl, _ := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleStudent)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "30111222", Password: "password123"})
	if err != nil {
		t.Fatalf("Login falló: %v", err)
	}

	result, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh debería funcionar: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("el nuevo access token no debería estar vacío")
	}
	if len(bl.revoked) != 1 {
		t.Errorf("el refresh usado debería quedar revocado, revocados=%d", len(bl.revoked))
	}

	// el mismo refresh no sirve dos veces
	_, err = svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("esperado ErrTokenRevoked, obtenido: %v", err)
	}
}

func TestRefresh_InvalidToken(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: "token.invalido.x"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("esperado ErrInvalidToken, obtenido: %v", err)
	}
}

func TestRefresh_AccessTokenNotAllowed(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	createTestUser(store, "30111222", "password123", model.RoleStudent)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "30111222", Password: "password123"})

	// un access token no sirve para renovar
	_, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: login.AccessToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("esperado ErrInvalidToken, obtenido: %v", err)
	}
}

func TestLogout_BlacklistsJTI(t *testing.T) {
	svc, _, bl, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "u-1", "jti-1", time.Now().Add(10*time.Minute), ""); err != nil {
		t.Fatalf("Logout debería funcionar: %v", err)
	}
	if ttl, ok := bl.revoked["jti-1"]; !ok || ttl <= 0 {
		t.Errorf("el jti debería quedar revocado con TTL positivo, ttl=%v", ttl)
	}
}

func TestLogout_WithoutBlacklist(t *testing.T) {
	cfg := testAuthConfig()
	repo, _ := newMockRepository()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "u-1", "jti-1", time.Now().Add(time.Minute), ""); err != nil {
		t.Errorf("sin Redis Logout no debería fallar: %v", err)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc, _, bl, jwtMgr := setupTestAuthService()
	ctx := context.Background()

	refresh, err := jwtMgr.GenerateRefreshToken("u-1", model.RoleStudent, "", false)
	if err != nil {
		t.Fatalf("no se pudo generar el refresh: %v", err)
	}
	claims, _ := jwtMgr.ParseToken(refresh)

	if err := svc.Logout(ctx, "u-1", "jti-1", time.Now().Add(10*time.Minute), refresh); err != nil {
		t.Fatalf("Logout debería funcionar: %v", err)
	}
	if ttl, ok := bl.revoked[claims.ID]; !ok || ttl <= 0 {
		t.Errorf("el refresh debería quedar revocado con TTL positivo, ttl=%v", ttl)
	}
	if _, err := svc.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: refresh}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("tras el logout el refresh no debería servir: esperado ErrTokenRevoked, obtenido %v", err)
	}
}

func TestLogout_IgnoresForeignRefreshToken(t *testing.T) {
	svc, _, bl, jwtMgr := setupTestAuthService()

	other, _ := jwtMgr.GenerateRefreshToken("u-2", model.RoleStudent, "", false)
	claims, _ := jwtMgr.ParseToken(other)

	if err := svc.Logout(context.Background(), "u-1", "jti-1", time.Now().Add(time.Minute), other); err != nil {
		t.Fatalf("Logout debería funcionar: %v", err)
	}
	if _, ok := bl.revoked[claims.ID]; ok {
		t.Error("no se revoca el refresh de otro usuario")
	}
	if _, ok := bl.revoked["jti-1"]; !ok {
		t.Error("el access token propio sí debería revocarse")
	}
}

func TestMe(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	user := createTestUser(store, "30111222", "password123", model.RoleStudent)

	resp, err := svc.Me(context.Background(), user.UserID)
	if err != nil {
		t.Fatalf("Me debería funcionar: %v", err)
	}
	if resp.ID != user.UserID {
		t.Errorf("esperado ID=%s, obtenido=%s", user.UserID, resp.ID)
	}

	if _, err := svc.Me(context.Background(), "no-existe"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("esperado ErrUserNotFound, obtenido: %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc, store, _, _ := setupTestAuthService()
	user := createTestUser(store, "30111222", "password123", model.RoleStudent)
	store.users[user.UserID].MustChangePassword = true

	tests := []struct {
		name    string
		req     *dto.ChangePasswordRequest
		wantErr error
	}{
		{"clave actual incorrecta", &dto.ChangePasswordRequest{OldPassword: "mal", NewPassword: "nueva-clave-1"}, ErrWrongPassword},
		{"misma clave", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "password123"}, ErrSamePassword},
		{"correcto", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "nueva-clave-1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ChangePassword(context.Background(), user.UserID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("esperado %v, obtenido %v", tt.wantErr, err)
			}
		})
	}

	updated := store.users[user.UserID]
	if updated.MustChangePassword {
		t.Error("después del cambio no debería exigirse otro cambio")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("nueva-clave-1")) != nil {
		t.Error("el hash guardado debería corresponder a la nueva clave")
	}
}
