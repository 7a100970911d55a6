package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
	"gestion-academica/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("DNI/email o contraseña incorrectos")
	ErrUserNotFound       = errors.New("el usuario no existe")
	ErrInvalidToken       = errors.New("token inválido o vencido")
	ErrTokenRevoked       = errors.New("el token fue revocado")
	ErrWrongPassword      = errors.New("la contraseña actual es incorrecta")
	ErrSamePassword       = errors.New("la nueva contraseña debe ser distinta de la actual")
)

// TokenBlacklist revocación de tokens por jti
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService autenticación
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID, jti string, expiresAt time.Time, refreshToken string) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService crea el AuthService; blacklist puede ser nil (sin Redis)
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)

	var user *model.User
	var err error
	if strings.Contains(username, "@") {
		user, err = s.repo.User.GetByEmail(ctx, username)
	} else {
		user, err = s.repo.User.GetByDNI(ctx, username)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("error al buscar usuario", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user, req.RememberMe)
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("no se pudo consultar la lista negra", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("error al buscar usuario", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	resp, err := s.issueTokens(user, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	// rotación: el refresh usado no vuelve a servir
	if s.blacklist != nil && claims.ExpiresAt != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("no se pudo revocar el refresh token", zap.Error(err))
		}
	}

	return resp, nil
}

// ────────────────────── Logout ──────────────────────

// Logout revoca el access token actual y, si viene, el refresh token del mismo usuario
func (s *authService) Logout(ctx context.Context, userID, jti string, expiresAt time.Time, refreshToken string) error {
	if s.blacklist == nil {
		return nil
	}
	if jti != "" {
		if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
			s.logger.Error("no se pudo revocar el token", zap.Error(err))
			return err
		}
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	// un refresh inválido, vencido o ajeno no impide cerrar la sesión
	if err != nil || claims.TokenType != "refresh" || claims.UserID != userID || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Error("no se pudo revocar el refresh token", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("error al generar hash", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	user.SetUpdater(userID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("error al actualizar contraseña", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// issueTokens genera el par access/refresh
func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	careerID := ""
	if user.CareerID != nil {
		careerID = *user.CareerID
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, careerID)
	if err != nil {
		s.logger.Error("error al generar access token", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, careerID, rememberMe)
	if err != nil {
		s.logger.Error("error al generar refresh token", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}
