package service

import (
	"context"
	"errors"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrCareerNotFound   = errors.New("la carrera no existe")
	ErrCareerCodeExists = errors.New("ya existe una carrera con ese código")
	ErrCareerNameExists = errors.New("ya existe una carrera con ese nombre")
	ErrCareerInUse      = errors.New("la carrera tiene materias asociadas")
)

const (
	cacheKeyCareersActive = "careers:active"
	cacheKeyCareersAll    = "careers:all"
)

// CareerService ABM de carreras
type CareerService interface {
	Create(ctx context.Context, req *dto.CreateCareerRequest, callerID string) (*dto.CareerResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CareerResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.CareerResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCareerRequest, callerID string) (*dto.CareerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type careerService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *zap.Logger
}

// NewCareerService crea el CareerService; el listado se sirve desde cache
func NewCareerService(repo *repository.Repository, c *cache.Cache, logger *zap.Logger) CareerService {
	return &careerService{repo: repo, cache: c, logger: logger}
}

func (s *careerService) Create(ctx context.Context, req *dto.CreateCareerRequest, callerID string) (*dto.CareerResponse, error) {
	if err := s.checkUnique(ctx, "", req.Code, req.Name); err != nil {
		return nil, err
	}

	career := &model.Career{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	career.SetCreator(callerID)

	if err := s.repo.Career.Create(ctx, career); err != nil {
		s.logger.Error("error al crear carrera", zap.Error(err))
		return nil, err
	}
	s.invalidate()

	return toCareerResponse(career), nil
}

func (s *careerService) GetByID(ctx context.Context, id string) (*dto.CareerResponse, error) {
	career, err := s.repo.Career.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCareerNotFound
		}
		s.logger.Error("error al buscar carrera", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCareerResponse(career), nil
}

func (s *careerService) List(ctx context.Context, includeInactive bool) ([]dto.CareerResponse, error) {
	key := cacheKeyCareersActive
	if includeInactive {
		key = cacheKeyCareersAll
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]dto.CareerResponse), nil
	}

	careers, err := s.repo.Career.List(ctx, !includeInactive)
	if err != nil {
		s.logger.Error("error al listar carreras", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CareerResponse, 0, len(careers))
	for i := range careers {
		result = append(result, *toCareerResponse(&careers[i]))
	}
	s.cache.SetDefault(key, result)
	return result, nil
}

func (s *careerService) Update(ctx context.Context, id string, req *dto.UpdateCareerRequest, callerID string) (*dto.CareerResponse, error) {
	career, err := s.repo.Career.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCareerNotFound
		}
		s.logger.Error("error al buscar carrera", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	code, name := career.Code, career.Name
	if req.Code != nil {
		code = *req.Code
	}
	if req.Name != nil {
		name = *req.Name
	}
	if err := s.checkUnique(ctx, id, code, name); err != nil {
		return nil, err
	}

	career.Code = code
	career.Name = name
	if req.Description != nil {
		career.Description = *req.Description
	}
	if req.IsActive != nil {
		career.IsActive = *req.IsActive
	}
	career.SetUpdater(callerID)

	if err := s.repo.Career.Update(ctx, career); err != nil {
		s.logger.Error("error al actualizar carrera", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.invalidate()

	return toCareerResponse(career), nil
}

func (s *careerService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Career.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCareerNotFound
		}
		return err
	}

	count, err := s.repo.Subject.CountByCareer(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCareerInUse
	}

	if err := s.repo.Career.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar carrera", zap.String("id", id), zap.Error(err))
		return err
	}
	s.invalidate()
	return nil
}

func (s *careerService) checkUnique(ctx context.Context, selfID, code, name string) error {
	if existing, err := s.repo.Career.GetByCode(ctx, code); err == nil && existing.CareerID != selfID {
		return ErrCareerCodeExists
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	careers, err := s.repo.Career.List(ctx, false)
	if err != nil {
		return err
	}
	for _, c := range careers {
		if c.CareerID != selfID && equalFold(c.Name, name) {
			return ErrCareerNameExists
		}
	}
	return nil
}

// invalidate descarta el catálogo cacheado (carreras y materias)
func (s *careerService) invalidate() {
	s.cache.Flush()
}
