package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrSubjectNotFound   = errors.New("la materia no existe")
	ErrSubjectCodeExists = errors.New("ya existe una materia con ese código")
	ErrSubjectInUse      = errors.New("la materia está asignada a comisiones")
)

// SubjectService ABM de materias
type SubjectService interface {
	Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error)
	List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type subjectService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *zap.Logger
}

// NewSubjectService crea el SubjectService
func NewSubjectService(repo *repository.Repository, c *cache.Cache, logger *zap.Logger) SubjectService {
	return &subjectService{repo: repo, cache: c, logger: logger}
}

func subjectsCacheKey(careerID string, yearLevel int) string {
	return fmt.Sprintf("subjects:%s:%d", careerID, yearLevel)
}

func (s *subjectService) Create(ctx context.Context, req *dto.CreateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	if _, err := s.repo.Career.GetByID(ctx, req.CareerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCareerNotFound
		}
		return nil, err
	}

	code := strings.ToUpper(req.Code)
	if _, err := s.repo.Subject.GetByCode(ctx, code); err == nil {
		return nil, ErrSubjectCodeExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	weekly := req.WeeklyHours
	if weekly == 0 {
		weekly = 4
	}

	subject := &model.Subject{
		CareerID:    req.CareerID,
		Code:        code,
		Name:        req.Name,
		YearLevel:   req.YearLevel,
		PeriodType:  req.PeriodType,
		WeeklyHours: weekly,
	}
	subject.SetCreator(callerID)

	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("error al crear materia", zap.Error(err))
		return nil, err
	}
	s.cache.Flush()

	return toSubjectResponse(subject), nil
}

func (s *subjectService) GetByID(ctx context.Context, id string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("error al buscar materia", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toSubjectResponse(subject), nil
}

func (s *subjectService) List(ctx context.Context, req *dto.SubjectListRequest) ([]dto.SubjectResponse, error) {
	key := subjectsCacheKey(req.CareerID, req.YearLevel)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]dto.SubjectResponse), nil
	}

	subjects, err := s.repo.Subject.List(ctx, &repository.SubjectListFilters{
		CareerID:  req.CareerID,
		YearLevel: req.YearLevel,
	})
	if err != nil {
		s.logger.Error("error al listar materias", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	s.cache.SetDefault(key, result)
	return result, nil
}

func (s *subjectService) Update(ctx context.Context, id string, req *dto.UpdateSubjectRequest, callerID string) (*dto.SubjectResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("error al buscar materia", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(*req.Code)
		if existing, err := s.repo.Subject.GetByCode(ctx, code); err == nil && existing.SubjectID != id {
			return nil, ErrSubjectCodeExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		subject.Code = code
	}
	if req.Name != nil {
		subject.Name = *req.Name
	}
	if req.YearLevel != nil {
		subject.YearLevel = *req.YearLevel
	}
	if req.PeriodType != nil {
		subject.PeriodType = *req.PeriodType
	}
	if req.WeeklyHours != nil {
		subject.WeeklyHours = *req.WeeklyHours
	}
	subject.Career = nil
	subject.SetUpdater(callerID)

	if err := s.repo.Subject.Update(ctx, subject); err != nil {
		s.logger.Error("error al actualizar materia", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.Flush()

	return toSubjectResponse(subject), nil
}

func (s *subjectService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Subject.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}

	count, err := s.repo.SubjectCommission.CountBySubject(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSubjectInUse
	}

	if err := s.repo.Subject.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar materia", zap.String("id", id), zap.Error(err))
		return err
	}
	s.cache.Flush()
	return nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
