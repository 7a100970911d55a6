package service

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrPeriodNotFound         = errors.New("el período lectivo no existe")
	ErrPeriodNoCurrent        = errors.New("no hay un período lectivo activo")
	ErrPeriodDateInvalid      = errors.New("la fecha de fin debe ser posterior a la de inicio")
	ErrPeriodEnrollmentWindow = errors.New("el fin de inscripción no puede ser anterior a su inicio")
	ErrPeriodPartials         = errors.New("la cantidad de parciales no corresponde al tipo de período")
	ErrPeriodNameExists       = errors.New("ya existe un período con ese nombre")
	ErrPeriodActiveDelete     = errors.New("no se puede eliminar el período activo")
)

const cacheKeyCurrentPeriod = "period:current"

// PeriodService períodos lectivos
type PeriodService interface {
	Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error)
	GetCurrent(ctx context.Context) (*dto.PeriodResponse, error)
	List(ctx context.Context) ([]dto.PeriodResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error)
	Activate(ctx context.Context, id string, callerID string) error
	Delete(ctx context.Context, id string, callerID string) error
}

type periodService struct {
	repo   *repository.Repository
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

// NewPeriodService crea el PeriodService
func NewPeriodService(repo *repository.Repository, c *cache.Cache, logger *zap.Logger) PeriodService {
	return &periodService{repo: repo, cache: c, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *periodService) Create(ctx context.Context, req *dto.CreatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	period := &model.AcademicPeriod{
		Name:             req.Name,
		Year:             req.Year,
		Type:             req.Type,
		PartialsRequired: req.PartialsRequired,
	}
	var err error
	if period.StartDate, err = time.Parse(dateLayout, req.StartDate); err != nil {
		return nil, ErrPeriodDateInvalid
	}
	if period.EndDate, err = time.Parse(dateLayout, req.EndDate); err != nil {
		return nil, ErrPeriodDateInvalid
	}
	if period.EnrollmentStart, err = time.Parse(dateLayout, req.EnrollmentStart); err != nil {
		return nil, ErrPeriodEnrollmentWindow
	}
	if period.EnrollmentEnd, err = time.Parse(dateLayout, req.EnrollmentEnd); err != nil {
		return nil, ErrPeriodEnrollmentWindow
	}
	if period.PartialsRequired == 0 {
		period.PartialsRequired = model.PartialsFor(period.Type)
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	if _, err := s.repo.Period.GetByName(ctx, req.Name); err == nil {
		return nil, ErrPeriodNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	period.SetCreator(callerID)
	if err := s.repo.Period.Create(ctx, period); err != nil {
		s.logger.Error("error al crear período", zap.Error(err))
		return nil, err
	}

	return toPeriodResponse(period, s.now()), nil
}

// validatePeriod fechas ordenadas y parciales coherentes con el tipo.
// Un cuatrimestre nunca exige 4 parciales; un anual puede reducirse a 2.
func validatePeriod(p *model.AcademicPeriod) error {
	if !p.EndDate.After(p.StartDate) {
		return ErrPeriodDateInvalid
	}
	if p.EnrollmentEnd.Before(p.EnrollmentStart) {
		return ErrPeriodEnrollmentWindow
	}
	switch {
	case p.PartialsRequired != 2 && p.PartialsRequired != 4:
		return ErrPeriodPartials
	case p.Type == model.PeriodSemester && p.PartialsRequired != 2:
		return ErrPeriodPartials
	}
	return nil
}

// ────────────────────── Get ──────────────────────

func (s *periodService) GetByID(ctx context.Context, id string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("error al buscar período", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toPeriodResponse(period, s.now()), nil
}

func (s *periodService) GetCurrent(ctx context.Context) (*dto.PeriodResponse, error) {
	if cached, ok := s.cache.Get(cacheKeyCurrentPeriod); ok {
		return toPeriodResponse(cached.(*model.AcademicPeriod), s.now()), nil
	}

	period, err := s.repo.Period.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNoCurrent
		}
		s.logger.Error("error al buscar el período activo", zap.Error(err))
		return nil, err
	}
	s.cache.SetDefault(cacheKeyCurrentPeriod, period)

	return toPeriodResponse(period, s.now()), nil
}

func (s *periodService) List(ctx context.Context) ([]dto.PeriodResponse, error) {
	periods, err := s.repo.Period.List(ctx)
	if err != nil {
		s.logger.Error("error al listar períodos", zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := make([]dto.PeriodResponse, 0, len(periods))
	for i := range periods {
		result = append(result, *toPeriodResponse(&periods[i], now))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *periodService) Update(ctx context.Context, id string, req *dto.UpdatePeriodRequest, callerID string) (*dto.PeriodResponse, error) {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		s.logger.Error("error al buscar período", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil && *req.Name != period.Name {
		if _, err := s.repo.Period.GetByName(ctx, *req.Name); err == nil {
			return nil, ErrPeriodNameExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		period.Name = *req.Name
	}
	if req.PartialsRequired != nil {
		period.PartialsRequired = *req.PartialsRequired
	}
	dates := []struct {
		src *string
		dst *time.Time
		bad error
	}{
		{req.StartDate, &period.StartDate, ErrPeriodDateInvalid},
		{req.EndDate, &period.EndDate, ErrPeriodDateInvalid},
		{req.EnrollmentStart, &period.EnrollmentStart, ErrPeriodEnrollmentWindow},
		{req.EnrollmentEnd, &period.EnrollmentEnd, ErrPeriodEnrollmentWindow},
	}
	for _, d := range dates {
		if d.src == nil {
			continue
		}
		parsed, err := time.Parse(dateLayout, *d.src)
		if err != nil {
			return nil, d.bad
		}
		*d.dst = parsed
	}
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	period.SetUpdater(callerID)
	if err := s.repo.Period.Update(ctx, period); err != nil {
		s.logger.Error("error al actualizar período", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.cache.Delete(cacheKeyCurrentPeriod)

	return toPeriodResponse(period, s.now()), nil
}

// ────────────────────── Activate ──────────────────────

func (s *periodService) Activate(ctx context.Context, id string, callerID string) error {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		s.logger.Error("error al buscar período", zap.String("id", id), zap.Error(err))
		return err
	}

	// a lo sumo un período activo: ClearActive + Update en la misma transacción
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("error al abrir transacción", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Period.ClearActive(ctx); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("error al desactivar períodos", zap.Error(err))
		return err
	}

	period.IsActive = true
	period.SetUpdater(callerID)
	if err := txRepo.Period.Update(ctx, period); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("error al activar período", zap.String("id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("error al confirmar transacción", zap.Error(err))
			return err
		}
	}
	s.cache.Delete(cacheKeyCurrentPeriod)

	s.logger.Info("período activado", zap.String("id", id), zap.String("name", period.Name))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *periodService) Delete(ctx context.Context, id string, callerID string) error {
	period, err := s.repo.Period.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPeriodNotFound
		}
		return err
	}
	if period.IsActive {
		return ErrPeriodActiveDelete
	}

	if err := s.repo.Period.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar período", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
