package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrCommissionNotFound        = errors.New("la comisión no existe")
	ErrCommissionNameExists      = errors.New("ya existe una comisión con ese nombre en el período")
	ErrCommissionInUse           = errors.New("la comisión tiene materias asignadas")
	ErrCommissionCapacityBelow   = errors.New("el cupo no puede ser menor a los alumnos ya inscriptos")
	ErrSubjectCommissionNotFound = errors.New("la materia no está asignada a esa comisión")
	ErrSubjectAlreadyAssigned    = errors.New("la materia ya está asignada a la comisión")
	ErrTeacherInvalid            = errors.New("el docente indicado no existe o no tiene rol docente")
	ErrSubjectCommissionInUse    = errors.New("la materia tiene alumnos inscriptos en la comisión")
)

// CommissionService comisiones y asignación de materias/docentes
type CommissionService interface {
	Create(ctx context.Context, req *dto.CreateCommissionRequest, callerID string) (*dto.CommissionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CommissionResponse, error)
	List(ctx context.Context, periodID string) ([]dto.CommissionResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCommissionRequest, callerID string) (*dto.CommissionResponse, error)
	Delete(ctx context.Context, id string, callerID string) error

	AssignSubject(ctx context.Context, commissionID string, req *dto.AssignSubjectRequest, callerID string) (*dto.SubjectCommissionResponse, error)
	ChangeTeacher(ctx context.Context, subjectCommissionID string, req *dto.ChangeTeacherRequest, callerID string) (*dto.SubjectCommissionResponse, error)
	RemoveSubject(ctx context.Context, subjectCommissionID string, callerID string) error
	GetSubjectCommission(ctx context.Context, id string) (*dto.SubjectCommissionResponse, error)
	ListSubjectCommissions(ctx context.Context, req *dto.SubjectCommissionListRequest) ([]dto.SubjectCommissionResponse, error)
	ListMine(ctx context.Context, teacherID, periodID string) ([]dto.SubjectCommissionResponse, error)
}

type commissionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommissionService crea el CommissionService
func NewCommissionService(repo *repository.Repository, logger *zap.Logger) CommissionService {
	return &commissionService{repo: repo, logger: logger}
}

// ────────────────────── Comisiones ──────────────────────

func (s *commissionService) Create(ctx context.Context, req *dto.CreateCommissionRequest, callerID string) (*dto.CommissionResponse, error) {
	if _, err := s.repo.Period.GetByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.Commission.GetByPeriodAndName(ctx, req.PeriodID, name); err == nil {
		return nil, ErrCommissionNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	commission := &model.Commission{
		PeriodID: req.PeriodID,
		Name:     name,
		Shift:    req.Shift,
		Capacity: req.Capacity,
	}
	commission.SetCreator(callerID)

	if err := s.repo.Commission.Create(ctx, commission); err != nil {
		s.logger.Error("error al crear comisión", zap.Error(err))
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

func (s *commissionService) GetByID(ctx context.Context, id string) (*dto.CommissionResponse, error) {
	commission, err := s.getCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

func (s *commissionService) List(ctx context.Context, periodID string) ([]dto.CommissionResponse, error) {
	commissions, err := s.repo.Commission.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("error al listar comisiones", zap.Error(err))
		return nil, err
	}
	result := make([]dto.CommissionResponse, 0, len(commissions))
	for i := range commissions {
		result = append(result, *toCommissionResponse(&commissions[i]))
	}
	return result, nil
}

func (s *commissionService) Update(ctx context.Context, id string, req *dto.UpdateCommissionRequest, callerID string) (*dto.CommissionResponse, error) {
	commission, err := s.getCommission(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if existing, err := s.repo.Commission.GetByPeriodAndName(ctx, commission.PeriodID, name); err == nil && existing.CommissionID != id {
			return nil, ErrCommissionNameExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		commission.Name = name
	}
	if req.Shift != nil {
		commission.Shift = *req.Shift
	}
	if req.Capacity != nil && *req.Capacity < commission.Capacity {
		scs, err := s.repo.SubjectCommission.ListByCommission(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, sc := range scs {
			count, err := s.repo.Enrollment.CountActiveBySubjectCommission(ctx, sc.SubjectCommissionID)
			if err != nil {
				return nil, err
			}
			if count > int64(*req.Capacity) {
				return nil, ErrCommissionCapacityBelow
			}
		}
	}
	if req.Capacity != nil {
		commission.Capacity = *req.Capacity
	}
	commission.Period = nil
	commission.SetUpdater(callerID)

	if err := s.repo.Commission.Update(ctx, commission); err != nil {
		s.logger.Error("error al actualizar comisión", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCommissionResponse(commission), nil
}

func (s *commissionService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getCommission(ctx, id); err != nil {
		return err
	}
	scs, err := s.repo.SubjectCommission.ListByCommission(ctx, id)
	if err != nil {
		return err
	}
	if len(scs) > 0 {
		return ErrCommissionInUse
	}
	if err := s.repo.Commission.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar comisión", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *commissionService) getCommission(ctx context.Context, id string) (*model.Commission, error) {
	commission, err := s.repo.Commission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		s.logger.Error("error al buscar comisión", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return commission, nil
}

// ────────────────────── Materias por comisión ──────────────────────

func (s *commissionService) AssignSubject(ctx context.Context, commissionID string, req *dto.AssignSubjectRequest, callerID string) (*dto.SubjectCommissionResponse, error) {
	if _, err := s.getCommission(ctx, commissionID); err != nil {
		return nil, err
	}
	if _, err := s.repo.Subject.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	if _, err := s.repo.SubjectCommission.GetBySubjectAndCommission(ctx, req.SubjectID, commissionID); err == nil {
		return nil, ErrSubjectAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sc := &model.SubjectCommission{
		SubjectID:    req.SubjectID,
		CommissionID: commissionID,
		TeacherID:    req.TeacherID,
	}
	sc.SetCreator(callerID)

	if err := s.repo.SubjectCommission.Create(ctx, sc); err != nil {
		s.logger.Error("error al asignar materia", zap.String("commission_id", commissionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("materia asignada a comisión",
		zap.String("subject_id", req.SubjectID),
		zap.String("commission_id", commissionID),
		zap.String("teacher_id", req.TeacherID),
	)
	return s.GetSubjectCommission(ctx, sc.SubjectCommissionID)
}

func (s *commissionService) ChangeTeacher(ctx context.Context, subjectCommissionID string, req *dto.ChangeTeacherRequest, callerID string) (*dto.SubjectCommissionResponse, error) {
	if _, err := s.getSubjectCommission(ctx, subjectCommissionID); err != nil {
		return nil, err
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.repo.SubjectCommission.UpdateTeacher(ctx, subjectCommissionID, req.TeacherID, callerID); err != nil {
		s.logger.Error("error al cambiar docente", zap.String("id", subjectCommissionID), zap.Error(err))
		return nil, err
	}
	return s.GetSubjectCommission(ctx, subjectCommissionID)
}

func (s *commissionService) RemoveSubject(ctx context.Context, subjectCommissionID string, callerID string) error {
	if _, err := s.getSubjectCommission(ctx, subjectCommissionID); err != nil {
		return err
	}
	count, err := s.repo.Enrollment.CountActiveBySubjectCommission(ctx, subjectCommissionID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSubjectCommissionInUse
	}
	if err := s.repo.SubjectCommission.Delete(ctx, subjectCommissionID, callerID); err != nil {
		s.logger.Error("error al quitar materia", zap.String("id", subjectCommissionID), zap.Error(err))
		return err
	}
	return nil
}

func (s *commissionService) GetSubjectCommission(ctx context.Context, id string) (*dto.SubjectCommissionResponse, error) {
	sc, err := s.getSubjectCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Enrollment.CountActiveBySubjectCommission(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSubjectCommissionResponse(sc, count), nil
}

func (s *commissionService) ListSubjectCommissions(ctx context.Context, req *dto.SubjectCommissionListRequest) ([]dto.SubjectCommissionResponse, error) {
	var scs []model.SubjectCommission
	var err error
	if req.CommissionID != "" {
		scs, err = s.repo.SubjectCommission.ListByCommission(ctx, req.CommissionID)
	} else {
		scs, err = s.repo.SubjectCommission.ListByPeriod(ctx, req.PeriodID)
	}
	if err != nil {
		s.logger.Error("error al listar materias por comisión", zap.Error(err))
		return nil, err
	}
	return s.withCounts(ctx, scs)
}

func (s *commissionService) ListMine(ctx context.Context, teacherID, periodID string) ([]dto.SubjectCommissionResponse, error) {
	scs, err := s.repo.SubjectCommission.ListByTeacher(ctx, teacherID, periodID)
	if err != nil {
		s.logger.Error("error al listar materias del docente", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return s.withCounts(ctx, scs)
}

func (s *commissionService) withCounts(ctx context.Context, scs []model.SubjectCommission) ([]dto.SubjectCommissionResponse, error) {
	result := make([]dto.SubjectCommissionResponse, 0, len(scs))
	for i := range scs {
		count, err := s.repo.Enrollment.CountActiveBySubjectCommission(ctx, scs[i].SubjectCommissionID)
		if err != nil {
			return nil, err
		}
		result = append(result, *toSubjectCommissionResponse(&scs[i], count))
	}
	return result, nil
}

func (s *commissionService) getSubjectCommission(ctx context.Context, id string) (*model.SubjectCommission, error) {
	sc, err := s.repo.SubjectCommission.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectCommissionNotFound
		}
		s.logger.Error("error al buscar materia-comisión", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return sc, nil
}

func (s *commissionService) checkTeacher(ctx context.Context, teacherID string) error {
	teacher, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherInvalid
		}
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return ErrTeacherInvalid
	}
	return nil
}
