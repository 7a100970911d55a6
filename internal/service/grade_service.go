package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrGradePartialIndex = errors.New("el período no exige ese parcial")
	ErrGradeOutOfRange   = errors.New("las notas van de 0 a 10 y la asistencia de 0 a 100")
	ErrGradeEmpty        = errors.New("no se informó ninguna nota ni asistencia")
)

// GradeService calificaciones de cursada y condición académica
type GradeService interface {
	Upsert(ctx context.Context, enrollmentID string, req *dto.UpsertGradeRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	Sheet(ctx context.Context, subjectCommissionID string, callerID, callerRole string) (*dto.GradeSheetResponse, error)
}

type gradeService struct {
	repo       *repository.Repository
	thresholds Thresholds
	logger     *zap.Logger
}

// NewGradeService crea el GradeService
func NewGradeService(repo *repository.Repository, thresholds Thresholds, logger *zap.Logger) GradeService {
	return &gradeService{repo: repo, thresholds: thresholds, logger: logger}
}

// ────────────────────── Upsert ──────────────────────

// Upsert combina los valores enviados con los existentes, recalcula la condición y
// guarda calificación y condición de la inscripción en una única transacción.
func (s *gradeService) Upsert(ctx context.Context, enrollmentID string, req *dto.UpsertGradeRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("error al buscar inscripción", zap.String("id", enrollmentID), zap.Error(err))
		return nil, err
	}
	if enrollment.Status != model.EnrollmentActive {
		return nil, ErrEnrollmentNotActive
	}
	sc := enrollment.SubjectCommission
	if sc == nil || !canManageCommission(sc, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	required := 2
	if sc.Commission != nil && sc.Commission.Period != nil {
		required = sc.Commission.Period.PartialsRequired
	}

	if err := validateGradeRequest(req, required); err != nil {
		return nil, err
	}

	grade := enrollment.Grade
	if grade == nil {
		grade = &model.Grade{EnrollmentID: enrollmentID}
		grade.SetCreator(callerID)
	}
	for n := 1; n <= required; n++ {
		if v := req.Partial(n); v != nil {
			r := roundHalfUp(*v)
			grade.SetPartial(n, &r)
		}
	}
	if req.Attendance != nil {
		att := roundHalfUp(*req.Attendance)
		grade.Attendance = &att
	}

	condition, average := DeriveCondition(grade.Partials()[:required], grade.Attendance, s.thresholds)
	grade.Condition = condition
	grade.Average = average
	grade.GradedBy = &callerID
	grade.SetUpdater(callerID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("error al abrir transacción", zap.Error(err))
		return nil, err
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

	if err := txRepo.Grade.Upsert(ctx, grade); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Warn("error al guardar calificación", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}
	if err := txRepo.Enrollment.UpdateCondition(ctx, enrollmentID, condition, callerID); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("error al actualizar condición", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("error al confirmar transacción", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("calificación registrada",
		zap.String("enrollment_id", enrollmentID),
		zap.String("condition", condition),
		zap.String("by", callerID),
	)

	enrollment.Grade = grade
	enrollment.Condition = condition
	return toEnrollmentResponse(enrollment), nil
}

func validateGradeRequest(req *dto.UpsertGradeRequest, required int) error {
	empty := req.Attendance == nil
	for n := 1; n <= 4; n++ {
		v := req.Partial(n)
		if v == nil {
			continue
		}
		if n > required {
			return ErrGradePartialIndex
		}
		if *v < 0 || *v > 10 {
			return ErrGradeOutOfRange
		}
		empty = false
	}
	if req.Attendance != nil && (*req.Attendance < 0 || *req.Attendance > 100) {
		return ErrGradeOutOfRange
	}
	if empty {
		return ErrGradeEmpty
	}
	return nil
}

// ────────────────────── Sheet ──────────────────────

func (s *gradeService) Sheet(ctx context.Context, subjectCommissionID string, callerID, callerRole string) (*dto.GradeSheetResponse, error) {
	sc, err := s.repo.SubjectCommission.GetByID(ctx, subjectCommissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectCommissionNotFound
		}
		return nil, err
	}
	if !canManageCommission(sc, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	enrollments, err := s.repo.Enrollment.ListBySubjectCommission(ctx, subjectCommissionID)
	if err != nil {
		s.logger.Error("error al armar planilla", zap.String("subject_commission_id", subjectCommissionID), zap.Error(err))
		return nil, err
	}

	sheet := &dto.GradeSheetResponse{
		SubjectCommissionID: sc.SubjectCommissionID,
		Rows:                make([]dto.GradeSheetRow, 0, len(enrollments)),
	}
	if sc.Subject != nil {
		sheet.SubjectName = sc.Subject.Name
	}
	if sc.Commission != nil {
		sheet.CommissionName = sc.Commission.Name
		if sc.Commission.Period != nil {
			sheet.PeriodName = sc.Commission.Period.Name
			sheet.PartialsRequired = sc.Commission.Period.PartialsRequired
		}
	}

	for i := range enrollments {
		e := &enrollments[i]
		row := dto.GradeSheetRow{
			EnrollmentID: e.EnrollmentID,
			Condition:    e.Condition,
			Grade:        toGradeResponse(e.Grade, sheet.PartialsRequired),
		}
		if b := toUserBrief(e.Student); b != nil {
			row.Student = *b
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}
