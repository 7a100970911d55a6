package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrEnrollmentNotFound        = errors.New("la inscripción no existe")
	ErrEnrollmentStudentRequired = errors.New("debe indicar el alumno a inscribir")
	ErrEnrollmentNotStudent      = errors.New("solo se pueden inscribir usuarios con rol alumno")
	ErrEnrollmentCareerMismatch  = errors.New("la materia no pertenece a la carrera del alumno")
	ErrEnrollmentWindowClosed    = errors.New("el período de inscripción no está abierto")
	ErrEnrollmentDuplicate       = errors.New("el alumno ya está inscripto en esta materia en el período")
	ErrEnrollmentFull            = errors.New("la comisión no tiene cupo disponible")
	ErrEnrollmentNotActive       = errors.New("la inscripción no está activa")
	ErrEnrollmentHasGrade        = errors.New("no se puede dar de baja una inscripción con calificaciones")
)

// EnrollmentService inscripción a cursada
type EnrollmentService interface {
	Enroll(ctx context.Context, req *dto.CreateEnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	Drop(ctx context.Context, id string, callerID, callerRole string) error
	ListMine(ctx context.Context, studentID, periodID string) ([]dto.EnrollmentResponse, error)
	Roster(ctx context.Context, subjectCommissionID string, callerID, callerRole string) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewEnrollmentService crea el EnrollmentService
func NewEnrollmentService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger, loc: loc, now: time.Now}
}

// ────────────────────── Enroll ──────────────────────

func (s *enrollmentService) Enroll(ctx context.Context, req *dto.CreateEnrollmentRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	studentID := req.StudentID
	switch {
	case callerRole == model.RoleStudent:
		if studentID != "" && studentID != callerID {
			return nil, ErrNoPermission
		}
		studentID = callerID
	case !model.IsStaff(callerRole):
		return nil, ErrNoPermission
	case studentID == "":
		return nil, ErrEnrollmentStudentRequired
	}

	student, err := s.repo.User.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrEnrollmentNotStudent
	}

	sc, err := s.repo.SubjectCommission.GetByID(ctx, req.SubjectCommissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectCommissionNotFound
		}
		return nil, err
	}
	if sc.Subject == nil || student.CareerID == nil || *student.CareerID != sc.Subject.CareerID {
		return nil, ErrEnrollmentCareerMismatch
	}
	if sc.Commission == nil || sc.Commission.Period == nil {
		return nil, ErrEnrollmentWindowClosed
	}
	period := sc.Commission.Period
	if !period.EnrollmentOpen(s.now().In(s.loc)) {
		return nil, ErrEnrollmentWindowClosed
	}

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
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	txRepo := s.repo.WithTx(tx)

	// el cupo se cuenta con la materia-comisión bloqueada
	if err := txRepo.Enrollment.LockSubjectCommission(ctx, sc.SubjectCommissionID); err != nil {
		rollback()
		return nil, err
	}

	// otra comisión de la misma materia bloquea otra fila: el duplicado se controla bajo este lock
	if err := txRepo.Enrollment.LockStudentSubject(ctx, studentID, sc.SubjectID, period.PeriodID); err != nil {
		rollback()
		return nil, err
	}

	if _, err := txRepo.Enrollment.FindActiveForSubjectInPeriod(ctx, studentID, sc.SubjectID, period.PeriodID); err == nil {
		rollback()
		return nil, ErrEnrollmentDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		return nil, err
	}

	count, err := txRepo.Enrollment.CountActiveBySubjectCommission(ctx, sc.SubjectCommissionID)
	if err != nil {
		rollback()
		return nil, err
	}
	if count >= int64(sc.Commission.Capacity) {
		rollback()
		return nil, ErrEnrollmentFull
	}

	var enrollmentID string
	previous, err := txRepo.Enrollment.GetByStudentAndSubjectCommission(ctx, studentID, sc.SubjectCommissionID)
	switch {
	case err == nil:
		// baja previa en la misma comisión: se reactiva la fila
		if err := txRepo.Enrollment.Reactivate(ctx, previous.EnrollmentID, callerID); err != nil {
			rollback()
			return nil, err
		}
		enrollmentID = previous.EnrollmentID
	case errors.Is(err, gorm.ErrRecordNotFound):
		enrollment := &model.Enrollment{
			StudentID:           studentID,
			SubjectCommissionID: sc.SubjectCommissionID,
			Status:              model.EnrollmentActive,
			Condition:           model.ConditionEnrolled,
			EnrolledAt:          s.now(),
		}
		enrollment.SetCreator(callerID)
		if err := txRepo.Enrollment.Create(ctx, enrollment); err != nil {
			rollback()
			s.logger.Error("error al crear inscripción", zap.Error(err))
			return nil, err
		}
		enrollmentID = enrollment.EnrollmentID
	default:
		rollback()
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("error al confirmar transacción", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("alumno inscripto",
		zap.String("student_id", studentID),
		zap.String("subject_commission_id", sc.SubjectCommissionID),
		zap.String("by", callerID),
	)

	created, err := s.repo.Enrollment.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	return toEnrollmentResponse(created), nil
}

// ────────────────────── Drop ──────────────────────

func (s *enrollmentService) Drop(ctx context.Context, id string, callerID, callerRole string) error {
	enrollment, err := s.getEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if callerRole == model.RoleStudent && enrollment.StudentID != callerID {
		return ErrNoPermission
	}
	if enrollment.Status != model.EnrollmentActive {
		return ErrEnrollmentNotActive
	}

	sc := enrollment.SubjectCommission
	if sc == nil || sc.Commission == nil || sc.Commission.Period == nil ||
		!sc.Commission.Period.EnrollmentOpen(s.now().In(s.loc)) {
		return ErrEnrollmentWindowClosed
	}
	if hasGradeData(enrollment.Grade) {
		return ErrEnrollmentHasGrade
	}

	if err := s.repo.Enrollment.UpdateStatus(ctx, id, model.EnrollmentDropped, callerID); err != nil {
		s.logger.Error("error al dar de baja inscripción", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("inscripción dada de baja", zap.String("id", id), zap.String("by", callerID))
	return nil
}

func hasGradeData(g *model.Grade) bool {
	if g == nil {
		return false
	}
	if g.Attendance != nil {
		return true
	}
	for _, p := range g.Partials() {
		if p != nil {
			return true
		}
	}
	return false
}

// ────────────────────── List ──────────────────────

func (s *enrollmentService) ListMine(ctx context.Context, studentID, periodID string) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID, periodID)
	if err != nil {
		s.logger.Error("error al listar cursadas", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, *toEnrollmentResponse(&enrollments[i]))
	}
	return result, nil
}

func (s *enrollmentService) Roster(ctx context.Context, subjectCommissionID string, callerID, callerRole string) ([]dto.EnrollmentResponse, error) {
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
		s.logger.Error("error al listar alumnos", zap.String("subject_commission_id", subjectCommissionID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		enrollments[i].SubjectCommission = sc
		result = append(result, *toEnrollmentResponse(&enrollments[i]))
	}
	return result, nil
}

func (s *enrollmentService) getEnrollment(ctx context.Context, id string) (*model.Enrollment, error) {
	enrollment, err := s.repo.Enrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		s.logger.Error("error al buscar inscripción", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return enrollment, nil
}

// canManageCommission bedelía o el docente a cargo
func canManageCommission(sc *model.SubjectCommission, callerID, callerRole string) bool {
	if model.IsStaff(callerRole) {
		return true
	}
	return callerRole == model.RoleTeacher && sc.TeacherID == callerID
}
