package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrExamNotAvailable          = errors.New("no es posible inscribirse al llamado")
	ErrExamEnrollmentNotFound    = errors.New("la inscripción al examen no existe")
	ErrExamEnrollmentNotActive   = errors.New("la inscripción al examen no está vigente")
	ErrExamWindowClosed          = errors.New("la inscripción al llamado ya cerró")
	ErrExamTableNotClosed        = errors.New("los resultados se cargan con la mesa cerrada")
	ErrExamResultGradeRequired   = errors.New("debe informar la nota o marcar ausente")
	ErrExamResultGradeOutOfRange = errors.New("la nota del examen va de 0 a 10")
)

// AvailabilityError inscripción rechazada con su motivo
type AvailabilityError struct {
	Reason string
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExamNotAvailable.Error(), e.Reason)
}

// Is permite errors.Is(err, ErrExamNotAvailable)
func (e *AvailabilityError) Is(target error) bool {
	return target == ErrExamNotAvailable
}

// ExamEnrollmentService inscripción a llamados de examen final
type ExamEnrollmentService interface {
	Availability(ctx context.Context, tableID, studentID string) (*dto.TableAvailabilityResponse, error)
	Enroll(ctx context.Context, callID string, req *dto.CreateExamEnrollmentRequest, callerID, callerRole string) (*dto.ExamEnrollmentResponse, error)
	Cancel(ctx context.Context, id string, callerID, callerRole string) error
	RecordResult(ctx context.Context, id string, req *dto.ExamResultRequest, callerID, callerRole string) (*dto.ExamEnrollmentResponse, error)
	ListMine(ctx context.Context, studentID string) ([]dto.ExamEnrollmentResponse, error)
}

type examEnrollmentService struct {
	repo         *repository.Repository
	lead         time.Duration
	passingGrade float64
	loc          *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewExamEnrollmentService crea el ExamEnrollmentService
func NewExamEnrollmentService(repo *repository.Repository, cfg *config.Config, loc *time.Location, logger *zap.Logger) ExamEnrollmentService {
	return &examEnrollmentService{
		repo:         repo,
		lead:         cfg.Exams.CloseLead(),
		passingGrade: cfg.Grading.PassingFinalGrade,
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// ────────────────────── Availability ──────────────────────

func (s *examEnrollmentService) Availability(ctx context.Context, tableID, studentID string) (*dto.TableAvailabilityResponse, error) {
	table, err := s.repo.ExamTable.GetByID(ctx, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamTableNotFound
		}
		s.logger.Error("error al buscar mesa", zap.String("id", tableID), zap.Error(err))
		return nil, err
	}

	callIDs := make([]string, 0, len(table.Calls))
	for _, c := range table.Calls {
		callIDs = append(callIDs, c.CallID)
	}
	counts, err := s.repo.ExamEnrollment.CountActiveByCalls(ctx, callIDs)
	if err != nil {
		return nil, err
	}
	mine, err := s.repo.ExamEnrollment.ActiveCallIDsForStudent(ctx, studentID, callIDs)
	if err != nil {
		return nil, err
	}

	type standing struct{ approved, eligible bool }
	bySubject := make(map[string]standing)

	now := s.now()
	resp := &dto.TableAvailabilityResponse{
		TableID: table.TableID,
		Name:    table.Name,
		Status:  table.Status,
		Calls:   make([]dto.CallAvailabilityResponse, 0, len(table.Calls)),
	}
	for i := range table.Calls {
		call := &table.Calls[i]
		st, ok := bySubject[call.SubjectID]
		if !ok {
			approved, eligible, err := s.standing(ctx, studentID, call.SubjectID)
			if err != nil {
				return nil, err
			}
			st = standing{approved: approved, eligible: eligible}
			bySubject[call.SubjectID] = st
		}

		a := EvaluateCallAvailability(CallState{
			TableStatus:     table.Status,
			TableStart:      table.StartDate,
			TableEnd:        table.EndDate,
			ExamDate:        call.ExamDate,
			Quota:           call.Quota,
			Enrolled:        counts[call.CallID],
			AlreadyEnrolled: mine[call.CallID],
			AlreadyApproved: st.approved,
			Eligible:        st.eligible,
		}, now, s.lead, s.loc)
		resp.Calls = append(resp.Calls, toCallAvailability(call, a, s.loc))
	}
	return resp, nil
}

// standing situación del alumno en la materia: aprobada (promoción o final) y habilitada para rendir
func (s *examEnrollmentService) standing(ctx context.Context, studentID, subjectID string) (approved, eligible bool, err error) {
	conditions, err := s.repo.Enrollment.ListConditionsForSubject(ctx, studentID, subjectID)
	if err != nil {
		return false, false, err
	}
	eligible, promoted := eligibleConditions(conditions)
	if promoted {
		return true, eligible, nil
	}
	passed, err := s.repo.ExamEnrollment.HasPassedFinal(ctx, studentID, subjectID, s.passingGrade)
	if err != nil {
		return false, false, err
	}
	return passed, eligible, nil
}

func toCallAvailability(call *model.ExamCall, a Availability, loc *time.Location) dto.CallAvailabilityResponse {
	return dto.CallAvailabilityResponse{
		Call:      *toExamCallResponse(call, loc),
		Available: a.OK(),
		Reason:    a.Reason,
		OpensAt:   a.OpensAt.In(loc).Format(time.RFC3339),
		ClosesAt:  a.ClosesAt.In(loc).Format(time.RFC3339),
		SeatsLeft: a.SeatsLeft,
	}
}

// ────────────────────── Enroll ──────────────────────

func (s *examEnrollmentService) Enroll(ctx context.Context, callID string, req *dto.CreateExamEnrollmentRequest, callerID, callerRole string) (*dto.ExamEnrollmentResponse, error) {
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

	call, err := s.repo.ExamCall.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamCallNotFound
		}
		return nil, err
	}
	if call.Table == nil {
		return nil, ErrExamTableNotFound
	}
	approved, eligible, err := s.standing(ctx, studentID, call.SubjectID)
	if err != nil {
		return nil, err
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

	// con el llamado bloqueado, cupo e inscripción previa se leen sin carrera
	locked, err := txRepo.ExamCall.GetForUpdate(ctx, callID)
	if err != nil {
		rollback()
		return nil, err
	}
	// estado y fechas de la mesa releídos dentro de la transacción
	table, err := txRepo.ExamTable.GetForShare(ctx, locked.TableID)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamTableNotFound
		}
		return nil, err
	}
	_, err = txRepo.ExamEnrollment.GetActive(ctx, callID, studentID)
	already := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		rollback()
		return nil, err
	}
	enrolled, err := txRepo.ExamEnrollment.CountActiveByCall(ctx, callID)
	if err != nil {
		rollback()
		return nil, err
	}

	a := EvaluateCallAvailability(CallState{
		TableStatus:     table.Status,
		TableStart:      table.StartDate,
		TableEnd:        table.EndDate,
		ExamDate:        locked.ExamDate,
		Quota:           locked.Quota,
		Enrolled:        enrolled,
		AlreadyEnrolled: already,
		AlreadyApproved: approved,
		Eligible:        eligible,
	}, s.now(), s.lead, s.loc)
	if !a.OK() {
		rollback()
		return nil, &AvailabilityError{Reason: a.Reason}
	}

	ee := &model.ExamEnrollment{
		CallID:    callID,
		StudentID: studentID,
		Status:    model.ExamEnrolled,
	}
	ee.SetCreator(callerID)
	if err := txRepo.ExamEnrollment.Create(ctx, ee); err != nil {
		rollback()
		s.logger.Error("error al inscribir a examen", zap.String("call_id", callID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("error al confirmar transacción", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("alumno inscripto a examen",
		zap.String("student_id", studentID),
		zap.String("call_id", callID),
		zap.String("by", callerID),
	)

	ee.Call = call
	return toExamEnrollmentResponse(ee, s.loc), nil
}

// ────────────────────── Cancel ──────────────────────

func (s *examEnrollmentService) Cancel(ctx context.Context, id string, callerID, callerRole string) error {
	ee, err := s.getExamEnrollment(ctx, id)
	if err != nil {
		return err
	}
	if callerRole == model.RoleStudent && ee.StudentID != callerID {
		return ErrNoPermission
	}
	if !model.IsStaff(callerRole) && callerRole != model.RoleStudent {
		return ErrNoPermission
	}
	if ee.Status != model.ExamEnrolled {
		return ErrExamEnrollmentNotActive
	}

	call := ee.Call
	if call == nil || call.Table == nil || call.Table.Status != model.TableOpen {
		return ErrExamWindowClosed
	}
	_, closesAt := CallWindow(call.Table.StartDate, call.Table.EndDate, call.ExamDate, s.lead, s.loc)
	if !s.now().Before(closesAt) {
		return ErrExamWindowClosed
	}

	ee.Status = model.ExamCancelled
	ee.SetUpdater(callerID)
	if err := s.repo.ExamEnrollment.Update(ctx, ee); err != nil {
		s.logger.Error("error al cancelar inscripción a examen", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("inscripción a examen cancelada", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── RecordResult ──────────────────────

func (s *examEnrollmentService) RecordResult(ctx context.Context, id string, req *dto.ExamResultRequest, callerID, callerRole string) (*dto.ExamEnrollmentResponse, error) {
	ee, err := s.getExamEnrollment(ctx, id)
	if err != nil {
		return nil, err
	}
	if ee.Call == nil || !canGradeCall(ee.Call, callerID, callerRole) {
		return nil, ErrNoPermission
	}
	if ee.Call.Table == nil ||
		(ee.Call.Table.Status != model.TableClosed && ee.Call.Table.Status != model.TableFinished) {
		return nil, ErrExamTableNotClosed
	}
	if ee.Status == model.ExamCancelled {
		return nil, ErrExamEnrollmentNotActive
	}

	switch {
	case req.Absent:
		ee.Status = model.ExamAbsent
		ee.Grade = nil
	case req.Grade == nil:
		return nil, ErrExamResultGradeRequired
	case *req.Grade < 0 || *req.Grade > 10:
		return nil, ErrExamResultGradeOutOfRange
	default:
		grade := roundHalfUp(*req.Grade)
		ee.Status = model.ExamGraded
		ee.Grade = &grade
	}
	ee.GradedBy = &callerID
	ee.SetUpdater(callerID)

	if err := s.repo.ExamEnrollment.Update(ctx, ee); err != nil {
		s.logger.Error("error al registrar resultado", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("resultado de examen registrado",
		zap.String("id", id),
		zap.String("status", ee.Status),
		zap.String("by", callerID),
	)
	return toExamEnrollmentResponse(ee, s.loc), nil
}

// ────────────────────── ListMine ──────────────────────

func (s *examEnrollmentService) ListMine(ctx context.Context, studentID string) ([]dto.ExamEnrollmentResponse, error) {
	list, err := s.repo.ExamEnrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("error al listar inscripciones a examen", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.ExamEnrollmentResponse, 0, len(list))
	for i := range list {
		result = append(result, *toExamEnrollmentResponse(&list[i], s.loc))
	}
	return result, nil
}

func (s *examEnrollmentService) getExamEnrollment(ctx context.Context, id string) (*model.ExamEnrollment, error) {
	ee, err := s.repo.ExamEnrollment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamEnrollmentNotFound
		}
		s.logger.Error("error al buscar inscripción a examen", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return ee, nil
}
