package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gestion-academica/backend/config"
	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

var (
	ErrExamTableNotFound          = errors.New("la mesa de examen no existe")
	ErrExamTableNameExists        = errors.New("ya existe una mesa con ese nombre en el período")
	ErrExamTableDateInvalid       = errors.New("la fecha de fin de la mesa no puede ser anterior a la de inicio")
	ErrExamTableNotDraft          = errors.New("solo se puede modificar una mesa en borrador")
	ErrExamTableLocked            = errors.New("la mesa ya no admite cambios en sus llamados")
	ErrExamTableInvalidTransition = errors.New("la mesa no admite ese cambio de estado")
	ErrExamTableNoCalls           = errors.New("la mesa necesita al menos un llamado para abrirse")
	ErrExamCallNotFound           = errors.New("el llamado no existe")
	ErrExamCallNumberExists       = errors.New("ya existe ese número de llamado para la materia en la mesa")
	ErrExamCallDateOutOfRange     = errors.New("la fecha del llamado está fuera del rango de la mesa")
	ErrExamCallQuotaBelow         = errors.New("el cupo no puede ser menor a los inscriptos")
	ErrExamPresidentInvalid       = errors.New("el presidente de mesa debe ser un docente o personal de bedelía")
)

// Eventos del ciclo de vida de una mesa
const (
	TableEventOpen   = "open"
	TableEventClose  = "close"
	TableEventReopen = "reopen"
	TableEventFinish = "finish"
)

// ExamTableService mesas de examen final y sus llamados
type ExamTableService interface {
	Create(ctx context.Context, req *dto.CreateExamTableRequest, callerID string) (*dto.ExamTableResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ExamTableResponse, error)
	List(ctx context.Context, req *dto.ExamTableListRequest) ([]dto.ExamTableResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateExamTableRequest, callerID string) (*dto.ExamTableResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	Transition(ctx context.Context, id string, event string, callerID string) (*dto.ExamTableResponse, error)

	CreateCall(ctx context.Context, tableID string, req *dto.CreateExamCallRequest, callerID string) (*dto.ExamCallResponse, error)
	UpdateCall(ctx context.Context, callID string, req *dto.UpdateExamCallRequest, callerID string) (*dto.ExamCallResponse, error)
	DeleteCall(ctx context.Context, callID string, callerID string) error
	Roster(ctx context.Context, callID string, callerID, callerRole string) (*dto.ExamRosterResponse, error)
}

type examTableService struct {
	repo   *repository.Repository
	cfg    *config.ExamsConfig
	loc    *time.Location
	logger *zap.Logger
}

// NewExamTableService crea el ExamTableService
func NewExamTableService(repo *repository.Repository, cfg *config.ExamsConfig, loc *time.Location, logger *zap.Logger) ExamTableService {
	return &examTableService{repo: repo, cfg: cfg, loc: loc, logger: logger}
}

// newTableFSM máquina de estados de la mesa; guard puede cancelar un evento
func newTableFSM(current string, guard func(ctx context.Context, event string) error) *fsm.FSM {
	return fsm.NewFSM(
		current,
		fsm.Events{
			{Name: TableEventOpen, Src: []string{model.TableDraft}, Dst: model.TableOpen},
			{Name: TableEventClose, Src: []string{model.TableOpen}, Dst: model.TableClosed},
			{Name: TableEventReopen, Src: []string{model.TableClosed}, Dst: model.TableOpen},
			{Name: TableEventFinish, Src: []string{model.TableClosed}, Dst: model.TableFinished},
		},
		fsm.Callbacks{
			"before_event": func(ctx context.Context, e *fsm.Event) {
				if guard == nil {
					return
				}
				if err := guard(ctx, e.Event); err != nil {
					e.Cancel(err)
				}
			},
		},
	)
}

// ────────────────────── Mesas ──────────────────────

func (s *examTableService) Create(ctx context.Context, req *dto.CreateExamTableRequest, callerID string) (*dto.ExamTableResponse, error) {
	if _, err := s.repo.Period.GetByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}

	start, end, err := parseTableDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if _, err := s.repo.ExamTable.GetByPeriodAndName(ctx, req.PeriodID, name); err == nil {
		return nil, ErrExamTableNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	table := &model.ExamTable{
		Name:      name,
		PeriodID:  req.PeriodID,
		StartDate: start,
		EndDate:   end,
		Status:    model.TableDraft,
	}
	table.SetCreator(callerID)

	if err := s.repo.ExamTable.Create(ctx, table); err != nil {
		s.logger.Error("error al crear mesa", zap.Error(err))
		return nil, err
	}
	return toExamTableResponse(table, s.loc), nil
}

func parseTableDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, ErrExamTableDateInvalid
	}
	end, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, ErrExamTableDateInvalid
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrExamTableDateInvalid
	}
	return start, end, nil
}

func (s *examTableService) GetByID(ctx context.Context, id string) (*dto.ExamTableResponse, error) {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return nil, err
	}
	return toExamTableResponse(table, s.loc), nil
}

func (s *examTableService) List(ctx context.Context, req *dto.ExamTableListRequest) ([]dto.ExamTableResponse, error) {
	tables, err := s.repo.ExamTable.List(ctx, &repository.ExamTableListFilters{
		PeriodID: req.PeriodID,
		Status:   req.Status,
	})
	if err != nil {
		s.logger.Error("error al listar mesas", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ExamTableResponse, 0, len(tables))
	for i := range tables {
		result = append(result, *toExamTableResponse(&tables[i], s.loc))
	}
	return result, nil
}

func (s *examTableService) Update(ctx context.Context, id string, req *dto.UpdateExamTableRequest, callerID string) (*dto.ExamTableResponse, error) {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if table.Status != model.TableDraft {
		return nil, ErrExamTableNotDraft
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if existing, err := s.repo.ExamTable.GetByPeriodAndName(ctx, table.PeriodID, name); err == nil && existing.TableID != id {
			return nil, ErrExamTableNameExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		table.Name = name
	}
	startRaw, endRaw := formatDate(table.StartDate), formatDate(table.EndDate)
	if req.StartDate != nil {
		startRaw = *req.StartDate
	}
	if req.EndDate != nil {
		endRaw = *req.EndDate
	}
	if table.StartDate, table.EndDate, err = parseTableDates(startRaw, endRaw); err != nil {
		return nil, err
	}
	for _, call := range table.Calls {
		if !s.examDateInRange(table, call.ExamDate) {
			return nil, ErrExamCallDateOutOfRange
		}
	}

	table.SetUpdater(callerID)
	if err := s.repo.ExamTable.Update(ctx, table); err != nil {
		s.logger.Warn("error al actualizar mesa", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toExamTableResponse(table, s.loc), nil
}

func (s *examTableService) Delete(ctx context.Context, id string, callerID string) error {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return err
	}
	if table.Status != model.TableDraft {
		return ErrExamTableNotDraft
	}
	if err := s.repo.ExamTable.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar mesa", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Transition ──────────────────────

// Transition aplica un evento del ciclo de vida: draft → open ⇄ closed → finished
func (s *examTableService) Transition(ctx context.Context, id string, event string, callerID string) (*dto.ExamTableResponse, error) {
	table, err := s.getTable(ctx, id)
	if err != nil {
		return nil, err
	}

	var guardErr error
	machine := newTableFSM(table.Status, func(ctx context.Context, ev string) error {
		if ev != TableEventOpen {
			return nil
		}
		count, err := s.repo.ExamCall.CountByTable(ctx, table.TableID)
		if err != nil {
			guardErr = err
			return err
		}
		if count == 0 {
			guardErr = ErrExamTableNoCalls
			return guardErr
		}
		return nil
	})

	if err := machine.Event(ctx, event); err != nil {
		if guardErr != nil {
			return nil, guardErr
		}
		var invalid fsm.InvalidEventError
		var unknown fsm.UnknownEventError
		if errors.As(err, &invalid) || errors.As(err, &unknown) {
			return nil, ErrExamTableInvalidTransition
		}
		return nil, err
	}

	from := table.Status
	if err := s.repo.ExamTable.UpdateStatus(ctx, table, machine.Current(), callerID); err != nil {
		s.logger.Warn("error al cambiar estado de mesa", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("estado de mesa actualizado",
		zap.String("id", id),
		zap.String("from", from),
		zap.String("to", table.Status),
		zap.String("by", callerID),
	)
	return toExamTableResponse(table, s.loc), nil
}

// ────────────────────── Llamados ──────────────────────

func (s *examTableService) CreateCall(ctx context.Context, tableID string, req *dto.CreateExamCallRequest, callerID string) (*dto.ExamCallResponse, error) {
	table, err := s.getTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if !callsEditable(table.Status) {
		return nil, ErrExamTableLocked
	}
	if _, err := s.repo.Subject.GetByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		return nil, err
	}

	examDate, err := time.Parse(time.RFC3339, req.ExamDate)
	if err != nil || !s.examDateInRange(table, examDate) {
		return nil, ErrExamCallDateOutOfRange
	}

	exists, err := s.repo.ExamCall.ExistsNumber(ctx, tableID, req.SubjectID, req.CallNumber, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrExamCallNumberExists
	}
	if err := s.checkPresident(ctx, req.PresidentID); err != nil {
		return nil, err
	}

	call := &model.ExamCall{
		TableID:     tableID,
		SubjectID:   req.SubjectID,
		CallNumber:  req.CallNumber,
		ExamDate:    examDate,
		Classroom:   req.Classroom,
		Quota:       req.Quota,
		PresidentID: req.PresidentID,
	}
	call.SetCreator(callerID)

	if err := s.repo.ExamCall.Create(ctx, call); err != nil {
		s.logger.Error("error al crear llamado", zap.String("table_id", tableID), zap.Error(err))
		return nil, err
	}
	return s.getCallResponse(ctx, call.CallID)
}

func (s *examTableService) UpdateCall(ctx context.Context, callID string, req *dto.UpdateExamCallRequest, callerID string) (*dto.ExamCallResponse, error) {
	call, err := s.getCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if call.Table == nil || !callsEditable(call.Table.Status) {
		return nil, ErrExamTableLocked
	}

	if req.ExamDate != nil {
		examDate, err := time.Parse(time.RFC3339, *req.ExamDate)
		if err != nil || !s.examDateInRange(call.Table, examDate) {
			return nil, ErrExamCallDateOutOfRange
		}
		call.ExamDate = examDate
	}
	if req.Classroom != nil {
		call.Classroom = *req.Classroom
	}
	if req.Quota != nil {
		if *req.Quota > 0 {
			enrolled, err := s.repo.ExamEnrollment.CountActiveByCall(ctx, callID)
			if err != nil {
				return nil, err
			}
			if enrolled > int64(*req.Quota) {
				return nil, ErrExamCallQuotaBelow
			}
		}
		call.Quota = *req.Quota
	}
	if req.PresidentID != nil {
		if err := s.checkPresident(ctx, req.PresidentID); err != nil {
			return nil, err
		}
		call.PresidentID = req.PresidentID
	}
	call.SetUpdater(callerID)

	if err := s.repo.ExamCall.Update(ctx, call); err != nil {
		s.logger.Error("error al actualizar llamado", zap.String("id", callID), zap.Error(err))
		return nil, err
	}
	return s.getCallResponse(ctx, callID)
}

func (s *examTableService) DeleteCall(ctx context.Context, callID string, callerID string) error {
	call, err := s.getCall(ctx, callID)
	if err != nil {
		return err
	}
	if call.Table == nil || call.Table.Status != model.TableDraft {
		return ErrExamTableNotDraft
	}
	if err := s.repo.ExamCall.Delete(ctx, callID, callerID); err != nil {
		s.logger.Error("error al eliminar llamado", zap.String("id", callID), zap.Error(err))
		return err
	}
	return nil
}

func (s *examTableService) Roster(ctx context.Context, callID string, callerID, callerRole string) (*dto.ExamRosterResponse, error) {
	call, err := s.getCall(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !canGradeCall(call, callerID, callerRole) {
		return nil, ErrNoPermission
	}

	list, err := s.repo.ExamEnrollment.ListByCall(ctx, callID)
	if err != nil {
		s.logger.Error("error al listar inscriptos", zap.String("call_id", callID), zap.Error(err))
		return nil, err
	}

	roster := &dto.ExamRosterResponse{
		Call:     *toExamCallResponse(call, s.loc),
		Enrolled: make([]dto.ExamEnrollmentResponse, 0, len(list)),
	}
	for i := range list {
		roster.Enrolled = append(roster.Enrolled, *toExamEnrollmentResponse(&list[i], s.loc))
	}
	return roster, nil
}

// ────────────────────── helpers ──────────────────────

func (s *examTableService) getTable(ctx context.Context, id string) (*model.ExamTable, error) {
	table, err := s.repo.ExamTable.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamTableNotFound
		}
		s.logger.Error("error al buscar mesa", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return table, nil
}

func (s *examTableService) getCall(ctx context.Context, id string) (*model.ExamCall, error) {
	call, err := s.repo.ExamCall.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExamCallNotFound
		}
		s.logger.Error("error al buscar llamado", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return call, nil
}

func (s *examTableService) getCallResponse(ctx context.Context, id string) (*dto.ExamCallResponse, error) {
	call, err := s.getCall(ctx, id)
	if err != nil {
		return nil, err
	}
	return toExamCallResponse(call, s.loc), nil
}

// examDateInRange el examen cae entre el inicio de la mesa y el fin más los días de gracia
func (s *examTableService) examDateInRange(table *model.ExamTable, examDate time.Time) bool {
	from := atStartOfDay(table.StartDate, s.loc)
	to := atStartOfDay(table.EndDate, s.loc).AddDate(0, 0, s.cfg.CallDateGraceDays+1)
	return !examDate.Before(from) && examDate.Before(to)
}

func (s *examTableService) checkPresident(ctx context.Context, presidentID *string) error {
	if presidentID == nil {
		return nil
	}
	president, err := s.repo.User.GetByID(ctx, *presidentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamPresidentInvalid
		}
		return err
	}
	if president.Role == model.RoleStudent {
		return ErrExamPresidentInvalid
	}
	return nil
}

// callsEditable los llamados se cargan mientras la mesa está en borrador o abierta
func callsEditable(status string) bool {
	return status == model.TableDraft || status == model.TableOpen
}

// canGradeCall bedelía o el presidente del llamado
func canGradeCall(call *model.ExamCall, callerID, callerRole string) bool {
	if model.IsStaff(callerRole) {
		return true
	}
	return call.PresidentID != nil && *call.PresidentID == callerID
}
