package service

import (
	"time"

	"gestion-academica/backend/internal/model"
)

// Motivos de (in)disponibilidad de un llamado
const (
	ReasonOK               = "OK"
	ReasonTableNotOpen     = "TABLE_NOT_OPEN"
	ReasonWindowNotStarted = "WINDOW_NOT_STARTED"
	ReasonWindowClosed     = "WINDOW_CLOSED"
	ReasonAlreadyEnrolled  = "ALREADY_ENROLLED"
	ReasonAlreadyApproved  = "ALREADY_APPROVED"
	ReasonNotEligible      = "NOT_ELIGIBLE"
	ReasonQuotaFull        = "QUOTA_FULL"
)

// CallState datos del llamado y del alumno necesarios para decidir la inscripción
type CallState struct {
	TableStatus     string
	TableStart      time.Time // fecha
	TableEnd        time.Time // fecha
	ExamDate        time.Time
	Quota           int // 0 = sin cupo
	Enrolled        int64
	AlreadyEnrolled bool
	AlreadyApproved bool
	Eligible        bool
}

// Availability resultado de evaluar un llamado
type Availability struct {
	Reason    string
	OpensAt   time.Time
	ClosesAt  time.Time
	SeatsLeft int // -1 = sin cupo
}

// OK indica si el alumno puede inscribirse
func (a Availability) OK() bool {
	return a.Reason == ReasonOK
}

// CallWindow ventana de inscripción de un llamado.
// Abre el día de inicio de la mesa a las 00:00 y cierra en lo que ocurra primero:
// el fin del último día de la mesa o lead antes del examen.
func CallWindow(tableStart, tableEnd, examDate time.Time, lead time.Duration, loc *time.Location) (time.Time, time.Time) {
	opensAt := atStartOfDay(tableStart, loc)
	closesAt := atStartOfDay(tableEnd, loc).Add(24*time.Hour - time.Second)
	if byExam := examDate.Add(-lead); byExam.Before(closesAt) {
		closesAt = byExam
	}
	return opensAt, closesAt
}

// EvaluateCallAvailability decide si el alumno puede inscribirse; gana la primera regla que falla
func EvaluateCallAvailability(st CallState, now time.Time, lead time.Duration, loc *time.Location) Availability {
	opensAt, closesAt := CallWindow(st.TableStart, st.TableEnd, st.ExamDate, lead, loc)
	a := Availability{
		OpensAt:   opensAt,
		ClosesAt:  closesAt,
		SeatsLeft: seatsLeft(st.Quota, st.Enrolled),
	}

	switch {
	case st.TableStatus != model.TableOpen:
		a.Reason = ReasonTableNotOpen
	case now.Before(opensAt):
		a.Reason = ReasonWindowNotStarted
	case !now.Before(closesAt):
		a.Reason = ReasonWindowClosed
	case st.AlreadyEnrolled:
		a.Reason = ReasonAlreadyEnrolled
	case st.AlreadyApproved:
		a.Reason = ReasonAlreadyApproved
	case !st.Eligible:
		a.Reason = ReasonNotEligible
	case st.Quota > 0 && st.Enrolled >= int64(st.Quota):
		a.Reason = ReasonQuotaFull
	default:
		a.Reason = ReasonOK
	}
	return a
}

func seatsLeft(quota int, enrolled int64) int {
	if quota <= 0 {
		return -1
	}
	left := quota - int(enrolled)
	if left < 0 {
		return 0
	}
	return left
}

// atStartOfDay medianoche local del día calendario de d
func atStartOfDay(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// eligibleConditions condiciones que habilitan a rendir final / indican aprobación directa
func eligibleConditions(conditions []string) (eligible, promoted bool) {
	for _, c := range conditions {
		switch c {
		case model.ConditionRegular, model.ConditionFree:
			eligible = true
		case model.ConditionPromoted:
			promoted = true
		}
	}
	return eligible, promoted
}
