package service

import (
	"time"

	"gestion-academica/backend/internal/model"
)

// fixedNow instante de referencia de los tests: mitad del ciclo lectivo 2026
var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// academicFixture una carrera, un cuatrimestre con la inscripción abierta,
// una comisión con una materia, su docente y un alumno de la carrera
type academicFixture struct {
	career     *model.Career
	period     *model.AcademicPeriod
	commission *model.Commission
	subject    *model.Subject
	teacher    *model.User
	student    *model.User
	sc         *model.SubjectCommission
}

func newAcademicFixture(store *mockStore) *academicFixture {
	f := &academicFixture{}
	f.career = addCareer(store, "TSDS", "Tecnicatura en Desarrollo de Software")

	f.period = &model.AcademicPeriod{
		PeriodID:         "period-2026-1",
		Name:             "Primer cuatrimestre 2026",
		Year:             2026,
		Type:             model.PeriodSemester,
		PartialsRequired: 2,
		StartDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC),
		EnrollmentStart:  time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		EnrollmentEnd:    time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
	store.periods[f.period.PeriodID] = f.period

	f.commission = &model.Commission{
		CommissionID: "commission-1A",
		PeriodID:     f.period.PeriodID,
		Name:         "1A",
		Shift:        "morning",
		Capacity:     2,
	}
	store.commissions[f.commission.CommissionID] = f.commission

	f.subject = &model.Subject{
		SubjectID:   "subject-PROG1",
		CareerID:    f.career.CareerID,
		Code:        "PROG1",
		Name:        "Programación I",
		YearLevel:   1,
		PeriodType:  model.PeriodSemester,
		WeeklyHours: 6,
	}
	store.subjects[f.subject.SubjectID] = f.subject

	f.teacher = createTestUser(store, "20333444", "docente123", model.RoleTeacher)
	f.student = f.addStudent(store, "40123456", "Gómez")

	f.sc = &model.SubjectCommission{
		SubjectCommissionID: "sc-PROG1-1A",
		SubjectID:           f.subject.SubjectID,
		CommissionID:        f.commission.CommissionID,
		TeacherID:           f.teacher.UserID,
	}
	store.scs[f.sc.SubjectCommissionID] = f.sc
	return f
}

// addStudent alumno de la carrera del fixture
func (f *academicFixture) addStudent(store *mockStore, dni, lastName string) *model.User {
	u := createTestUser(store, dni, "alumno123", model.RoleStudent)
	u.LastName = lastName
	careerID := f.career.CareerID
	u.CareerID = &careerID
	return u
}

// enroll inscripción activa cargada directamente en el store
func (f *academicFixture) enroll(store *mockStore, student *model.User, condition string) *model.Enrollment {
	e := &model.Enrollment{
		EnrollmentID:        "enrollment-" + student.DNI,
		StudentID:           student.UserID,
		SubjectCommissionID: f.sc.SubjectCommissionID,
		Status:              model.EnrollmentActive,
		Condition:           condition,
		EnrolledAt:          fixedNow,
	}
	store.enrollments[e.EnrollmentID] = e
	return e
}

// examFixture mesa de julio con un llamado de la materia del fixture presidido por su docente
type examFixture struct {
	table *model.ExamTable
	call  *model.ExamCall
}

// examNow dentro de la ventana de inscripción del llamado (cierra el 26/07 a las 14:00)
var examNow = time.Date(2026, 7, 22, 10, 0, 0, 0, time.UTC)

func newExamFixture(store *mockStore, f *academicFixture, status string) *examFixture {
	ef := &examFixture{}
	ef.table = &model.ExamTable{
		TableID:   "table-julio",
		Name:      "Mesa de julio",
		PeriodID:  f.period.PeriodID,
		StartDate: time.Date(2026, 7, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
	ef.table.Version = 1
	store.tables[ef.table.TableID] = ef.table

	presidentID := f.teacher.UserID
	ef.call = &model.ExamCall{
		CallID:      "call-PROG1-1",
		TableID:     ef.table.TableID,
		SubjectID:   f.subject.SubjectID,
		CallNumber:  1,
		ExamDate:    time.Date(2026, 7, 28, 14, 0, 0, 0, time.UTC),
		Classroom:   "Aula 3",
		PresidentID: &presidentID,
	}
	store.calls[ef.call.CallID] = ef.call
	return ef
}

// addExamEnrollment inscripción a examen cargada directamente en el store
func (ef *examFixture) addExamEnrollment(store *mockStore, student *model.User, status string, grade *float64) *model.ExamEnrollment {
	ee := &model.ExamEnrollment{
		ExamEnrollmentID: "exam-" + student.DNI,
		CallID:           ef.call.CallID,
		StudentID:        student.UserID,
		Status:           status,
		Grade:            grade,
	}
	store.examEnrollments[ee.ExamEnrollmentID] = ee
	return ee
}
