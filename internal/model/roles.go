package model

// Roles del sistema
const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleTeacher   = "teacher"
	RoleStudent   = "student"
)

// Tipos de período lectivo
const (
	PeriodAnnual   = "annual"
	PeriodSemester = "semester"
)

// Condiciones académicas de una cursada
const (
	ConditionEnrolled = "Inscripto"
	ConditionRegular  = "Regular"
	ConditionPromoted = "Promocionado"
	ConditionFree     = "Libre"
)

// Estados de inscripción a cursada
const (
	EnrollmentActive  = "active"
	EnrollmentDropped = "dropped"
)

// Estados de mesa de examen
const (
	TableDraft    = "draft"
	TableOpen     = "open"
	TableClosed   = "closed"
	TableFinished = "finished"
)

// Estados de inscripción a examen final
const (
	ExamEnrolled  = "enrolled"
	ExamCancelled = "cancelled"
	ExamAbsent    = "absent"
	ExamGraded    = "graded"
)

// IsStaff admin o secretaría (bedelía)
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleSecretary
}

// PartialsFor cantidad de parciales que exige cada tipo de período
func PartialsFor(periodType string) int {
	if periodType == PeriodAnnual {
		return 4
	}
	return 2
}
