package model

import "time"

// AcademicPeriod tabla academic_periods (ciclo lectivo anual o cuatrimestral)
type AcademicPeriod struct {
	PeriodID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	Name             string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Year             int       `gorm:"not null"                                       json:"year"`
	Type             string    `gorm:"type:varchar(10);not null"                      json:"type"` // annual | semester
	PartialsRequired int       `gorm:"type:smallint;not null"                         json:"partials_required"`
	StartDate        time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate          time.Time `gorm:"type:date;not null"                             json:"end_date"`
	EnrollmentStart  time.Time `gorm:"type:date;not null"                             json:"enrollment_start"`
	EnrollmentEnd    time.Time `gorm:"type:date;not null"                             json:"enrollment_end"`
	IsActive         bool      `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

func (AcademicPeriod) TableName() string { return "academic_periods" }

// EnrollmentOpen indica si la fecha cae dentro de la ventana de inscripción (días completos)
func (p *AcademicPeriod) EnrollmentOpen(now time.Time) bool {
	day := dateOnly(now)
	return !day.Before(dateOnly(p.EnrollmentStart)) && !day.After(dateOnly(p.EnrollmentEnd))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
