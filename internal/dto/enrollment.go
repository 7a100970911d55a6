package dto

// ── inscripción a cursada ──

// CreateEnrollmentRequest inscripción; student_id solo lo usa bedelía
type CreateEnrollmentRequest struct {
	SubjectCommissionID string `json:"subject_commission_id" binding:"required,uuid"`
	StudentID           string `json:"student_id"            binding:"omitempty,uuid"`
}

// EnrollmentListRequest filtros de "mis cursadas"
type EnrollmentListRequest struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

// EnrollmentResponse cursada
type EnrollmentResponse struct {
	ID                  string         `json:"id"`
	Status              string         `json:"status"`
	Condition           string         `json:"condition"`
	EnrolledAt          string         `json:"enrolled_at"`
	SubjectCommissionID string         `json:"subject_commission_id"`
	Subject             *CareerBrief   `json:"subject,omitempty"`
	CommissionName      string         `json:"commission_name,omitempty"`
	PeriodName          string         `json:"period_name,omitempty"`
	Teacher             *UserBrief     `json:"teacher,omitempty"`
	Student             *UserBrief     `json:"student,omitempty"`
	Grade               *GradeResponse `json:"grade,omitempty"`
}

// ── calificaciones ──

// UpsertGradeRequest carga de parciales y asistencia; los campos omitidos conservan su valor
type UpsertGradeRequest struct {
	Partial1   *float64 `json:"partial_1"  binding:"omitempty,score"`
	Partial2   *float64 `json:"partial_2"  binding:"omitempty,score"`
	Partial3   *float64 `json:"partial_3"  binding:"omitempty,score"`
	Partial4   *float64 `json:"partial_4"  binding:"omitempty,score"`
	Attendance *float64 `json:"attendance" binding:"omitempty,percent"`
}

// Partial valor enviado para el parcial n (1..4)
func (r *UpsertGradeRequest) Partial(n int) *float64 {
	switch n {
	case 1:
		return r.Partial1
	case 2:
		return r.Partial2
	case 3:
		return r.Partial3
	case 4:
		return r.Partial4
	}
	return nil
}

// GradeResponse calificación de una cursada
type GradeResponse struct {
	Partials   []*float64 `json:"partials"`
	Attendance *float64   `json:"attendance"`
	Average    *float64   `json:"average"`
	Condition  string     `json:"condition"`
	Version    int        `json:"version"`
	UpdatedAt  string     `json:"updated_at,omitempty"`
}

// GradeSheetRow fila de la planilla de calificaciones
type GradeSheetRow struct {
	EnrollmentID string         `json:"enrollment_id"`
	Student      UserBrief      `json:"student"`
	Condition    string         `json:"condition"`
	Grade        *GradeResponse `json:"grade,omitempty"`
}

// GradeSheetResponse planilla de una materia-comisión
type GradeSheetResponse struct {
	SubjectCommissionID string          `json:"subject_commission_id"`
	SubjectName         string          `json:"subject_name"`
	CommissionName      string          `json:"commission_name"`
	PeriodName          string          `json:"period_name"`
	PartialsRequired    int             `json:"partials_required"`
	Rows                []GradeSheetRow `json:"rows"`
}
