package dto

// ── comisiones ──

// CreateCommissionRequest alta de comisión
type CreateCommissionRequest struct {
	PeriodID string `json:"period_id" binding:"required,uuid"`
	Name     string `json:"name"      binding:"required,min=1,max=50"`
	Shift    string `json:"shift"     binding:"required,oneof=morning afternoon evening"`
	Capacity int    `json:"capacity"  binding:"required,min=1,max=500"`
}

// UpdateCommissionRequest modificación de comisión
type UpdateCommissionRequest struct {
	Name     *string `json:"name"     binding:"omitempty,min=1,max=50"`
	Shift    *string `json:"shift"    binding:"omitempty,oneof=morning afternoon evening"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1,max=500"`
}

// CommissionListRequest filtros
type CommissionListRequest struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
}

// CommissionResponse comisión
type CommissionResponse struct {
	ID       string `json:"id"`
	PeriodID string `json:"period_id"`
	Name     string `json:"name"`
	Shift    string `json:"shift"`
	Capacity int    `json:"capacity"`
}

// ── materias por comisión ──

// AssignSubjectRequest asigna materia y docente a una comisión
type AssignSubjectRequest struct {
	SubjectID string `json:"subject_id" binding:"required,uuid"`
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

// ChangeTeacherRequest reemplazo de docente
type ChangeTeacherRequest struct {
	TeacherID string `json:"teacher_id" binding:"required,uuid"`
}

// SubjectCommissionListRequest filtros
type SubjectCommissionListRequest struct {
	PeriodID     string `form:"period_id"     binding:"omitempty,uuid"`
	CommissionID string `form:"commission_id" binding:"omitempty,uuid"`
}

// SubjectCommissionResponse materia dictada en una comisión
type SubjectCommissionResponse struct {
	ID         string              `json:"id"`
	Subject    *SubjectResponse    `json:"subject,omitempty"`
	Commission *CommissionResponse `json:"commission,omitempty"`
	Teacher    *UserBrief          `json:"teacher,omitempty"`
	PeriodName string              `json:"period_name,omitempty"`
	Enrolled   int64               `json:"enrolled"`
}
