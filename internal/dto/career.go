package dto

// ── carreras ──

// CreateCareerRequest alta de carrera
type CreateCareerRequest struct {
	Code        string `json:"code"        binding:"required,min=2,max=20"`
	Name        string `json:"name"        binding:"required,min=3,max=150"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateCareerRequest modificación de carrera
type UpdateCareerRequest struct {
	Code        *string `json:"code"        binding:"omitempty,min=2,max=20"`
	Name        *string `json:"name"        binding:"omitempty,min=3,max=150"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	IsActive    *bool   `json:"is_active"`
}

// CareerListRequest filtros
type CareerListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// CareerResponse carrera
type CareerResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// ── materias ──

// CreateSubjectRequest alta de materia
type CreateSubjectRequest struct {
	CareerID    string `json:"career_id"    binding:"required,uuid"`
	Code        string `json:"code"         binding:"required,min=2,max=20"`
	Name        string `json:"name"         binding:"required,min=3,max=150"`
	YearLevel   int    `json:"year_level"   binding:"required,min=1,max=6"`
	PeriodType  string `json:"period_type"  binding:"required,oneof=annual semester"`
	WeeklyHours int    `json:"weekly_hours" binding:"omitempty,min=1,max=40"`
}

// UpdateSubjectRequest modificación de materia
type UpdateSubjectRequest struct {
	Code        *string `json:"code"         binding:"omitempty,min=2,max=20"`
	Name        *string `json:"name"         binding:"omitempty,min=3,max=150"`
	YearLevel   *int    `json:"year_level"   binding:"omitempty,min=1,max=6"`
	PeriodType  *string `json:"period_type"  binding:"omitempty,oneof=annual semester"`
	WeeklyHours *int    `json:"weekly_hours" binding:"omitempty,min=1,max=40"`
}

// SubjectListRequest filtros
type SubjectListRequest struct {
	CareerID  string `form:"career_id"  binding:"omitempty,uuid"`
	YearLevel int    `form:"year_level" binding:"omitempty,min=1,max=6"`
}

// SubjectResponse materia
type SubjectResponse struct {
	ID          string       `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	YearLevel   int          `json:"year_level"`
	PeriodType  string       `json:"period_type"`
	WeeklyHours int          `json:"weekly_hours"`
	CareerID    string       `json:"career_id"`
	Career      *CareerBrief `json:"career,omitempty"`
}
