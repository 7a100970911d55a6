package dto

// ── períodos lectivos ──

// CreatePeriodRequest alta de período
type CreatePeriodRequest struct {
	Name             string `json:"name"              binding:"required,min=3,max=100"`
	Year             int    `json:"year"              binding:"required,min=2000,max=2100"`
	Type             string `json:"type"              binding:"required,oneof=annual semester"`
	PartialsRequired int    `json:"partials_required" binding:"omitempty,oneof=2 4"` // 0 = según el tipo
	StartDate        string `json:"start_date"        binding:"required,isodate"`
	EndDate          string `json:"end_date"          binding:"required,isodate"`
	EnrollmentStart  string `json:"enrollment_start"  binding:"required,isodate"`
	EnrollmentEnd    string `json:"enrollment_end"    binding:"required,isodate"`
}

// UpdatePeriodRequest modificación de período
type UpdatePeriodRequest struct {
	Name             *string `json:"name"              binding:"omitempty,min=3,max=100"`
	PartialsRequired *int    `json:"partials_required" binding:"omitempty,oneof=2 4"`
	StartDate        *string `json:"start_date"        binding:"omitempty,isodate"`
	EndDate          *string `json:"end_date"          binding:"omitempty,isodate"`
	EnrollmentStart  *string `json:"enrollment_start"  binding:"omitempty,isodate"`
	EnrollmentEnd    *string `json:"enrollment_end"    binding:"omitempty,isodate"`
}

// PeriodResponse período
type PeriodResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Year             int    `json:"year"`
	Type             string `json:"type"`
	PartialsRequired int    `json:"partials_required"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	EnrollmentStart  string `json:"enrollment_start"`
	EnrollmentEnd    string `json:"enrollment_end"`
	EnrollmentOpen   bool   `json:"enrollment_open"`
	IsActive         bool   `json:"is_active"`
}
