package dto

// ── mesas de examen ──

// CreateExamTableRequest alta de mesa (queda en borrador)
type CreateExamTableRequest struct {
	Name      string `json:"name"       binding:"required,min=3,max=100"`
	PeriodID  string `json:"period_id"  binding:"required,uuid"`
	StartDate string `json:"start_date" binding:"required,isodate"`
	EndDate   string `json:"end_date"   binding:"required,isodate"`
}

// UpdateExamTableRequest modificación (solo en borrador)
type UpdateExamTableRequest struct {
	Name      *string `json:"name"       binding:"omitempty,min=3,max=100"`
	StartDate *string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   *string `json:"end_date"   binding:"omitempty,isodate"`
}

// ExamTableTransitionRequest evento del ciclo de vida
type ExamTableTransitionRequest struct {
	Event string `json:"event" binding:"required,oneof=open close reopen finish"`
}

// ExamTableListRequest filtros
type ExamTableListRequest struct {
	PeriodID string `form:"period_id" binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=draft open closed finished"`
}

// ExamTableResponse mesa
type ExamTableResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	PeriodID  string             `json:"period_id"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    string             `json:"status"`
	Version   int                `json:"version"`
	Calls     []ExamCallResponse `json:"calls,omitempty"`
}

// ── llamados ──

// CreateExamCallRequest alta de llamado
type CreateExamCallRequest struct {
	SubjectID   string  `json:"subject_id"   binding:"required,uuid"`
	CallNumber  int     `json:"call_number"  binding:"required,min=1,max=9"`
	ExamDate    string  `json:"exam_date"    binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Classroom   string  `json:"classroom"    binding:"omitempty,max=100"`
	Quota       int     `json:"quota"        binding:"omitempty,min=0,max=1000"`
	PresidentID *string `json:"president_id" binding:"omitempty,uuid"`
}

// UpdateExamCallRequest modificación de llamado
type UpdateExamCallRequest struct {
	ExamDate    *string `json:"exam_date"    binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Classroom   *string `json:"classroom"    binding:"omitempty,max=100"`
	Quota       *int    `json:"quota"        binding:"omitempty,min=0,max=1000"`
	PresidentID *string `json:"president_id" binding:"omitempty,uuid"`
}

// ExamCallResponse llamado
type ExamCallResponse struct {
	ID         string       `json:"id"`
	TableID    string       `json:"table_id"`
	Subject    *CareerBrief `json:"subject,omitempty"`
	CallNumber int          `json:"call_number"`
	ExamDate   string       `json:"exam_date"`
	Classroom  string       `json:"classroom,omitempty"`
	Quota      int          `json:"quota"`
	President  *UserBrief   `json:"president,omitempty"`
}

// ── disponibilidad e inscripción ──

// CallAvailabilityResponse disponibilidad de un llamado para el alumno
type CallAvailabilityResponse struct {
	Call      ExamCallResponse `json:"call"`
	Available bool             `json:"available"`
	Reason    string           `json:"reason"`
	OpensAt   string           `json:"opens_at"`
	ClosesAt  string           `json:"closes_at"`
	SeatsLeft int              `json:"seats_left"` // -1 = sin cupo
}

// TableAvailabilityResponse disponibilidad de todos los llamados de una mesa
type TableAvailabilityResponse struct {
	TableID string                     `json:"table_id"`
	Name    string                     `json:"name"`
	Status  string                     `json:"status"`
	Calls   []CallAvailabilityResponse `json:"calls"`
}

// CreateExamEnrollmentRequest inscripción a llamado; student_id solo lo usa bedelía
type CreateExamEnrollmentRequest struct {
	StudentID string `json:"student_id" binding:"omitempty,uuid"`
}

// ExamResultRequest resultado del examen: nota o ausente
type ExamResultRequest struct {
	Absent bool     `json:"absent"`
	Grade  *float64 `json:"grade" binding:"omitempty,score"`
}

// ExamEnrollmentResponse inscripción a examen
type ExamEnrollmentResponse struct {
	ID        string            `json:"id"`
	CallID    string            `json:"call_id"`
	Status    string            `json:"status"`
	Grade     *float64          `json:"grade,omitempty"`
	Student   *UserBrief        `json:"student,omitempty"`
	Call      *ExamCallResponse `json:"call,omitempty"`
	TableName string            `json:"table_name,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// ExamRosterResponse acta del llamado
type ExamRosterResponse struct {
	Call     ExamCallResponse         `json:"call"`
	Enrolled []ExamEnrollmentResponse `json:"enrolled"`
}
