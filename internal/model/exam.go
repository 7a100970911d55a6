package model

import "time"

// ExamTable tabla exam_tables: mesa de examen final con uno o más llamados
type ExamTable struct {
	TableID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"table_id"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	PeriodID  string    `gorm:"type:uuid;not null"                             json:"period_id"`
	StartDate time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null"                             json:"end_date"`
	Status    string    `gorm:"type:varchar(10);not null;default:'draft'"      json:"status"` // draft | open | closed | finished
	VersionedModel

	Calls []ExamCall `gorm:"foreignKey:TableID" json:"calls,omitempty"`
}

func (ExamTable) TableName() string { return "exam_tables" }

// ExamCall tabla exam_calls: llamado de una materia dentro de la mesa
type ExamCall struct {
	CallID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"call_id"`
	TableID     string    `gorm:"type:uuid;not null"                             json:"table_id"`
	SubjectID   string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	CallNumber  int       `gorm:"type:smallint;not null"                         json:"call_number"`
	ExamDate    time.Time `gorm:"not null"                                       json:"exam_date"`
	Classroom   string    `gorm:"type:varchar(100)"                              json:"classroom,omitempty"`
	Quota       int       `gorm:"not null;default:0"                             json:"quota"` // 0 = sin cupo
	PresidentID *string   `gorm:"type:uuid"                                      json:"president_id,omitempty"`
	VersionedModel

	Table     *ExamTable `gorm:"foreignKey:TableID;references:TableID"     json:"table,omitempty"`
	Subject   *Subject   `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	President *User      `gorm:"foreignKey:PresidentID;references:UserID"  json:"president,omitempty"`
}

func (ExamCall) TableName() string { return "exam_calls" }

// ExamEnrollment tabla exam_enrollments: inscripción de un alumno a un llamado
type ExamEnrollment struct {
	ExamEnrollmentID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"exam_enrollment_id"`
	CallID           string   `gorm:"type:uuid;not null"                             json:"call_id"`
	StudentID        string   `gorm:"type:uuid;not null"                             json:"student_id"`
	Status           string   `gorm:"type:varchar(10);not null;default:'enrolled'"   json:"status"`
	Grade            *float64 `gorm:"type:numeric(4,2)"                              json:"grade,omitempty"`
	GradedBy         *string  `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	BaseModel

	Call    *ExamCall `gorm:"foreignKey:CallID;references:CallID"    json:"call,omitempty"`
	Student *User     `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

func (ExamEnrollment) TableName() string { return "exam_enrollments" }
