package model

import "time"

// Enrollment tabla enrollments: inscripción de un alumno a una materia-comisión
type Enrollment struct {
	EnrollmentID        string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"enrollment_id"`
	StudentID           string    `gorm:"type:uuid;not null"                             json:"student_id"`
	SubjectCommissionID string    `gorm:"type:uuid;not null"                             json:"subject_commission_id"`
	Status              string    `gorm:"type:varchar(10);not null;default:'active'"     json:"status"`
	Condition           string    `gorm:"type:varchar(15);not null;default:'Inscripto'"  json:"condition"`
	EnrolledAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"enrolled_at"`
	VersionedModel

	Student           *User              `gorm:"foreignKey:StudentID;references:UserID"                         json:"student,omitempty"`
	SubjectCommission *SubjectCommission `gorm:"foreignKey:SubjectCommissionID;references:SubjectCommissionID" json:"subject_commission,omitempty"`
	Grade             *Grade             `gorm:"foreignKey:EnrollmentID;references:EnrollmentID"               json:"grade,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }

// Grade tabla grades: una fila por inscripción (upsert)
type Grade struct {
	GradeID      string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grade_id"`
	EnrollmentID string   `gorm:"type:uuid;not null;uniqueIndex"                 json:"enrollment_id"`
	Partial1     *float64 `gorm:"column:partial_1;type:numeric(4,2)"             json:"partial_1"`
	Partial2     *float64 `gorm:"column:partial_2;type:numeric(4,2)"             json:"partial_2"`
	Partial3     *float64 `gorm:"column:partial_3;type:numeric(4,2)"             json:"partial_3"`
	Partial4     *float64 `gorm:"column:partial_4;type:numeric(4,2)"             json:"partial_4"`
	Attendance   *float64 `gorm:"type:numeric(5,2)"                              json:"attendance"`
	Average      *float64 `gorm:"type:numeric(4,2)"                              json:"average"`
	Condition    string   `gorm:"type:varchar(15);not null;default:'Inscripto'"  json:"condition"`
	GradedBy     *string  `gorm:"type:uuid"                                      json:"graded_by,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

func (Grade) TableName() string { return "grades" }

// Partials devuelve los cuatro parciales en orden
func (g *Grade) Partials() []*float64 {
	return []*float64{g.Partial1, g.Partial2, g.Partial3, g.Partial4}
}

// SetPartial asigna el parcial n (1..4)
func (g *Grade) SetPartial(n int, v *float64) {
	switch n {
	case 1:
		g.Partial1 = v
	case 2:
		g.Partial2 = v
	case 3:
		g.Partial3 = v
	case 4:
		g.Partial4 = v
	}
}
