package model

// Commission tabla commissions: agrupamiento de alumnos dentro de un período
type Commission struct {
	CommissionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"commission_id"`
	PeriodID     string `gorm:"type:uuid;not null"                             json:"period_id"`
	Name         string `gorm:"type:varchar(50);not null"                      json:"name"`
	Shift        string `gorm:"type:varchar(10);not null"                      json:"shift"` // morning | afternoon | evening
	Capacity     int    `gorm:"not null"                                       json:"capacity"`
	VersionedModel

	Period *AcademicPeriod `gorm:"foreignKey:PeriodID;references:PeriodID" json:"period,omitempty"`
}

func (Commission) TableName() string { return "commissions" }

// SubjectCommission tabla subject_commissions: materia dictada en una comisión por un docente
type SubjectCommission struct {
	SubjectCommissionID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_commission_id"`
	SubjectID           string `gorm:"type:uuid;not null"                             json:"subject_id"`
	CommissionID        string `gorm:"type:uuid;not null"                             json:"commission_id"`
	TeacherID           string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	VersionedModel

	Subject    *Subject    `gorm:"foreignKey:SubjectID;references:SubjectID"       json:"subject,omitempty"`
	Commission *Commission `gorm:"foreignKey:CommissionID;references:CommissionID" json:"commission,omitempty"`
	Teacher    *User       `gorm:"foreignKey:TeacherID;references:UserID"          json:"teacher,omitempty"`
}

func (SubjectCommission) TableName() string { return "subject_commissions" }
