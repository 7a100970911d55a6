package model

// Subject tabla subjects
type Subject struct {
	SubjectID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	CareerID    string `gorm:"type:uuid;not null"                             json:"career_id"`
	Code        string `gorm:"type:varchar(20);not null"                      json:"code"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	YearLevel   int    `gorm:"type:smallint;not null"                         json:"year_level"`
	PeriodType  string `gorm:"type:varchar(10);not null"                      json:"period_type"` // annual | semester
	WeeklyHours int    `gorm:"type:smallint;not null;default:4"               json:"weekly_hours"`
	VersionedModel

	Career *Career `gorm:"foreignKey:CareerID;references:CareerID" json:"career,omitempty"`
}

func (Subject) TableName() string { return "subjects" }
