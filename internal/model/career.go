package model

// Career tabla careers
type Career struct {
	CareerID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"career_id"`
	Code        string `gorm:"type:varchar(20);not null"                      json:"code"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

func (Career) TableName() string { return "careers" }
