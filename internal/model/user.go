package model

// User tabla users
type User struct {
	UserID             string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name               string  `gorm:"type:varchar(100);not null"                     json:"name"`
	LastName           string  `gorm:"type:varchar(100);not null"                     json:"last_name"`
	DNI                string  `gorm:"column:dni;type:varchar(15);not null"           json:"dni"`
	Email              string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash       string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role               string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	CareerID           *string `gorm:"type:uuid"                                      json:"career_id,omitempty"`
	MustChangePassword bool    `gorm:"not null;default:false"                         json:"must_change_password"`
	VersionedModel

	Career *Career `gorm:"foreignKey:CareerID;references:CareerID" json:"career,omitempty"`
}

func (User) TableName() string { return "users" }

// FullName "Apellido, Nombre"
func (u *User) FullName() string {
	return u.LastName + ", " + u.Name
}
