package dto

// ── usuarios ──

// UserListRequest filtros del listado
type UserListRequest struct {
	PaginationRequest
	Role     string `form:"role"      binding:"omitempty,oneof=admin secretary teacher student"`
	CareerID string `form:"career_id" binding:"omitempty,uuid"`
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
}

// CreateUserRequest alta de usuario
type CreateUserRequest struct {
	Name     string  `json:"name"      binding:"required,min=2,max=100"`
	LastName string  `json:"last_name" binding:"required,min=2,max=100"`
	DNI      string  `json:"dni"       binding:"required,numeric,min=7,max=10"`
	Email    string  `json:"email"     binding:"required,email"`
	Role     string  `json:"role"      binding:"required,oneof=admin secretary teacher student"`
	CareerID *string `json:"career_id" binding:"omitempty,uuid"`
}

// CreateUserResponse alta con contraseña temporal
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// UpdateUserRequest modificación parcial
type UpdateUserRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	LastName *string `json:"last_name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	CareerID *string `json:"career_id" binding:"omitempty,uuid"`
}

// AssignRoleRequest cambio de rol
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin secretary teacher student"`
}

// ImportUserResponse resultado de la importación de alumnos
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError error de una fila
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
