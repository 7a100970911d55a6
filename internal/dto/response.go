package dto

// ── autenticación ──

// TokenResponse par de tokens
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // segundos de vida del access token
	User         UserResponse `json:"user"`
}

// ── usuarios ──

// UserResponse datos públicos del usuario
type UserResponse struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	LastName           string       `json:"last_name"`
	DNI                string       `json:"dni"`
	Email              string       `json:"email"`
	Role               string       `json:"role"`
	Career             *CareerBrief `json:"career,omitempty"`
	MustChangePassword bool         `json:"must_change_password"`
	CreatedAt          string       `json:"created_at,omitempty"`
}

// CareerBrief referencia corta a una carrera
type CareerBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// UserBrief referencia corta a un usuario
type UserBrief struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	DNI      string `json:"dni,omitempty"`
}

// ── paginación ──

// PaginationRequest parámetros comunes de paginación
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage página (1 por defecto)
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize tamaño de página (20 por defecto)
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset desplazamiento
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
