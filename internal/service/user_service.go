package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	"gestion-academica/backend/internal/repository"
)

// ── errores del módulo de usuarios ──

var (
	ErrDNIExists          = errors.New("ya existe un usuario con ese DNI")
	ErrEmailExists        = errors.New("ya existe un usuario con ese email")
	ErrUserSelfRoleChange = errors.New("no puede cambiar su propio rol")
	ErrUserSelfDelete     = errors.New("no puede eliminarse a sí mismo")
	ErrStudentNeedsCareer = errors.New("un alumno debe tener carrera asignada")
	ErrNoPermission       = errors.New("no tiene permiso para esta operación")
)

// UserService gestión de usuarios
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.CreateUserResponse, error)
	ParseImportFile(reader io.Reader) ([]ImportUserRow, error)
	ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
}

// ImportUserRow fila del Excel de alumnos
type ImportUserRow struct {
	Row      int
	Name     string
	LastName string
	DNI      string
	Email    string
	Career   string // código o nombre
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService crea el UserService
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// initialPassword contraseña inicial: "Ga" + últimos 6 dígitos del DNI
func initialPassword(dni string) string {
	if len(dni) > 6 {
		dni = dni[len(dni)-6:]
	}
	return "Ga" + dni
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error) {
	if _, err := s.repo.User.GetByDNI(ctx, req.DNI); err == nil {
		return nil, ErrDNIExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if _, err := s.repo.User.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	careerID, err := s.resolveCareer(ctx, req.Role, req.CareerID)
	if err != nil {
		return nil, err
	}

	tempPassword := initialPassword(req.DNI)
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("error al generar hash", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:               req.Name,
		LastName:           req.LastName,
		DNI:                req.DNI,
		Email:              strings.ToLower(req.Email),
		PasswordHash:       string(hash),
		Role:               req.Role,
		CareerID:           careerID,
		MustChangePassword: true,
	}
	user.SetCreator(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("error al crear usuario", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return &dto.CreateUserResponse{
		User:         toUserResponse(created),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filters := &repository.UserListFilters{
		Role:     req.Role,
		CareerID: req.CareerID,
		Keyword:  req.Keyword,
	}

	users, total, err := s.repo.User.ListWithFilters(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("error al listar usuarios", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// fuera de administración solo se edita el propio perfil y sin cambiar de carrera
	if callerRole != model.RoleAdmin {
		if callerID != id || req.CareerID != nil {
			return nil, ErrNoPermission
		}
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil {
		existing, err := s.repo.User.GetByEmail(ctx, *req.Email)
		if err == nil && existing.UserID != id {
			return nil, ErrEmailExists
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = strings.ToLower(*req.Email)
	}
	if req.CareerID != nil {
		if _, err := s.repo.Career.GetByID(ctx, *req.CareerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCareerNotFound
			}
			return nil, err
		}
		user.CareerID = req.CareerID
		user.Career = nil
	}

	user.SetUpdater(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("error al actualizar usuario", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("error al eliminar usuario", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("id", id), zap.Error(err))
		return err
	}

	if req.Role == model.RoleStudent && user.CareerID == nil {
		return ErrStudentNeedsCareer
	}

	user.Role = req.Role
	user.SetUpdater(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("error al asignar rol", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.CreateUserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("error al buscar usuario", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("error al generar contraseña temporal", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("error al generar hash", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	user.SetUpdater(callerID)

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("error al blanquear contraseña", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.CreateUserResponse{User: toUserResponse(user), TempPassword: tempPassword}, nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 500

var (
	ErrImportNoData      = errors.New("el archivo no tiene filas de datos (la primera fila es el encabezado)")
	ErrImportTooManyRows = fmt.Errorf("el archivo supera el máximo de %d filas", maxImportRows)
	ErrImportBadHeader   = errors.New("faltan columnas obligatorias (nombre/apellido/dni/email/carrera)")
	ErrImportBadFile     = errors.New("no se pudo leer el archivo Excel")
)

// ParseImportFile lee la primera hoja del Excel de alumnos
func (s *userService) ParseImportFile(reader io.Reader) ([]ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadFile, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	col := parseHeaderIndex(excelRows[0])
	for _, idx := range col {
		if idx < 0 {
			return nil, ErrImportBadHeader
		}
	}

	cellAt := func(row []string, key string) string {
		if idx := col[key]; idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportUserRow{
			Row:      i + 1,
			Name:     cellAt(row, "nombre"),
			LastName: cellAt(row, "apellido"),
			DNI:      strings.ReplaceAll(cellAt(row, "dni"), ".", ""),
			Email:    strings.ToLower(cellAt(row, "email")),
			Career:   cellAt(row, "carrera"),
		}
		if item.Name == "" && item.LastName == "" && item.DNI == "" && item.Email == "" && item.Career == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex columna -> índice; acepta encabezados en castellano o inglés
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"nombre":   -1,
		"apellido": -1,
		"dni":      -1,
		"email":    -1,
		"carrera":  -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "nombre", "name":
			idx["nombre"] = i
		case "apellido", "last_name":
			idx["apellido"] = i
		case "dni", "documento":
			idx["dni"] = i
		case "email", "correo":
			idx["email"] = i
		case "carrera", "career":
			idx["carrera"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

// ImportUsers valida cada fila y luego inserta en una transacción todas las válidas
func (s *userService) ImportUsers(ctx context.Context, rows []ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	careers, err := s.buildCareerMap(ctx)
	if err != nil {
		s.logger.Error("error al cargar carreras", zap.Error(err))
		return nil, err
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	// primera fase: validación sin escrituras
	type validatedRow struct {
		row    ImportUserRow
		career *model.Career
		hash   []byte
	}
	var valid []validatedRow
	seenDNI := make(map[string]int)
	seenEmail := make(map[string]int)

	for _, row := range rows {
		if row.Name == "" || row.LastName == "" || row.DNI == "" || row.Email == "" || row.Career == "" {
			fail(row.Row, "faltan datos obligatorios")
			continue
		}
		if !isDigits(row.DNI) || len(row.DNI) < 7 || len(row.DNI) > 10 {
			fail(row.Row, fmt.Sprintf("DNI inválido: %s", row.DNI))
			continue
		}
		if !strings.Contains(row.Email, "@") {
			fail(row.Row, fmt.Sprintf("email inválido: %s", row.Email))
			continue
		}
		career, ok := careers[strings.ToLower(row.Career)]
		if !ok {
			fail(row.Row, fmt.Sprintf("carrera inexistente: %s", row.Career))
			continue
		}
		if prev, dup := seenDNI[row.DNI]; dup {
			fail(row.Row, fmt.Sprintf("DNI repetido en la fila %d", prev))
			continue
		}
		if prev, dup := seenEmail[row.Email]; dup {
			fail(row.Row, fmt.Sprintf("email repetido en la fila %d", prev))
			continue
		}
		if _, err := s.repo.User.GetByDNI(ctx, row.DNI); err == nil {
			fail(row.Row, fmt.Sprintf("el DNI ya está registrado: %s", row.DNI))
			continue
		}
		if _, err := s.repo.User.GetByEmail(ctx, row.Email); err == nil {
			fail(row.Row, fmt.Sprintf("el email ya está registrado: %s", row.Email))
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword(row.DNI)), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "no se pudo generar la contraseña")
			continue
		}

		seenDNI[row.DNI] = row.Row
		seenEmail[row.Email] = row.Row
		valid = append(valid, validatedRow{row: row, career: career, hash: hash})
	}

	if len(valid) == 0 {
		return resp, nil
	}

	// segunda fase: todo o nada
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("error al abrir transacción", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	for _, vr := range valid {
		careerID := vr.career.CareerID
		user := &model.User{
			Name:               vr.row.Name,
			LastName:           vr.row.LastName,
			DNI:                vr.row.DNI,
			Email:              vr.row.Email,
			PasswordHash:       string(vr.hash),
			Role:               model.RoleStudent,
			CareerID:           &careerID,
			MustChangePassword: true,
		}
		user.SetCreator(callerID)

		if err := txRepo.User.Create(ctx, user); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("importación revertida", zap.Int("row", vr.row.Row), zap.Error(err))
			return nil, fmt.Errorf("fila %d: no se pudo guardar, se revirtió la importación: %w", vr.row.Row, err)
		}
		resp.Success++
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("error al confirmar transacción", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("importación de alumnos",
		zap.Int("total", resp.Total), zap.Int("ok", resp.Success), zap.Int("fallidas", resp.Failed))
	return resp, nil
}

// ── auxiliares ──

// resolveCareer valida la carrera del usuario; obligatoria para alumnos
func (s *userService) resolveCareer(ctx context.Context, role string, careerID *string) (*string, error) {
	if careerID == nil || *careerID == "" {
		if role == model.RoleStudent {
			return nil, ErrStudentNeedsCareer
		}
		return nil, nil
	}
	if _, err := s.repo.Career.GetByID(ctx, *careerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCareerNotFound
		}
		return nil, err
	}
	return careerID, nil
}

// buildCareerMap código o nombre (minúsculas) -> carrera
func (s *userService) buildCareerMap(ctx context.Context) (map[string]*model.Career, error) {
	careers, err := s.repo.Career.List(ctx, true)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Career, len(careers)*2)
	for i := range careers {
		m[strings.ToLower(careers[i].Code)] = &careers[i]
		m[strings.ToLower(careers[i].Name)] = &careers[i]
	}
	return m, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// generateTempPassword contraseña aleatoria con al menos una letra y un dígito
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}
