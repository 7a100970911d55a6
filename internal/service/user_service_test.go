package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
)

func setupTestUserService() (UserService, *mockStore) {
	repo, store := newMockRepository()
	return NewUserService(repo, zap.NewNop()), store
}

func addCareer(store *mockStore, code, name string) *model.Career {
	c := &model.Career{CareerID: "career-" + code, Code: code, Name: name, IsActive: true}
	store.careers[c.CareerID] = c
	return c
}

func strPtr(s string) *string { return &s }

// buildImportFile arma un Excel en memoria con encabezado y filas
func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("no se pudo escribir la fila %d: %v", i+1, err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("no se pudo generar el Excel: %v", err)
	}
	return buf
}

func TestCreateUser(t *testing.T) {
	svc, store := setupTestUserService()
	career := addCareer(store, "TSDS", "Tecnicatura en Desarrollo de Software")

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:     "Lucía",
		LastName: "Gómez",
		DNI:      "40123456",
		Email:    "Lucia.Gomez@Mail.com",
		Role:     model.RoleStudent,
		CareerID: strPtr(career.CareerID),
	}, "admin-1")
	if err != nil {
		t.Fatalf("CreateUser debería funcionar: %v", err)
	}
	if resp.TempPassword != "Ga123456" {
		t.Errorf("esperada contraseña inicial Ga123456, obtenida=%s", resp.TempPassword)
	}
	if resp.User.Email != "lucia.gomez@mail.com" {
		t.Errorf("el email debería normalizarse, obtenido=%s", resp.User.Email)
	}
	if !resp.User.MustChangePassword {
		t.Error("un usuario nuevo debe cambiar la contraseña")
	}
	if resp.User.Career == nil || resp.User.Career.Code != "TSDS" {
		t.Errorf("esperada carrera TSDS, obtenida=%+v", resp.User.Career)
	}
}

func TestCreateUser_Errors(t *testing.T) {
	svc, store := setupTestUserService()
	createTestUser(store, "40123456", "x", model.RoleStudent)

	tests := []struct {
		name    string
		req     *dto.CreateUserRequest
		wantErr error
	}{
		{
			"DNI repetido",
			&dto.CreateUserRequest{Name: "A", LastName: "B", DNI: "40123456", Email: "nuevo@mail.com", Role: model.RoleTeacher},
			ErrDNIExists,
		},
		{
			"email repetido",
			&dto.CreateUserRequest{Name: "A", LastName: "B", DNI: "40999999", Email: "40123456@instituto.edu.ar", Role: model.RoleTeacher},
			ErrEmailExists,
		},
		{
			"alumno sin carrera",
			&dto.CreateUserRequest{Name: "A", LastName: "B", DNI: "40999999", Email: "otro@mail.com", Role: model.RoleStudent},
			ErrStudentNeedsCareer,
		},
		{
			"carrera inexistente",
			&dto.CreateUserRequest{Name: "A", LastName: "B", DNI: "40999999", Email: "otro@mail.com", Role: model.RoleStudent, CareerID: strPtr("nada")},
			ErrCareerNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(context.Background(), tt.req, "admin-1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("esperado %v, obtenido %v", tt.wantErr, err)
			}
		})
	}
}

func TestUpdateUser_Permissions(t *testing.T) {
	svc, store := setupTestUserService()
	user := createTestUser(store, "40123456", "x", model.RoleStudent)
	other := createTestUser(store, "40999999", "x", model.RoleStudent)

	// un alumno no edita a otro
	if _, err := svc.Update(context.Background(), other.UserID, &dto.UpdateUserRequest{Name: strPtr("Zoe")},
		user.UserID, model.RoleStudent); !errors.Is(err, ErrNoPermission) {
		t.Errorf("esperado ErrNoPermission, obtenido %v", err)
	}

	// ni cambia su propia carrera
	if _, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{CareerID: strPtr("career-X")},
		user.UserID, model.RoleStudent); !errors.Is(err, ErrNoPermission) {
		t.Errorf("esperado ErrNoPermission al cambiar carrera, obtenido %v", err)
	}

	resp, err := svc.Update(context.Background(), user.UserID, &dto.UpdateUserRequest{Name: strPtr("Zoe")},
		user.UserID, model.RoleStudent)
	if err != nil {
		t.Fatalf("editar el propio perfil debería funcionar: %v", err)
	}
	if resp.Name != "Zoe" {
		t.Errorf("esperado nombre Zoe, obtenido %s", resp.Name)
	}
}

func TestAssignRoleAndDelete_Self(t *testing.T) {
	svc, store := setupTestUserService()
	admin := createTestUser(store, "20111111", "x", model.RoleAdmin)
	teacher := createTestUser(store, "20222222", "x", model.RoleTeacher)

	if err := svc.AssignRole(context.Background(), admin.UserID, &dto.AssignRoleRequest{Role: model.RoleTeacher},
		admin.UserID); !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("esperado ErrUserSelfRoleChange, obtenido %v", err)
	}
	if err := svc.AssignRole(context.Background(), teacher.UserID, &dto.AssignRoleRequest{Role: model.RoleStudent},
		admin.UserID); !errors.Is(err, ErrStudentNeedsCareer) {
		t.Errorf("esperado ErrStudentNeedsCareer, obtenido %v", err)
	}
	if err := svc.AssignRole(context.Background(), teacher.UserID, &dto.AssignRoleRequest{Role: model.RoleSecretary},
		admin.UserID); err != nil {
		t.Fatalf("AssignRole debería funcionar: %v", err)
	}
	if store.users[teacher.UserID].Role != model.RoleSecretary {
		t.Error("el rol debería quedar en secretary")
	}

	if err := svc.Delete(context.Background(), admin.UserID, admin.UserID); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("esperado ErrUserSelfDelete, obtenido %v", err)
	}
	if err := svc.Delete(context.Background(), teacher.UserID, admin.UserID); err != nil {
		t.Fatalf("Delete debería funcionar: %v", err)
	}
	if _, ok := store.users[teacher.UserID]; ok {
		t.Error("el usuario debería estar eliminado")
	}
}

func TestResetPassword(t *testing.T) {
	svc, store := setupTestUserService()
	user := createTestUser(store, "40123456", "x", model.RoleStudent)

	resp, err := svc.ResetPassword(context.Background(), user.UserID, "admin-1")
	if err != nil {
		t.Fatalf("ResetPassword debería funcionar: %v", err)
	}
	if len(resp.TempPassword) != 10 {
		t.Errorf("esperada contraseña de 10 caracteres, obtenida=%q", resp.TempPassword)
	}
	if !store.users[user.UserID].MustChangePassword {
		t.Error("tras el blanqueo se debe exigir cambio de contraseña")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	for i := 0; i < 20; i++ {
		pw, err := generateTempPassword(10)
		if err != nil {
			t.Fatalf("generateTempPassword falló: %v", err)
		}
		hasLetter, hasDigit := false, false
		for _, r := range pw {
			if r >= '0' && r <= '9' {
				hasDigit = true
			} else {
				hasLetter = true
			}
		}
		if !hasLetter || !hasDigit {
			t.Errorf("la contraseña %q debería tener letras y dígitos", pw)
		}
	}
}

func TestParseImportFile(t *testing.T) {
	svc, _ := setupTestUserService()

	buf := buildImportFile(t, [][]interface{}{
		{"Apellido", "Nombre", "DNI", "Correo", "Carrera"},
		{"Gómez", "Lucía", "40.123.456", "LUCIA@MAIL.COM", "TSDS"},
		{"", "", "", "", ""},
		{"Ruiz", "Tomás", "41222333", "tomas@mail.com", "tsds"},
	})

	rows, err := svc.ParseImportFile(buf)
	if err != nil {
		t.Fatalf("ParseImportFile debería funcionar: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("esperadas 2 filas (se omite la vacía), obtenidas %d", len(rows))
	}
	if rows[0].DNI != "40123456" || rows[0].Email != "lucia@mail.com" || rows[0].Row != 2 {
		t.Errorf("fila mal interpretada: %+v", rows[0])
	}
	if rows[1].Row != 4 {
		t.Errorf("esperado número de fila 4, obtenido %d", rows[1].Row)
	}
}

func TestParseImportFile_BadHeader(t *testing.T) {
	svc, _ := setupTestUserService()

	buf := buildImportFile(t, [][]interface{}{
		{"Nombre", "DNI"},
		{"Lucía", "40123456"},
	})
	if _, err := svc.ParseImportFile(buf); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("esperado ErrImportBadHeader, obtenido %v", err)
	}

	if _, err := svc.ParseImportFile(bytes.NewBufferString("no es un excel")); !errors.Is(err, ErrImportBadFile) {
		t.Errorf("esperado ErrImportBadFile, obtenido %v", err)
	}
}

func TestImportUsers_PartialFailures(t *testing.T) {
	svc, store := setupTestUserService()
	addCareer(store, "TSDS", "Tecnicatura en Desarrollo de Software")
	createTestUser(store, "39000000", "x", model.RoleStudent)

	rows := []ImportUserRow{
		{Row: 2, Name: "Lucía", LastName: "Gómez", DNI: "40123456", Email: "lucia@mail.com", Career: "TSDS"},
		{Row: 3, Name: "Tomás", LastName: "Ruiz", DNI: "40123456", Email: "tomas@mail.com", Career: "TSDS"},
		{Row: 4, Name: "Ema", LastName: "Sosa", DNI: "12ab", Email: "ema@mail.com", Career: "TSDS"},
		{Row: 5, Name: "Leo", LastName: "Paz", DNI: "41000000", Email: "leo@mail.com", Career: "Medicina"},
		{Row: 6, Name: "Ian", LastName: "Díaz", DNI: "39000000", Email: "ian@mail.com", Career: "TSDS"},
		{Row: 7, Name: "Sol", LastName: "Vera", DNI: "42000000", Email: "sol@mail.com", Career: "tecnicatura en desarrollo de software"},
	}

	resp, err := svc.ImportUsers(context.Background(), rows, "admin-1")
	if err != nil {
		t.Fatalf("ImportUsers debería funcionar: %v", err)
	}
	if resp.Total != 6 || resp.Success != 2 || resp.Failed != 4 {
		t.Errorf("esperado total=6 ok=2 fallidas=4, obtenido %+v", resp)
	}

	failedRows := make(map[int]bool)
	for _, e := range resp.Errors {
		failedRows[e.Row] = true
	}
	for _, r := range []int{3, 4, 5, 6} {
		if !failedRows[r] {
			t.Errorf("la fila %d debería figurar con error", r)
		}
	}

	imported, _, _ := (&mockUserRepo{store}).ListWithFilters(context.Background(), nil, 0, 100)
	if len(imported) != 3 {
		t.Errorf("esperados 3 usuarios en total, obtenidos %d", len(imported))
	}
	for _, u := range imported {
		if u.DNI == "42000000" && (u.Role != model.RoleStudent || !u.MustChangePassword) {
			t.Errorf("el alumno importado debería ser student y cambiar clave: %+v", u)
		}
	}
}
