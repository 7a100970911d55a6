package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"gestion-academica/backend/internal/dto"
	"gestion-academica/backend/internal/model"
	pkgerrors "gestion-academica/backend/pkg/errors"
)

func setupTestGradeService() (GradeService, *mockStore, *academicFixture) {
	repo, store := newMockRepository()
	f := newAcademicFixture(store)
	return NewGradeService(repo, defaultThresholds, zap.NewNop()), store, f
}

func TestGradeUpsert_ProgressiveLoad(t *testing.T) {
	svc, store, f := setupTestGradeService()
	e := f.enroll(store, f.student, model.ConditionEnrolled)
	ctx := context.Background()

	// un solo parcial: la condición no cambia y no hay promedio
	resp, err := svc.Upsert(ctx, e.EnrollmentID, &dto.UpsertGradeRequest{Partial1: fp(8)}, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Upsert debería funcionar: %v", err)
	}
	if resp.Condition != model.ConditionEnrolled || resp.Grade.Average != nil {
		t.Errorf("esperado Inscripto sin promedio, obtenido %s / %v", resp.Condition, resp.Grade.Average)
	}
	if len(resp.Grade.Partials) != 2 {
		t.Errorf("un cuatrimestre muestra 2 parciales, obtenidos %d", len(resp.Grade.Partials))
	}

	// completa: promedio 7.5 con 85% de asistencia
	resp, err = svc.Upsert(ctx, e.EnrollmentID, &dto.UpsertGradeRequest{Partial2: fp(7), Attendance: fp(85)}, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Upsert debería funcionar: %v", err)
	}
	if resp.Condition != model.ConditionPromoted {
		t.Errorf("esperado Promocionado, obtenido %s", resp.Condition)
	}
	if resp.Grade.Average == nil || *resp.Grade.Average != 7.5 {
		t.Errorf("esperado promedio 7.5, obtenido %v", resp.Grade.Average)
	}
	if *resp.Grade.Partials[0] != 8 {
		t.Errorf("el parcial 1 debería conservarse, obtenido %v", *resp.Grade.Partials[0])
	}
	if store.enrollments[e.EnrollmentID].Condition != model.ConditionPromoted {
		t.Error("la condición de la inscripción debería actualizarse junto con la nota")
	}
	if store.grades[e.EnrollmentID].Version != 2 {
		t.Errorf("esperada versión 2, obtenida %d", store.grades[e.EnrollmentID].Version)
	}

	// baja de asistencia: queda libre
	resp, _ = svc.Upsert(ctx, e.EnrollmentID, &dto.UpsertGradeRequest{Attendance: fp(40)}, "admin-1", model.RoleAdmin)
	if resp.Condition != model.ConditionFree {
		t.Errorf("esperado Libre, obtenido %s", resp.Condition)
	}
}

func TestGradeUpsert_Validation(t *testing.T) {
	svc, store, f := setupTestGradeService()
	e := f.enroll(store, f.student, model.ConditionEnrolled)

	tests := []struct {
		name    string
		req     *dto.UpsertGradeRequest
		wantErr error
	}{
		{"parcial no exigido", &dto.UpsertGradeRequest{Partial3: fp(7)}, ErrGradePartialIndex},
		{"nota mayor a 10", &dto.UpsertGradeRequest{Partial1: fp(11)}, ErrGradeOutOfRange},
		{"asistencia negativa", &dto.UpsertGradeRequest{Attendance: fp(-1)}, ErrGradeOutOfRange},
		{"sin datos", &dto.UpsertGradeRequest{}, ErrGradeEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), e.EnrollmentID, tt.req, f.teacher.UserID, model.RoleTeacher)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("esperado %v, obtenido %v", tt.wantErr, err)
			}
		})
	}
}

func TestGradeUpsert_Permissions(t *testing.T) {
	svc, store, f := setupTestGradeService()
	e := f.enroll(store, f.student, model.ConditionEnrolled)
	other := createTestUser(store, "20999999", "x", model.RoleTeacher)

	req := &dto.UpsertGradeRequest{Partial1: fp(6)}
	if _, err := svc.Upsert(context.Background(), e.EnrollmentID, req, other.UserID, model.RoleTeacher); !errors.Is(err, ErrNoPermission) {
		t.Errorf("un docente ajeno no califica: esperado ErrNoPermission, obtenido %v", err)
	}
	if _, err := svc.Upsert(context.Background(), e.EnrollmentID, req, f.student.UserID, model.RoleStudent); !errors.Is(err, ErrNoPermission) {
		t.Errorf("un alumno no califica: esperado ErrNoPermission, obtenido %v", err)
	}
	if _, err := svc.Upsert(context.Background(), "nada", req, "admin-1", model.RoleAdmin); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Errorf("esperado ErrEnrollmentNotFound, obtenido %v", err)
	}

	store.enrollments[e.EnrollmentID].Status = model.EnrollmentDropped
	if _, err := svc.Upsert(context.Background(), e.EnrollmentID, req, "admin-1", model.RoleAdmin); !errors.Is(err, ErrEnrollmentNotActive) {
		t.Errorf("esperado ErrEnrollmentNotActive, obtenido %v", err)
	}
}

func TestGradeUpsert_StaleVersion(t *testing.T) {
	repo, store := newMockRepository()
	f := newAcademicFixture(store)
	e := f.enroll(store, f.student, model.ConditionEnrolled)
	store.grades[e.EnrollmentID] = &model.Grade{GradeID: "g-1", EnrollmentID: e.EnrollmentID, Partial1: fp(5), Version: 3}

	// otro docente guardó entre la lectura y la escritura
	repo.Grade = &bumpingGradeRepo{mockGradeRepo{store}}
	svc := NewGradeService(repo, defaultThresholds, zap.NewNop())

	_, err := svc.Upsert(context.Background(), e.EnrollmentID, &dto.UpsertGradeRequest{Partial2: fp(6)}, f.teacher.UserID, model.RoleTeacher)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("esperado ErrOptimisticLock, obtenido %v", err)
	}
	if store.enrollments[e.EnrollmentID].Condition != model.ConditionEnrolled {
		t.Error("la condición no debería cambiar si la nota no se guardó")
	}
}

func TestGradeUpsert_StoresRoundedValues(t *testing.T) {
	svc, store, f := setupTestGradeService()
	e := f.enroll(store, f.student, model.ConditionEnrolled)

	// 79.996 se guarda como 80.00: la condición debe salir de ese valor
	req := &dto.UpsertGradeRequest{Partial1: fp(9), Partial2: fp(9), Attendance: fp(79.996)}
	resp, err := svc.Upsert(context.Background(), e.EnrollmentID, req, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Upsert debería funcionar: %v", err)
	}

	saved := store.grades[e.EnrollmentID]
	if saved.Attendance == nil || *saved.Attendance != 80 {
		t.Fatalf("esperada asistencia 80, obtenida %v", saved.Attendance)
	}
	if resp.Condition != model.ConditionPromoted {
		t.Errorf("esperado Promocionado, obtenido %s", resp.Condition)
	}
	again, _ := DeriveCondition(saved.Partials()[:2], saved.Attendance, defaultThresholds)
	if again != saved.Condition {
		t.Errorf("la condición guardada %s no coincide con la derivada de los datos guardados %s", saved.Condition, again)
	}
}

// bumpingGradeRepo simula una escritura concurrente justo antes del Upsert
type bumpingGradeRepo struct{ mockGradeRepo }

func (r *bumpingGradeRepo) Upsert(ctx context.Context, grade *model.Grade) error {
	r.s.grades[grade.EnrollmentID].Version++
	return r.mockGradeRepo.Upsert(ctx, grade)
}

func TestGradeSheet(t *testing.T) {
	svc, store, f := setupTestGradeService()
	e := f.enroll(store, f.student, model.ConditionRegular)
	store.grades[e.EnrollmentID] = &model.Grade{
		GradeID: "g-1", EnrollmentID: e.EnrollmentID, Partial1: fp(5), Partial2: fp(6), Attendance: fp(70),
		Average: fp(5.5), Condition: model.ConditionRegular, Version: 1,
	}
	f.enroll(store, f.addStudent(store, "41000000", "Acosta"), model.ConditionEnrolled)

	sheet, err := svc.Sheet(context.Background(), f.sc.SubjectCommissionID, f.teacher.UserID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("Sheet debería funcionar: %v", err)
	}
	if sheet.SubjectName != "Programación I" || sheet.CommissionName != "1A" || sheet.PartialsRequired != 2 {
		t.Errorf("encabezado inesperado: %+v", sheet)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("esperadas 2 filas, obtenidas %d", len(sheet.Rows))
	}
	if sheet.Rows[0].Grade != nil {
		t.Error("el alumno sin notas no debería tener calificación")
	}
	if sheet.Rows[1].Grade == nil || *sheet.Rows[1].Grade.Average != 5.5 {
		t.Errorf("esperado promedio 5.5, obtenido %+v", sheet.Rows[1].Grade)
	}

	if _, err := svc.Sheet(context.Background(), f.sc.SubjectCommissionID, f.student.UserID, model.RoleStudent); !errors.Is(err, ErrNoPermission) {
		t.Errorf("esperado ErrNoPermission, obtenido %v", err)
	}
}
