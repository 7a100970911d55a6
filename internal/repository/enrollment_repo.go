package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gestion-academica/backend/internal/model"
)

// EnrollmentRepository acceso a inscripciones a cursada
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) error
	BatchCreate(ctx context.Context, enrollments []model.Enrollment, chunk int) error
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	GetByStudentAndSubjectCommission(ctx context.Context, studentID, subjectCommissionID string) (*model.Enrollment, error)
	FindActiveForSubjectInPeriod(ctx context.Context, studentID, subjectID, periodID string) (*model.Enrollment, error)
	CountActiveBySubjectCommission(ctx context.Context, subjectCommissionID string) (int64, error)
	LockSubjectCommission(ctx context.Context, subjectCommissionID string) error
	LockStudentSubject(ctx context.Context, studentID, subjectID, periodID string) error
	ListByStudent(ctx context.Context, studentID, periodID string) ([]model.Enrollment, error)
	ListBySubjectCommission(ctx context.Context, subjectCommissionID string) ([]model.Enrollment, error)
	ListConditionsForSubject(ctx context.Context, studentID, subjectID string) ([]string, error)
	ListExistingKeys(ctx context.Context, subjectCommissionIDs []string) (map[string]bool, error)
	UpdateCondition(ctx context.Context, id, condition, updatedBy string) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	Reactivate(ctx context.Context, id, updatedBy string) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo crea un EnrollmentRepository
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

// EnrollmentKey clave natural alumno + materia-comisión
func EnrollmentKey(studentID, subjectCommissionID string) string {
	return studentID + "|" + subjectCommissionID
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.Enrollment) error {
	return r.db.WithContext(ctx).
		Omit("Student", "SubjectCommission", "Grade").
		Create(enrollment).Error
}

func (r *enrollmentRepo) BatchCreate(ctx context.Context, enrollments []model.Enrollment, chunk int) error {
	if len(enrollments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit("Student", "SubjectCommission", "Grade").
		CreateInBatches(&enrollments, chunk).Error
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("SubjectCommission.Subject").
		Preload("SubjectCommission.Commission.Period").
		Preload("Grade").
		Where("enrollment_id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// GetByStudentAndSubjectCommission cualquier inscripción (activa o dada de baja) del par
func (r *enrollmentRepo) GetByStudentAndSubjectCommission(ctx context.Context, studentID, subjectCommissionID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND subject_commission_id = ?", studentID, subjectCommissionID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindActiveForSubjectInPeriod inscripción activa del alumno a cualquier comisión de la materia en el período
func (r *enrollmentRepo) FindActiveForSubjectInPeriod(ctx context.Context, studentID, subjectID, periodID string) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.db.WithContext(ctx).
		Joins("JOIN subject_commissions sc ON sc.subject_commission_id = enrollments.subject_commission_id AND sc.deleted_at IS NULL").
		Joins("JOIN commissions c ON c.commission_id = sc.commission_id AND c.deleted_at IS NULL").
		Where("enrollments.student_id = ? AND enrollments.status = ?", studentID, model.EnrollmentActive).
		Where("sc.subject_id = ? AND c.period_id = ?", subjectID, periodID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) CountActiveBySubjectCommission(ctx context.Context, subjectCommissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("subject_commission_id = ? AND status = ?", subjectCommissionID, model.EnrollmentActive).
		Count(&count).Error
	return count, err
}

// LockSubjectCommission bloquea la fila de la materia-comisión hasta el fin de la transacción
func (r *enrollmentRepo) LockSubjectCommission(ctx context.Context, subjectCommissionID string) error {
	var sc model.SubjectCommission
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("subject_commission_id").
		Where("subject_commission_id = ?", subjectCommissionID).
		First(&sc).Error
}

// LockStudentSubject lock consultivo de transacción sobre alumno + materia + período.
// Serializa inscripciones del mismo alumno a comisiones distintas de la misma materia.
func (r *enrollmentRepo) LockStudentSubject(ctx context.Context, studentID, subjectID, periodID string) error {
	key := studentID + "|" + subjectID + "|" + periodID
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key).Error
}

// ListByStudent cursadas del alumno; periodID vacío lista todas
func (r *enrollmentRepo) ListByStudent(ctx context.Context, studentID, periodID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	db := r.db.WithContext(ctx).
		Preload("SubjectCommission.Subject").
		Preload("SubjectCommission.Commission.Period").
		Preload("SubjectCommission.Teacher").
		Preload("Grade").
		Where("enrollments.student_id = ?", studentID)
	if periodID != "" {
		db = db.
			Joins("JOIN subject_commissions sc ON sc.subject_commission_id = enrollments.subject_commission_id").
			Joins("JOIN commissions c ON c.commission_id = sc.commission_id").
			Where("c.period_id = ?", periodID)
	}
	err := db.Order("enrollments.enrolled_at DESC").Find(&enrollments).Error
	return enrollments, err
}

// ListBySubjectCommission planilla de alumnos activos, ordenada por apellido
func (r *enrollmentRepo) ListBySubjectCommission(ctx context.Context, subjectCommissionID string) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Grade").
		Joins("JOIN users u ON u.user_id = enrollments.student_id").
		Where("enrollments.subject_commission_id = ? AND enrollments.status = ?", subjectCommissionID, model.EnrollmentActive).
		Order("u.last_name ASC, u.name ASC").
		Find(&enrollments).Error
	return enrollments, err
}

// ListConditionsForSubject condiciones de todas las cursadas activas del alumno en la materia
func (r *enrollmentRepo) ListConditionsForSubject(ctx context.Context, studentID, subjectID string) ([]string, error) {
	var conditions []string
	err := r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Joins("JOIN subject_commissions sc ON sc.subject_commission_id = enrollments.subject_commission_id").
		Where("enrollments.student_id = ? AND enrollments.status = ? AND sc.subject_id = ?",
			studentID, model.EnrollmentActive, subjectID).
		Pluck("enrollments.condition", &conditions).Error
	return conditions, err
}

// ListExistingKeys claves alumno|materia-comisión ya inscriptas
func (r *enrollmentRepo) ListExistingKeys(ctx context.Context, subjectCommissionIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(subjectCommissionIDs) == 0 {
		return result, nil
	}
	var rows []model.Enrollment
	if err := r.db.WithContext(ctx).
		Select("student_id", "subject_commission_id").
		Where("subject_commission_id IN ?", subjectCommissionIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, e := range rows {
		result[EnrollmentKey(e.StudentID, e.SubjectCommissionID)] = true
	}
	return result, nil
}

func (r *enrollmentRepo) UpdateCondition(ctx context.Context, id, condition, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Updates(map[string]interface{}{
			"condition":  condition,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

func (r *enrollmentRepo) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// Reactivate vuelve a activar una inscripción dada de baja con la condición inicial
func (r *enrollmentRepo) Reactivate(ctx context.Context, id, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Enrollment{}).
		Where("enrollment_id = ? AND status = ?", id, model.EnrollmentDropped).
		Updates(map[string]interface{}{
			"status":      model.EnrollmentActive,
			"condition":   model.ConditionEnrolled,
			"enrolled_at": gorm.Expr("NOW()"),
			"updated_by":  updatedBy,
			"version":     gorm.Expr("version + 1"),
		}).Error
}
