package repository

import (
	"context"

	"gorm.io/gorm"

	"gestion-academica/backend/internal/model"
)

// ExamEnrollmentRepository acceso a inscripciones a examen final
type ExamEnrollmentRepository interface {
	Create(ctx context.Context, ee *model.ExamEnrollment) error
	GetByID(ctx context.Context, id string) (*model.ExamEnrollment, error)
	GetActive(ctx context.Context, callID, studentID string) (*model.ExamEnrollment, error)
	CountActiveByCall(ctx context.Context, callID string) (int64, error)
	CountActiveByCalls(ctx context.Context, callIDs []string) (map[string]int64, error)
	ActiveCallIDsForStudent(ctx context.Context, studentID string, callIDs []string) (map[string]bool, error)
	ListByCall(ctx context.Context, callID string) ([]model.ExamEnrollment, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.ExamEnrollment, error)
	HasPassedFinal(ctx context.Context, studentID, subjectID string, passingGrade float64) (bool, error)
	Update(ctx context.Context, ee *model.ExamEnrollment) error
}

type examEnrollmentRepo struct {
	db *gorm.DB
}

// NewExamEnrollmentRepo crea un ExamEnrollmentRepository
func NewExamEnrollmentRepo(db *gorm.DB) ExamEnrollmentRepository {
	return &examEnrollmentRepo{db: db}
}

func (r *examEnrollmentRepo) Create(ctx context.Context, ee *model.ExamEnrollment) error {
	return r.db.WithContext(ctx).Omit("Call", "Student").Create(ee).Error
}

func (r *examEnrollmentRepo) GetByID(ctx context.Context, id string) (*model.ExamEnrollment, error) {
	var ee model.ExamEnrollment
	err := r.db.WithContext(ctx).
		Preload("Call.Table").
		Preload("Call.Subject").
		Preload("Student").
		Where("exam_enrollment_id = ?", id).
		First(&ee).Error
	if err != nil {
		return nil, err
	}
	return &ee, nil
}

// GetActive inscripción no cancelada del alumno al llamado
func (r *examEnrollmentRepo) GetActive(ctx context.Context, callID, studentID string) (*model.ExamEnrollment, error) {
	var ee model.ExamEnrollment
	err := r.db.WithContext(ctx).
		Where("call_id = ? AND student_id = ? AND status <> ?", callID, studentID, model.ExamCancelled).
		First(&ee).Error
	if err != nil {
		return nil, err
	}
	return &ee, nil
}

func (r *examEnrollmentRepo) CountActiveByCall(ctx context.Context, callID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ExamEnrollment{}).
		Where("call_id = ? AND status <> ?", callID, model.ExamCancelled).
		Count(&count).Error
	return count, err
}

func (r *examEnrollmentRepo) CountActiveByCalls(ctx context.Context, callIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(callIDs))
	if len(callIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		CallID string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ExamEnrollment{}).
		Select("call_id, COUNT(*) AS total").
		Where("call_id IN ? AND status <> ?", callIDs, model.ExamCancelled).
		Group("call_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.CallID] = row.Total
	}
	return result, nil
}

func (r *examEnrollmentRepo) ActiveCallIDsForStudent(ctx context.Context, studentID string, callIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(callIDs) == 0 {
		return result, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.ExamEnrollment{}).
		Where("student_id = ? AND call_id IN ? AND status <> ?", studentID, callIDs, model.ExamCancelled).
		Pluck("call_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListByCall acta del llamado ordenada por apellido
func (r *examEnrollmentRepo) ListByCall(ctx context.Context, callID string) ([]model.ExamEnrollment, error) {
	var list []model.ExamEnrollment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Joins("JOIN users u ON u.user_id = exam_enrollments.student_id").
		Where("exam_enrollments.call_id = ? AND exam_enrollments.status <> ?", callID, model.ExamCancelled).
		Order("u.last_name ASC, u.name ASC").
		Find(&list).Error
	return list, err
}

func (r *examEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]model.ExamEnrollment, error) {
	var list []model.ExamEnrollment
	err := r.db.WithContext(ctx).
		Preload("Call.Table").
		Preload("Call.Subject").
		Preload("Call.President").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}

// HasPassedFinal indica si el alumno aprobó el final de la materia en algún llamado
func (r *examEnrollmentRepo) HasPassedFinal(ctx context.Context, studentID, subjectID string, passingGrade float64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ExamEnrollment{}).
		Joins("JOIN exam_calls ec ON ec.call_id = exam_enrollments.call_id").
		Where("exam_enrollments.student_id = ? AND ec.subject_id = ?", studentID, subjectID).
		Where("exam_enrollments.status = ? AND exam_enrollments.grade >= ?", model.ExamGraded, passingGrade).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *examEnrollmentRepo) Update(ctx context.Context, ee *model.ExamEnrollment) error {
	return r.db.WithContext(ctx).Omit("Call", "Student").Save(ee).Error
}
