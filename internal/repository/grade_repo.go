package repository

import (
	"context"

	"gorm.io/gorm"

	pkgerrors "gestion-academica/backend/pkg/errors"

	"gestion-academica/backend/internal/model"
)

// GradeRepository acceso a calificaciones
type GradeRepository interface {
	GetByEnrollment(ctx context.Context, enrollmentID string) (*model.Grade, error)
	Upsert(ctx context.Context, grade *model.Grade) error
	BatchCreate(ctx context.Context, grades []model.Grade, chunk int) error
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo crea un GradeRepository
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) GetByEnrollment(ctx context.Context, enrollmentID string) (*model.Grade, error) {
	var grade model.Grade
	if err := r.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).First(&grade).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

// Upsert inserta la fila si no existe (GradeID vacío) o la actualiza con bloqueo optimista.
// Una actualización que no afecta filas devuelve ErrOptimisticLock.
func (r *gradeRepo) Upsert(ctx context.Context, grade *model.Grade) error {
	if grade.GradeID == "" {
		return r.db.WithContext(ctx).Create(grade).Error
	}

	result := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("grade_id = ? AND version = ?", grade.GradeID, grade.Version).
		Updates(map[string]interface{}{
			"partial_1":  grade.Partial1,
			"partial_2":  grade.Partial2,
			"partial_3":  grade.Partial3,
			"partial_4":  grade.Partial4,
			"attendance": grade.Attendance,
			"average":    grade.Average,
			"condition":  grade.Condition,
			"graded_by":  grade.GradedBy,
			"updated_by": grade.UpdatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	grade.Version++
	return nil
}

func (r *gradeRepo) BatchCreate(ctx context.Context, grades []model.Grade, chunk int) error {
	if len(grades) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&grades, chunk).Error
}
